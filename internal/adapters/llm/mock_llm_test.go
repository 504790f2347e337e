package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/brainbuddy/internal/adapters/llm"
	"github.com/PabloGalante/brainbuddy/internal/domain"
)

const tasksSection = "Current tasks (JSON):\n" +
	`[{"name":"Gym","priority":2,"estimated_time":60},{"name":"Call mom","priority":1,"estimated_time":15}]` +
	"\n\n"

func TestMockLLMClassify(t *testing.T) {
	m := llm.NewMockLLM()
	ctx := context.Background()

	out, err := m.GenerateReply(ctx, "Transcript:\nI have 20 minutes, what should I do?", domain.ConversationContext{Purpose: domain.PurposeClassify})
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"select"}`, out)

	out, err = m.GenerateReply(ctx, "Transcript:\nAdd a task to buy milk", domain.ConversationContext{Purpose: domain.PurposeClassify})
	require.NoError(t, err)
	assert.JSONEq(t, `{"intent":"update"}`, out)
}

func TestMockLLMExtractMatchesExistingTask(t *testing.T) {
	m := llm.NewMockLLM()

	out, err := m.GenerateReply(context.Background(),
		tasksSection+"Transcript:\nI finished the gym session",
		domain.ConversationContext{Purpose: domain.PurposeExtract})
	require.NoError(t, err)

	var ops []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, "modify", ops[0]["operation"])
	assert.Equal(t, "Gym", ops[0]["name"])
	assert.Equal(t, "done", ops[0]["status"])
}

func TestMockLLMExtractAdds(t *testing.T) {
	m := llm.NewMockLLM()

	out, err := m.GenerateReply(context.Background(),
		"Current tasks (JSON):\n[]\n\nTranscript:\nadd a task to water the plants.",
		domain.ConversationContext{Purpose: domain.PurposeExtract})
	require.NoError(t, err)

	var ops []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 1)
	assert.Equal(t, "add", ops[0]["operation"])
	assert.Equal(t, "Water the plants", ops[0]["name"])
	assert.Equal(t, "planned", ops[0]["status"])
}

func TestMockLLMRecommendFitsTime(t *testing.T) {
	m := llm.NewMockLLM()

	out, err := m.GenerateReply(context.Background(),
		tasksSection+"Transcript:\nI have 20 minutes",
		domain.ConversationContext{Purpose: domain.PurposeRecommend})
	require.NoError(t, err)
	assert.Equal(t, "You could work on Call mom next.", out)
}

func TestScriptedLLMReplaysInOrder(t *testing.T) {
	boom := errors.New("boom")
	s := llm.NewScriptedLLM(llm.Reply("first"), llm.Fail(boom))
	ctx := context.Background()

	out, err := s.GenerateReply(ctx, "p1", domain.ConversationContext{Purpose: domain.PurposeClassify})
	require.NoError(t, err)
	assert.Equal(t, "first", out)

	_, err = s.GenerateReply(ctx, "p2", domain.ConversationContext{})
	assert.ErrorIs(t, err, boom)

	_, err = s.GenerateReply(ctx, "p3", domain.ConversationContext{})
	assert.ErrorIs(t, err, llm.ErrScriptExhausted)

	calls := s.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "p1", calls[0].Prompt)
	assert.Equal(t, domain.PurposeClassify, calls[0].ConvCtx.Purpose)
}
