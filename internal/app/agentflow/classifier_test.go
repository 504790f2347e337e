package agentflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/brainbuddy/internal/adapters/llm"
	"github.com/PabloGalante/brainbuddy/internal/app/agentflow"
	"github.com/PabloGalante/brainbuddy/internal/domain"
)

func TestClassifyKnownIntents(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  domain.Intent
	}{
		{name: "update", reply: `{"intent":"update"}`, want: domain.IntentUpdate},
		{name: "select fenced", reply: "```json\n{\"intent\": \"select\"}\n```", want: domain.IntentSelect},
		{name: "unrelated", reply: `{"intent":"unrelated"}`, want: domain.IntentUnrelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := llm.NewScriptedLLM(llm.Reply(tt.reply))
			c := agentflow.NewIntentClassifier(backend)

			assert.Equal(t, tt.want, c.Classify(context.Background(), "anything"))

			calls := backend.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, domain.PurposeClassify, calls[0].ConvCtx.Purpose)
			assert.Contains(t, calls[0].Prompt, "Transcript:\nanything")
		})
	}
}

func TestClassifyRetriesMalformedOutput(t *testing.T) {
	backend := llm.NewScriptedLLM(
		llm.Reply(`{"intent":"UPDATE"}`),
		llm.Reply(`{"intent":"update","confidence":0.9}`),
		llm.Reply(`{"intent":"select"}`),
	)
	c := agentflow.NewIntentClassifier(backend)

	assert.Equal(t, domain.IntentSelect, c.Classify(context.Background(), "what now"))
	assert.Len(t, backend.Calls(), 3)
}

func TestClassifyIndeterminateOnFailure(t *testing.T) {
	backend := llm.NewScriptedLLM(
		llm.Fail(errors.New("timeout")),
		llm.Reply("update"),
		llm.Reply(`["update"]`),
	)
	c := agentflow.NewIntentClassifier(backend)

	assert.Equal(t, domain.IntentUnknown, c.Classify(context.Background(), "hmm"))
	assert.Len(t, backend.Calls(), 3)
}
