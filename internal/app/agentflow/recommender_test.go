package agentflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/brainbuddy/internal/adapters/llm"
	"github.com/PabloGalante/brainbuddy/internal/app/agentflow"
	"github.com/PabloGalante/brainbuddy/internal/domain"
)

func recommendTasks() []domain.Task {
	return []domain.Task{
		{ID: "1", TaskFields: domain.TaskFields{Name: "Finalize Q4 report", Priority: 2, EstimatedTime: 180, Status: domain.StatusPlanned}},
		{ID: "2", TaskFields: domain.TaskFields{Name: "Call mom", Priority: 1, EstimatedTime: 15, Status: domain.StatusPlanned}},
		{ID: "3", TaskFields: domain.TaskFields{Name: "Gym", Priority: 1, EstimatedTime: 20, Status: domain.StatusDone}},
	}
}

func TestRecommendSingleSentence(t *testing.T) {
	backend := llm.NewScriptedLLM(llm.Reply("You have 20 minutes, so call mom now.\n"))
	r := agentflow.NewRecommendationEngine(backend)
	history := []domain.Turn{{Role: domain.RoleUser, Text: "add call mom"}}

	got := r.Recommend(context.Background(), "I have 20 minutes, what should I do?", recommendTasks(), history, newYear)

	assert.Equal(t, "You have 20 minutes, so call mom now.", got)
	assert.NotContains(t, got, "\n")
	assert.False(t, strings.HasPrefix(got, "{"))

	calls := backend.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, domain.PurposeRecommend, calls[0].ConvCtx.Purpose)
	assert.Equal(t, history, calls[0].ConvCtx.History)
	assert.Contains(t, calls[0].Prompt, "Call mom")
	assert.NotContains(t, calls[0].Prompt, `"name":"Gym"`)
}

func TestRecommendEmptyOnBackendError(t *testing.T) {
	r := agentflow.NewRecommendationEngine(llm.NewScriptedLLM(llm.Fail(errors.New("down"))))

	assert.Empty(t, r.Recommend(context.Background(), "what now", recommendTasks(), nil, newYear))
}

func TestRecommendEmptyOnStructuredOutput(t *testing.T) {
	r := agentflow.NewRecommendationEngine(llm.NewScriptedLLM(llm.Reply(`[{"name":"Call mom"}]`)))

	assert.Empty(t, r.Recommend(context.Background(), "what now", recommendTasks(), nil, newYear))
}

func TestRecommendSkipsBackendWithoutActiveTasks(t *testing.T) {
	backend := llm.NewScriptedLLM()
	r := agentflow.NewRecommendationEngine(backend)
	done := []domain.Task{{ID: "1", TaskFields: domain.TaskFields{Name: "Gym", Status: domain.StatusDone}}}

	assert.Empty(t, r.Recommend(context.Background(), "what now", done, nil, newYear))
	assert.Empty(t, backend.Calls())
}
