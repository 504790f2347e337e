package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

func TestBuildContentsMapsRoles(t *testing.T) {
	contents := buildContents("what now?", domain.ConversationContext{
		History: []domain.Turn{
			{Role: domain.RoleUser, Text: "add gym"},
			{Role: domain.RoleAgent, Text: "Added the task: Gym."},
		},
	})

	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, "what now?", contents[2].Parts[0].Text)
}

func TestBuildConfigJSONPurpose(t *testing.T) {
	cfg := buildConfig(domain.PurposeExtract)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.2, *cfg.Temperature, 0.001)

	cfg = buildConfig(domain.PurposeRecommend)
	assert.Empty(t, cfg.ResponseMIMEType)
	assert.Contains(t, cfg.SystemInstruction.Parts[0].Text, "one short, friendly sentence")
}

func TestNewGeminiClientValidatesBackend(t *testing.T) {
	ctx := context.Background()

	_, err := NewGeminiClient(ctx, GeminiConfig{Backend: BackendGemini})
	assert.Error(t, err)

	_, err = NewGeminiClient(ctx, GeminiConfig{Backend: BackendVertex, ProjectID: "p"})
	assert.Error(t, err)

	_, err = NewGeminiClient(ctx, GeminiConfig{Backend: "openai"})
	assert.Error(t, err)
}
