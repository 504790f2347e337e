package llm

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// GeminiConfig selects between the Gemini API (API key) and Vertex AI.
type GeminiConfig struct {
	Backend   string
	APIKey    string
	ProjectID string
	Location  string
	ModelName string
	Timeout   time.Duration
}

type GeminiClient struct {
	client    *genai.Client
	modelName string
	timeout   time.Duration
}

// NewGeminiClient creates an LLMClient backed by Gemini.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	var cc *genai.ClientConfig
	switch cfg.Backend {
	case BackendVertex:
		if cfg.ProjectID == "" || cfg.Location == "" {
			return nil, fmt.Errorf("vertex backend needs a project and a location")
		}
		cc = &genai.ClientConfig{
			Project:  cfg.ProjectID,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	case BackendGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini backend needs an API key")
		}
		cc = &genai.ClientConfig{
			APIKey:  cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
	default:
		return nil, fmt.Errorf("unknown gemini backend %q", cfg.Backend)
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
		timeout:   cfg.Timeout,
	}, nil
}

// GenerateReply implements domain.LLMClient.
func (g *GeminiClient) GenerateReply(
	ctx context.Context,
	prompt string,
	convCtx domain.ConversationContext,
) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, buildContents(prompt, convCtx), buildConfig(convCtx.Purpose))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}

	text := res.Text()
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}

	return text, nil
}

func buildContents(prompt string, convCtx domain.ConversationContext) []*genai.Content {
	contents := make([]*genai.Content, 0, len(convCtx.History)+1)
	for _, turn := range convCtx.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == domain.RoleAgent {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}

func buildConfig(purpose domain.CallPurpose) *genai.GenerateContentConfig {
	temp := float32(0.7)
	topP := float32(0.9)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(BuildSystemPrompt(purpose), genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   2048,
	}

	if purpose.WantsJSON() {
		temp = 0.2
		cfg.ResponseMIMEType = "application/json"
	}

	return cfg
}
