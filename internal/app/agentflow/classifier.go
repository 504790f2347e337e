package agentflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

const classifyInstructions = `Decide what the user wants from what they just said.

Categories:
- "update": the user adds, changes, reschedules, starts or finishes tasks.
  Examples: "Add a task to buy milk tomorrow", "Move the report to Friday", "I finished the gym session".
- "select": the user asks what to do now or has free time to fill.
  Examples: "I have 20 minutes, what should I do?", "What's next?", "I'm bored, give me something to do".
- "unrelated": anything else.

Respond with a single JSON object with exactly one field:
{"intent": "update"} or {"intent": "select"} or {"intent": "unrelated"}

Transcript:
`

// IntentClassifier decides between a task-list mutation and a recommendation.
type IntentClassifier struct {
	llm         domain.LLMClient
	maxAttempts int
}

func NewIntentClassifier(llm domain.LLMClient) *IntentClassifier {
	return &IntentClassifier{llm: llm, maxAttempts: DefaultMaxAttempts}
}

func (c *IntentClassifier) Name() string {
	return "classifier"
}

// Classify returns domain.IntentUnknown when the backend fails or keeps
// answering with something other than a known intent.
func (c *IntentClassifier) Classify(ctx context.Context, transcript string) domain.Intent {
	log := observability.LoggerFromContext(ctx).With("agent", c.Name())
	prompt := classifyInstructions + transcript

	intent, err := Attempt(ctx, c.maxAttempts, func(ctx context.Context, attempt int) (domain.Intent, error) {
		raw, err := c.llm.GenerateReply(ctx, prompt, domain.ConversationContext{Purpose: domain.PurposeClassify})
		if err != nil {
			log.Warn("classify call failed", "attempt", attempt, "error", err)
			return domain.IntentUnknown, err
		}

		intent, err := decodeIntent(raw)
		if err != nil {
			log.Warn("classify output rejected", "attempt", attempt, "error", err)
			return domain.IntentUnknown, err
		}
		return intent, nil
	})
	if err != nil {
		log.Error("intent classification failed", "error", err)
		return domain.IntentUnknown
	}

	log.Info("intent classified", "intent", intent)
	return intent
}

// decodeIntent accepts only {"intent": "<known value>"}.
func decodeIntent(raw string) (domain.Intent, error) {
	dec := json.NewDecoder(strings.NewReader(stripCodeFence(raw)))
	dec.DisallowUnknownFields()

	var rec struct {
		Intent string `json:"intent"`
	}
	if err := dec.Decode(&rec); err != nil {
		return domain.IntentUnknown, fmt.Errorf("%w: %w", domain.ErrMalformedOutput, err)
	}
	if dec.More() {
		return domain.IntentUnknown, fmt.Errorf("%w: trailing data", domain.ErrMalformedOutput)
	}

	switch intent := domain.Intent(rec.Intent); intent {
	case domain.IntentUpdate, domain.IntentSelect, domain.IntentUnrelated:
		return intent, nil
	default:
		return domain.IntentUnknown, fmt.Errorf("%w: unknown intent %q", domain.ErrMalformedOutput, rec.Intent)
	}
}
