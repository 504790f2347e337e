package agentflow

import (
	"context"
	"strings"
	"time"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

const extractSchema = `Output: a JSON array. Each element is an object with exactly these fields:
- "operation": "add" or "modify".
- "name": a short, clear task name. For "modify", copy the name of the existing task exactly as it appears in the current tasks.
- "date": local date-time "YYYY-MM-DDTHH:MM:SS", or null when no time is mentioned.
- "date_type": "deadline" or "date".
- "priority": integer 1-5, 1 is the most urgent.
- "required_stamina": integer 1-5, how much energy the task takes.
- "estimated_time": integer, minutes.
- "status": "planned", "in progress" or "done".`

const extractRules = `Rules:
- "operation": explicit creation ("add", "I need to", "remind me to") is "add". A clear reference to a task in the current tasks is "modify". When unsure, use "add".
- "date_type": bounded wording ("by", "before", "until", "within N days") is "deadline". An exact moment ("on", "at", "now") is "date".
- Resolve relative expressions ("tomorrow", "by Friday", "in 2 days") to absolute date-times using today's date.
- Never leave "priority", "required_stamina" or "estimated_time" empty. Infer them from the wording and by analogy with similar current tasks.
- "status" is "planned" unless the user says the task is finished ("done") or being worked on ("in progress").
- Emit one element per task the user mentions. One utterance can contain several operations.`

// OperationExtractor turns a transcript into structured task operations.
type OperationExtractor struct {
	llm         domain.LLMClient
	maxAttempts int
}

func NewOperationExtractor(llm domain.LLMClient) *OperationExtractor {
	return &OperationExtractor{llm: llm, maxAttempts: DefaultMaxAttempts}
}

func (e *OperationExtractor) Name() string {
	return "extractor"
}

// Extract returns the validated operations, or an error wrapping
// domain.ErrAttemptsExhausted. It never returns a partially valid list.
func (e *OperationExtractor) Extract(
	ctx context.Context,
	transcript string,
	tasks []domain.Task,
	now time.Time,
) ([]domain.TaskOperation, error) {
	log := observability.LoggerFromContext(ctx).With("agent", e.Name())
	prompt := buildExtractPrompt(transcript, tasks, now)

	ops, err := Attempt(ctx, e.maxAttempts, func(ctx context.Context, attempt int) ([]domain.TaskOperation, error) {
		raw, err := e.llm.GenerateReply(ctx, prompt, domain.ConversationContext{Purpose: domain.PurposeExtract})
		if err != nil {
			log.Warn("extract call failed", "attempt", attempt, "error", err)
			return nil, err
		}

		ops, err := decodeOperations(ctx, raw, now.Location())
		if err != nil {
			log.Warn("extract output rejected", "attempt", attempt, "error", err)
			return nil, err
		}
		return ops, nil
	})
	if err != nil {
		log.Error("operation extraction failed", "error", err)
		return nil, err
	}

	log.Info("operations extracted", "operations_count", len(ops))
	return ops, nil
}

func buildExtractPrompt(transcript string, tasks []domain.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString("Turn what the user said into task operations.\n\n")
	b.WriteString(todayLine(now))
	b.WriteString("\n\n")
	b.WriteString(extractSchema)
	b.WriteString("\n\n")
	b.WriteString(extractRules)
	b.WriteString("\n\nCurrent tasks (JSON):\n")
	b.WriteString(renderTasks(tasks, now.Location()))
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}
