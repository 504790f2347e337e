package agentflow

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

const recommendInstructions = `The user wants to know what to do next. Pick exactly one task from the current tasks.

Rank the candidates by:
1. priority, 1 is the most urgent;
2. how close the deadline or scheduled date is;
3. whether the required stamina and estimated time fit the time and energy the user mentions.

Never pick a task whose status is "done".
If no task fits the available time, suggest a smaller first part of the most urgent task instead.
Answer with one sentence that names the task.`

// RecommendationEngine suggests the next task as one spoken sentence.
type RecommendationEngine struct {
	llm domain.LLMClient
}

func NewRecommendationEngine(llm domain.LLMClient) *RecommendationEngine {
	return &RecommendationEngine{llm: llm}
}

func (r *RecommendationEngine) Name() string {
	return "recommender"
}

// Recommend returns "" when no suggestion is available.
func (r *RecommendationEngine) Recommend(
	ctx context.Context,
	transcript string,
	tasks []domain.Task,
	history []domain.Turn,
	now time.Time,
) string {
	log := observability.LoggerFromContext(ctx).With("agent", r.Name())

	active := domain.ActiveTasks(tasks)
	if len(active) == 0 {
		log.Info("no active tasks to recommend")
		return ""
	}

	raw, err := r.llm.GenerateReply(ctx, buildRecommendPrompt(transcript, active, now), domain.ConversationContext{
		Purpose: domain.PurposeRecommend,
		History: history,
	})
	if err != nil {
		log.Error("recommend call failed", "error", err)
		return ""
	}

	suggestion, ok := cleanSuggestion(raw)
	if !ok {
		log.Warn("recommend output rejected", "raw", raw)
		return ""
	}

	log.Info("recommendation ready")
	return suggestion
}

func buildRecommendPrompt(transcript string, tasks []domain.Task, now time.Time) string {
	var b strings.Builder
	b.WriteString(recommendInstructions)
	b.WriteString("\n\n")
	b.WriteString(todayLine(now))
	b.WriteString("\n\nCurrent tasks (JSON):\n")
	b.WriteString(renderTasks(tasks, now.Location()))
	b.WriteString("\n\nTranscript:\n")
	b.WriteString(transcript)
	return b.String()
}

var listMarker = regexp.MustCompile(`^(?:[-*•#]+|\d+[.)])\s+`)

// cleanSuggestion reduces backend prose to the single sentence that is
// played back. Structured output and lists of two or more items are
// rejected.
func cleanSuggestion(raw string) (string, bool) {
	s := stripCodeFence(raw)
	if s == "" || strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		return "", false
	}

	var parts []string
	items := 0
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if listMarker.MatchString(line) {
			items++
			line = listMarker.ReplaceAllString(line, "")
		}
		if line == "" {
			continue
		}
		parts = append(parts, line)
	}
	if items > 1 {
		return "", false
	}

	out := firstSentence(strings.Join(strings.Fields(strings.Join(parts, " ")), " "))
	return out, out != ""
}

// firstSentence cuts s after the first '.', '!' or '?' that is followed by
// more text.
func firstSentence(s string) string {
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			if s[i+1] == ' ' {
				return s[:i+1]
			}
		}
	}
	return s
}
