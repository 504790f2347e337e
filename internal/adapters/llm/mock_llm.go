package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// MockLLM answers with simple keyword rules so local mode works offline.
// It reads the transcript and task sections of the prompts built by
// agentflow.
type MockLLM struct{}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

const (
	transcriptHeader = "Transcript:\n"
	tasksHeader      = "Current tasks (JSON):\n"
)

var minutesPattern = regexp.MustCompile(`(\d+)\s*(min|minute)`)

type mockTask struct {
	Name          string `json:"name"`
	Priority      int    `json:"priority"`
	EstimatedTime int    `json:"estimated_time"`
}

func (m *MockLLM) GenerateReply(ctx context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	transcript := section(prompt, transcriptHeader)
	lower := strings.ToLower(transcript)

	switch convCtx.Purpose {
	case domain.PurposeClassify:
		return fmt.Sprintf(`{"intent": %q}`, mockIntent(lower)), nil
	case domain.PurposeExtract:
		return mockExtract(transcript, lower, mockTasks(prompt))
	case domain.PurposeRecommend:
		return mockRecommend(lower, mockTasks(prompt)), nil
	default:
		return fmt.Sprintf("I heard %q.", transcript), nil
	}
}

func mockIntent(lower string) domain.Intent {
	if strings.TrimSpace(lower) == "" {
		return domain.IntentUnrelated
	}
	for _, kw := range []string{"what should i", "what can i", "what do i", "suggest", "recommend", "free time", "i have"} {
		if strings.Contains(lower, kw) {
			return domain.IntentSelect
		}
	}
	return domain.IntentUpdate
}

func mockExtract(transcript, lower string, tasks []mockTask) (string, error) {
	status := domain.StatusPlanned
	switch {
	case containsAny(lower, "finished", "done", "completed"):
		status = domain.StatusDone
	case containsAny(lower, "started", "working on", "starting"):
		status = domain.StatusInProgress
	}

	op := map[string]any{
		"operation":        domain.OperationAdd,
		"name":             cleanTaskName(transcript),
		"date":             nil,
		"date_type":        domain.DateTypeDate,
		"priority":         domain.DefaultPriority,
		"required_stamina": domain.DefaultRequiredStamina,
		"estimated_time":   domain.DefaultEstimatedTime,
		"status":           status,
	}
	for _, t := range tasks {
		if t.Name != "" && strings.Contains(lower, strings.ToLower(t.Name)) {
			op["operation"] = domain.OperationModify
			op["name"] = t.Name
			break
		}
	}

	b, err := json.Marshal([]any{op})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func mockRecommend(lower string, tasks []mockTask) string {
	if len(tasks) == 0 {
		return "You have nothing planned, so take a short break."
	}

	available := 0
	if m := minutesPattern.FindStringSubmatch(lower); m != nil {
		available, _ = strconv.Atoi(m[1])
	}

	var best, fallback *mockTask
	for i := range tasks {
		t := &tasks[i]
		if fallback == nil || t.Priority < fallback.Priority {
			fallback = t
		}
		if available > 0 && t.EstimatedTime > available {
			continue
		}
		if best == nil || t.Priority < best.Priority {
			best = t
		}
	}

	if best != nil {
		return fmt.Sprintf("You could work on %s next.", best.Name)
	}
	return fmt.Sprintf("Spend the time on a first small part of %s.", fallback.Name)
}

func mockTasks(prompt string) []mockTask {
	raw := section(prompt, tasksHeader)
	if i := strings.Index(raw, "\n\n"); i >= 0 {
		raw = raw[:i]
	}
	var tasks []mockTask
	_ = json.Unmarshal([]byte(raw), &tasks)
	return tasks
}

// section returns what follows the last occurrence of header.
func section(prompt, header string) string {
	i := strings.LastIndex(prompt, header)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(prompt[i+len(header):])
}

func cleanTaskName(transcript string) string {
	name := strings.TrimSpace(transcript)
	lower := strings.ToLower(name)
	for _, prefix := range []string{"add a task to ", "add a task ", "remind me to ", "i need to ", "add "} {
		if strings.HasPrefix(lower, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	name = strings.TrimRight(name, ".!? ")
	if name == "" {
		return transcript
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r)) + name[size:]
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
