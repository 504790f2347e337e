package domain

import "context"

// LLMClient defines how the core application interacts with the text
// understanding backend.
type LLMClient interface {
	GenerateReply(ctx context.Context, prompt string, convCtx ConversationContext) (string, error)
}

// CallPurpose tells the backend adapter what kind of answer the call site
// expects. JSON purposes may be sent with a JSON response type.
type CallPurpose string

const (
	PurposeClassify  CallPurpose = "classify"
	PurposeExtract   CallPurpose = "extract"
	PurposeRecommend CallPurpose = "recommend"
)

func (p CallPurpose) WantsJSON() bool {
	return p == PurposeClassify || p == PurposeExtract
}

// Turn is one role-tagged block of conversation history.
type Turn struct {
	Role Role
	Text string
}

// ConversationContext gives the LLM minimal context about the call.
type ConversationContext struct {
	Purpose CallPurpose
	History []Turn
}

// TaskStore owns task identity and timestamps.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]Task, error)
	AddTask(ctx context.Context, fields TaskFields) (Task, error)
	// ModifyTask replaces everything but ID and CreatedAt. The ID must exist.
	ModifyTask(ctx context.Context, task Task) (Task, error)
}

// CycleStore keeps the interpretation history.
type CycleStore interface {
	AppendCycle(ctx context.Context, cycle *Cycle) error
	GetCycle(ctx context.Context, id CycleID) (*Cycle, error)
	// ListRecentCycles returns the last `limit` cycles, oldest first.
	ListRecentCycles(ctx context.Context, limit int) ([]*Cycle, error)
}

// Notification is a local notification request.
type Notification struct {
	Title    string
	Body     string
	Metadata map[string]string
}

// Notifier schedules notifications after task mutations.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Speaker plays a reply back to the user. Fire-and-forget.
type Speaker interface {
	Speak(ctx context.Context, text string)
}
