package domain

type OperationKind string

const (
	OperationAdd    OperationKind = "add"
	OperationModify OperationKind = "modify"
)

// TaskOperation is one structured instruction extracted from a transcript.
// It lives for a single interpretation cycle and is never stored as a task.
type TaskOperation struct {
	Operation OperationKind `json:"operation"`
	TaskFields
}

// Intent is what the user wants from an utterance.
type Intent string

const (
	IntentUpdate    Intent = "update"
	IntentSelect    Intent = "select"
	IntentUnrelated Intent = "unrelated"

	// IntentUnknown means classification failed; callers must fall back
	// instead of guessing a branch.
	IntentUnknown Intent = ""
)
