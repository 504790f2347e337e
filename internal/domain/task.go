package domain

import (
	"strings"
	"time"
)

// DateType tells how Task.Date is read.
type DateType string

const (
	DateTypeDeadline DateType = "deadline" // must be done by Date
	DateTypeDate     DateType = "date"     // scheduled at Date
)

type TaskStatus string

const (
	StatusPlanned    TaskStatus = "planned"
	StatusInProgress TaskStatus = "in progress"
	StatusDone       TaskStatus = "done"
)

// Priority runs from 1 (most urgent) to 5 (least urgent).
const (
	PriorityHighest = 1
	PriorityLowest  = 5
)

const (
	DefaultPriority        = 3
	DefaultRequiredStamina = 3
	DefaultEstimatedTime   = 30 // minutes
)

// TaskFields are the user-editable attributes of a task. They are what an
// operation carries and what the store accepts on add.
type TaskFields struct {
	Name            string     `json:"name"`
	Date            *time.Time `json:"date,omitempty"`
	DateType        DateType   `json:"date_type"`
	Priority        int        `json:"priority"`
	RequiredStamina int        `json:"required_stamina"`
	EstimatedTime   int        `json:"estimated_time"`
	Status          TaskStatus `json:"status"`
}

// Task is the canonical record owned by a TaskStore.
type Task struct {
	ID TaskID `json:"id"`
	TaskFields

	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	// Set once work begins / ends.
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// WithDefaults fills in missing fields and clamps numeric ranges.
func (f TaskFields) WithDefaults() TaskFields {
	f.Name = strings.TrimSpace(f.Name)
	if _, ok := ParseDateType(string(f.DateType)); !ok {
		f.DateType = DateTypeDate
	}
	if s, ok := ParseTaskStatus(string(f.Status)); ok {
		f.Status = s
	} else {
		f.Status = StatusPlanned
	}
	f.Priority = clampScale(f.Priority, DefaultPriority)
	f.RequiredStamina = clampScale(f.RequiredStamina, DefaultRequiredStamina)
	if f.EstimatedTime <= 0 {
		f.EstimatedTime = DefaultEstimatedTime
	}
	return f
}

// MergeOver returns base with every non-zero field of f written over it.
// A nil Date keeps the stored date, so a modify cannot clear a date.
func (f TaskFields) MergeOver(base TaskFields) TaskFields {
	out := base
	if name := strings.TrimSpace(f.Name); name != "" {
		out.Name = name
	}
	if f.Date != nil {
		d := *f.Date
		out.Date = &d
	}
	if f.DateType != "" {
		out.DateType = f.DateType
	}
	if f.Priority != 0 {
		out.Priority = f.Priority
	}
	if f.RequiredStamina != 0 {
		out.RequiredStamina = f.RequiredStamina
	}
	if f.EstimatedTime != 0 {
		out.EstimatedTime = f.EstimatedTime
	}
	if f.Status != "" {
		out.Status = f.Status
	}
	return out
}

func (t Task) IsDone() bool {
	return t.Status == StatusDone
}

// ActiveTasks drops done tasks, keeping order.
func ActiveTasks(tasks []Task) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsDone() {
			out = append(out, t)
		}
	}
	return out
}

func ParseDateType(s string) (DateType, bool) {
	switch DateType(strings.ToLower(strings.TrimSpace(s))) {
	case DateTypeDeadline:
		return DateTypeDeadline, true
	case DateTypeDate:
		return DateTypeDate, true
	default:
		return "", false
	}
}

// ParseTaskStatus accepts "in progress" as well as the in_progress and
// in-progress spellings.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch TaskStatus(norm) {
	case StatusPlanned:
		return StatusPlanned, true
	case StatusInProgress:
		return StatusInProgress, true
	case StatusDone:
		return StatusDone, true
	default:
		return "", false
	}
}

func clampScale(v, def int) int {
	switch {
	case v == 0:
		return def
	case v < PriorityHighest:
		return PriorityHighest
	case v > PriorityLowest:
		return PriorityLowest
	default:
		return v
	}
}
