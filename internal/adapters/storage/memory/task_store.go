package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// TaskStore is the in-memory domain.TaskStore. Tasks are kept in insertion
// order and handed out as copies, so a list taken at cycle start is a stable
// snapshot.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []domain.Task
	index map[domain.TaskID]int
	now   func() time.Time
}

// NewTaskStore creates an empty store. A nil clock means time.Now.
func NewTaskStore(now func() time.Time) *TaskStore {
	if now == nil {
		now = time.Now
	}
	return &TaskStore{
		index: make(map[domain.TaskID]int),
		now:   now,
	}
}

func (s *TaskStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, cloneTask(t))
	}
	return out, nil
}

// AddTask always creates a new task with a fresh id; it never merges.
func (s *TaskStore) AddTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := domain.Task{
		ID:         domain.TaskID(uuid.NewString()),
		TaskFields: fields.WithDefaults(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	stampLifecycle(&task, "", now)

	s.index[task.ID] = len(s.tasks)
	s.tasks = append(s.tasks, task)

	return cloneTask(task), nil
}

// ModifyTask replaces every field except ID and CreatedAt.
func (s *TaskStore) ModifyTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[task.ID]
	if !ok {
		return domain.Task{}, fmt.Errorf("modify %q: %w", task.ID, domain.ErrTaskNotFound)
	}
	prev := s.tasks[i]

	now := s.now()
	// keep updated_at strictly after the previous stamp even on coarse clocks
	if !now.After(prev.UpdatedAt) {
		now = prev.UpdatedAt.Add(time.Nanosecond)
	}

	updated := cloneTask(task)
	updated.TaskFields = updated.TaskFields.WithDefaults()
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = now
	if updated.StartedAt == nil {
		updated.StartedAt = prev.StartedAt
	}
	if updated.FinishedAt == nil {
		updated.FinishedAt = prev.FinishedAt
	}
	stampLifecycle(&updated, prev.Status, now)

	s.tasks[i] = updated
	return cloneTask(updated), nil
}

// stampLifecycle sets started_at/finished_at the first time a task enters
// in progress / done.
func stampLifecycle(t *domain.Task, prev domain.TaskStatus, now time.Time) {
	if t.Status == prev {
		return
	}
	switch t.Status {
	case domain.StatusInProgress:
		if t.StartedAt == nil {
			t.StartedAt = timePtr(now)
		}
	case domain.StatusDone:
		if t.StartedAt == nil {
			t.StartedAt = timePtr(now)
		}
		if t.FinishedAt == nil {
			t.FinishedAt = timePtr(now)
		}
	}
}

func cloneTask(t domain.Task) domain.Task {
	out := t
	out.Date = copyTime(t.Date)
	out.StartedAt = copyTime(t.StartedAt)
	out.FinishedAt = copyTime(t.FinishedAt)
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return timePtr(*t)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
