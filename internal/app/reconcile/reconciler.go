package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

// Reconciler applies extracted operations to a TaskStore.
type Reconciler struct {
	store    domain.TaskStore
	notifier domain.Notifier
}

// NewReconciler creates a Reconciler. notifier may be nil.
func NewReconciler(store domain.TaskStore, notifier domain.Notifier) *Reconciler {
	return &Reconciler{
		store:    store,
		notifier: notifier,
	}
}

// Outcome lists what an Apply call changed, in application order.
type Outcome struct {
	Added    []domain.Task
	Modified []domain.Task
	Summary  string
}

// Apply runs ops in order against the store. A modify whose name matches no
// task in the working list is applied as an add. The working list starts as
// snapshot and follows every applied change.
//
// On a store error Apply stops and returns what was applied so far.
func (r *Reconciler) Apply(
	ctx context.Context,
	ops []domain.TaskOperation,
	snapshot []domain.Task,
) (*Outcome, error) {
	log := observability.LoggerFromContext(ctx)

	working := make([]domain.Task, len(snapshot))
	copy(working, snapshot)

	out := &Outcome{}
	for i, op := range ops {
		switch op.Operation {
		case domain.OperationModify:
			idx := findByName(working, op.Name)
			if idx < 0 {
				log.Info("modify target not found, adding instead", "name", op.Name)
				task, err := r.add(ctx, op.TaskFields)
				if err != nil {
					out.Summary = Summarize(out.Added, out.Modified)
					return out, fmt.Errorf("operation %d: %w", i, err)
				}
				working = append(working, task)
				out.Added = append(out.Added, task)
				continue
			}

			merged := working[idx]
			merged.TaskFields = op.TaskFields.MergeOver(merged.TaskFields)
			task, err := r.store.ModifyTask(ctx, merged)
			if err != nil {
				out.Summary = Summarize(out.Added, out.Modified)
				return out, fmt.Errorf("operation %d: modify %q: %w", i, op.Name, err)
			}
			r.notify(ctx, domain.OperationModify, task)
			working[idx] = task
			out.Modified = append(out.Modified, task)

		default:
			task, err := r.add(ctx, op.TaskFields)
			if err != nil {
				out.Summary = Summarize(out.Added, out.Modified)
				return out, fmt.Errorf("operation %d: %w", i, err)
			}
			working = append(working, task)
			out.Added = append(out.Added, task)
		}
	}

	out.Summary = Summarize(out.Added, out.Modified)
	log.Info("operations reconciled", "added", len(out.Added), "modified", len(out.Modified))
	return out, nil
}

func (r *Reconciler) add(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	task, err := r.store.AddTask(ctx, fields)
	if err != nil {
		return domain.Task{}, fmt.Errorf("add %q: %w", fields.Name, err)
	}
	r.notify(ctx, domain.OperationAdd, task)
	return task, nil
}

// notify is the post-mutation hook. Its failures never undo the mutation.
func (r *Reconciler) notify(ctx context.Context, kind domain.OperationKind, task domain.Task) {
	if r.notifier == nil {
		return
	}

	title := "Task added"
	if kind == domain.OperationModify {
		title = "Task updated"
	}

	meta := map[string]string{
		"task_id":   string(task.ID),
		"operation": string(kind),
		"status":    string(task.Status),
		"date_type": string(task.DateType),
	}
	if task.Date != nil {
		meta["date"] = task.Date.Format(time.RFC3339)
	}

	err := r.notifier.Notify(ctx, domain.Notification{
		Title:    title,
		Body:     task.Name,
		Metadata: meta,
	})
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("notification failed",
			"task_id", task.ID,
			"error", err)
	}
}

// findByName matches names exactly, ignoring case and surrounding spaces.
func findByName(tasks []domain.Task, name string) int {
	want := strings.TrimSpace(name)
	for i, t := range tasks {
		if strings.EqualFold(strings.TrimSpace(t.Name), want) {
			return i
		}
	}
	return -1
}

// Summarize phrases what changed for playback.
func Summarize(added, modified []domain.Task) string {
	switch total := len(added) + len(modified); {
	case total == 0:
		return "No changes were made to your tasks."
	case total == 1 && len(added) == 1:
		return fmt.Sprintf("Added the task: %s.", added[0].Name)
	case total == 1:
		return fmt.Sprintf("Updated the task: %s.", modified[0].Name)
	default:
		return fmt.Sprintf("Added %s and modified %s.",
			countTasks(len(added)), countTasks(len(modified)))
	}
}

func countTasks(n int) string {
	if n == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", n)
}
