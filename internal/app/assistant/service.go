package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/PabloGalante/brainbuddy/internal/app/agentflow"
	"github.com/PabloGalante/brainbuddy/internal/app/reconcile"
	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

// Replies used when a step of the cycle could not produce an answer.
const (
	ReplyNotUnderstood = "Sorry, I couldn't understand that. Could you say it again?"
	ReplyExtractFailed = "Sorry, I couldn't work out which tasks to change. Please try again."
	ReplySaveFailed    = "Sorry, I couldn't save your changes. Please try again."
	ReplyStoreFailed   = "Sorry, I couldn't reach your task list. Please try again."
	ReplyNoSuggestion  = "I don't have a suggestion right now. Try again in a moment."
	ReplyNoActiveTasks = "You have no open tasks. Tell me what you need to do and I'll add it."
	ReplyNoSpeech      = "No speech was detected. Please try again."
)

// historyTurns is how many past cycles go to the backend as context.
const historyTurns = 5

type Service struct {
	store        domain.TaskStore
	cycles       domain.CycleStore
	speaker      domain.Speaker
	now          func() time.Time
	orchestrator *agentflow.Orchestrator
	reconciler   *reconcile.Reconciler

	busy atomic.Bool
}

type Option func(*Service)

// WithClock sets the clock used for relative dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSpeaker plays every reply back through sp.
func WithSpeaker(sp domain.Speaker) Option {
	return func(s *Service) {
		s.speaker = sp
	}
}

// NewService wires the interpretation cycle. cycles and notifier may be nil.
func NewService(
	llm domain.LLMClient,
	store domain.TaskStore,
	cycles domain.CycleStore,
	notifier domain.Notifier,
	opts ...Option,
) *Service {
	s := &Service{
		store:        store,
		cycles:       cycles,
		now:          time.Now,
		orchestrator: agentflow.NewDefaultOrchestrator(llm),
		reconciler:   reconcile.NewReconciler(store, notifier),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of one interpretation cycle.
type Result struct {
	CycleID    domain.CycleID
	Intent     domain.Intent
	Reply      string
	Operations []domain.TaskOperation
	Added      []domain.Task
	Modified   []domain.Task
}

// Handle runs one interpretation cycle for a finalized transcript.
// Only ErrEmptyTranscript and ErrBusy are returned; every backend or
// parsing failure becomes a fallback reply.
func (s *Service) Handle(ctx context.Context, transcript string) (*Result, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, domain.ErrEmptyTranscript
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer s.busy.Store(false)

	cycleID := domain.CycleID(uuid.NewString())
	log := observability.LoggerFromContext(ctx).With("cycle_id", cycleID)
	log.Info("interpretation started", "transcript", transcript)

	now := s.now()
	res := &Result{CycleID: cycleID}

	snapshot, err := s.store.ListTasks(ctx)
	if err != nil {
		log.Error("failed to list tasks", "error", err)
		res.Reply = ReplyStoreFailed
		return s.finish(ctx, log, transcript, now, res), nil
	}

	out, err := s.orchestrator.Run(ctx, agentflow.Input{
		Transcript: transcript,
		Tasks:      snapshot,
		History:    s.recentTurns(ctx),
		Now:        now,
	})
	res.Intent = out.Intent

	switch {
	case err != nil:
		log.Error("orchestrator failed", "error", err)
		res.Reply = ReplyExtractFailed

	case out.Intent == domain.IntentUpdate:
		res.Operations = out.Operations
		outcome, err := s.reconciler.Apply(ctx, out.Operations, snapshot)
		res.Added, res.Modified = outcome.Added, outcome.Modified
		if err != nil {
			log.Error("reconcile failed", "error", err)
			res.Reply = ReplySaveFailed
			if len(outcome.Added)+len(outcome.Modified) > 0 {
				res.Reply = outcome.Summary + " " + ReplySaveFailed
			}
			break
		}
		res.Reply = outcome.Summary

	case out.Intent == domain.IntentSelect:
		switch {
		case out.Suggestion != "":
			res.Reply = out.Suggestion
		case len(domain.ActiveTasks(snapshot)) == 0:
			res.Reply = ReplyNoActiveTasks
		default:
			res.Reply = ReplyNoSuggestion
		}

	default:
		res.Reply = ReplyNotUnderstood
	}

	return s.finish(ctx, log, transcript, now, res), nil
}

// finish plays the reply and records the cycle. Neither step can fail the
// cycle.
func (s *Service) finish(ctx context.Context, log *slog.Logger, transcript string, now time.Time, res *Result) *Result {
	s.speak(ctx, res.Reply)

	if s.cycles != nil {
		err := s.cycles.AppendCycle(ctx, &domain.Cycle{
			ID:         res.CycleID,
			Transcript: transcript,
			Intent:     res.Intent,
			Operations: res.Operations,
			Reply:      res.Reply,
			CreatedAt:  now,
		})
		if err != nil {
			log.Warn("failed to record cycle", "error", err)
		}
	}

	log.Info("interpretation finished", "intent", res.Intent, "reply", res.Reply)
	return res
}

func (s *Service) speak(ctx context.Context, text string) {
	if s.speaker == nil || text == "" {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			observability.LoggerFromContext(ctx).Warn("speaker panicked", "panic", r)
		}
	}()
	s.speaker.Speak(ctx, text)
}

func (s *Service) recentTurns(ctx context.Context) []domain.Turn {
	if s.cycles == nil {
		return nil
	}
	recent, err := s.cycles.ListRecentCycles(ctx, historyTurns)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("failed to load history", "error", err)
		return nil
	}
	return domain.Turns(recent)
}

// ListTasks returns the current tasks. activeOnly drops done tasks.
func (s *Service) ListTasks(ctx context.Context, activeOnly bool) ([]domain.Task, error) {
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		return domain.ActiveTasks(tasks), nil
	}
	return tasks, nil
}

// AddTask adds a task directly, outside an interpretation cycle. It goes
// through the reconciler so the notification hook still fires.
func (s *Service) AddTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return domain.Task{}, errors.New("task name is required")
	}

	outcome, err := s.reconciler.Apply(ctx, []domain.TaskOperation{{
		Operation:  domain.OperationAdd,
		TaskFields: fields,
	}}, nil)
	if err != nil {
		return domain.Task{}, err
	}
	return outcome.Added[0], nil
}

// Seed loads initial tasks into the store.
func (s *Service) Seed(ctx context.Context, tasks []domain.TaskFields) error {
	for _, fields := range tasks {
		if _, err := s.store.AddTask(ctx, fields); err != nil {
			return err
		}
	}
	observability.LoggerFromContext(ctx).Info("tasks seeded", "count", len(tasks))
	return nil
}
