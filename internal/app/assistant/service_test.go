package assistant_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/brainbuddy/internal/adapters/llm"
	"github.com/PabloGalante/brainbuddy/internal/adapters/storage/memory"
	"github.com/PabloGalante/brainbuddy/internal/app/assistant"
	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// Wednesday.
var newYear = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

type recordingSpeaker struct {
	mu    sync.Mutex
	spoke []string
}

func (s *recordingSpeaker) Speak(ctx context.Context, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.spoke = append(s.spoke, text)
}

type panickingSpeaker struct{}

func (panickingSpeaker) Speak(ctx context.Context, text string) {
	panic("audio device gone")
}

type fixture struct {
	svc     *assistant.Service
	store   *memory.TaskStore
	cycles  *memory.CycleStore
	speaker *recordingSpeaker
}

func newFixture(t *testing.T, backend domain.LLMClient, seed ...domain.TaskFields) fixture {
	t.Helper()

	store := memory.NewTaskStore(nil)
	cycles := memory.NewCycleStore()
	speaker := &recordingSpeaker{}
	svc := assistant.NewService(backend, store, cycles, nil,
		assistant.WithClock(func() time.Time { return newYear }),
		assistant.WithSpeaker(speaker))
	require.NoError(t, svc.Seed(context.Background(), seed))

	return fixture{svc: svc, store: store, cycles: cycles, speaker: speaker}
}

func gymTask() domain.TaskFields {
	return domain.TaskFields{
		Name:            "Gym",
		DateType:        domain.DateTypeDate,
		Priority:        2,
		RequiredStamina: 4,
		EstimatedTime:   60,
	}
}

func TestHandleAddsTask(t *testing.T) {
	ctx := context.Background()
	backend := llm.NewScriptedLLM(
		llm.Reply(`{"intent":"update"}`),
		llm.Reply(`[{"operation":"add","name":"Buy milk","date":"2025-01-02T17:00:00","date_type":"date","priority":3,"required_stamina":1,"estimated_time":20,"status":"planned"}]`),
	)
	f := newFixture(t, backend)

	res, err := f.svc.Handle(ctx, "  Add a task to buy milk tomorrow at 5pm ")
	require.NoError(t, err)

	assert.Equal(t, domain.IntentUpdate, res.Intent)
	assert.Equal(t, "Added the task: Buy milk.", res.Reply)
	require.Len(t, res.Added, 1)
	require.NotNil(t, res.Added[0].Date)
	assert.True(t, res.Added[0].Date.Equal(time.Date(2025, 1, 2, 17, 0, 0, 0, time.UTC)))

	tasks, err := f.store.ListTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	assert.Equal(t, []string{"Added the task: Buy milk."}, f.speaker.spoke)

	recorded, err := f.cycles.ListRecentCycles(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, res.CycleID, recorded[0].ID)
	assert.Equal(t, "Add a task to buy milk tomorrow at 5pm", recorded[0].Transcript)
	assert.Len(t, recorded[0].Operations, 1)
}

func TestHandleFinishedGymUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	backend := llm.NewScriptedLLM(
		llm.Reply(`{"intent":"update"}`),
		llm.Reply(`{"operation":"modify","name":"Gym","date":null,"date_type":"date","priority":2,"required_stamina":4,"estimated_time":60,"status":"done"}`),
	)
	f := newFixture(t, backend, gymTask())

	before, err := f.store.ListTasks(ctx)
	require.NoError(t, err)

	res, err := f.svc.Handle(ctx, "I finished the gym session")
	require.NoError(t, err)
	assert.Equal(t, "Updated the task: Gym.", res.Reply)

	after, err := f.store.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
	assert.Equal(t, domain.StatusDone, after[0].Status)
}

func TestHandleRecommends(t *testing.T) {
	ctx := context.Background()
	backend := llm.NewScriptedLLM(
		llm.Reply(`{"intent":"select"}`),
		llm.Reply("Call mom now, it fits in your 20 minutes."),
	)
	f := newFixture(t, backend, gymTask(), domain.TaskFields{Name: "Call mom", Priority: 1, EstimatedTime: 15})

	res, err := f.svc.Handle(ctx, "I have 20 minutes, what should I do?")
	require.NoError(t, err)

	assert.Equal(t, domain.IntentSelect, res.Intent)
	assert.Equal(t, "Call mom now, it fits in your 20 minutes.", res.Reply)
	assert.Empty(t, res.Operations)
}

func TestHandleRecommendFallbacks(t *testing.T) {
	t.Run("backend failure", func(t *testing.T) {
		backend := llm.NewScriptedLLM(llm.Reply(`{"intent":"select"}`))
		f := newFixture(t, backend, gymTask())

		res, err := f.svc.Handle(context.Background(), "what now?")
		require.NoError(t, err)
		assert.Equal(t, assistant.ReplyNoSuggestion, res.Reply)
	})

	t.Run("no open tasks", func(t *testing.T) {
		backend := llm.NewScriptedLLM(llm.Reply(`{"intent":"select"}`))
		f := newFixture(t, backend)

		res, err := f.svc.Handle(context.Background(), "what now?")
		require.NoError(t, err)
		assert.Equal(t, assistant.ReplyNoActiveTasks, res.Reply)
	})
}

func TestHandleNotUnderstood(t *testing.T) {
	for name, backend := range map[string]*llm.ScriptedLLM{
		"unrelated":     llm.NewScriptedLLM(llm.Reply(`{"intent":"unrelated"}`)),
		"indeterminate": llm.NewScriptedLLM(),
	} {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, backend, gymTask())

			res, err := f.svc.Handle(context.Background(), "the weather is nice")
			require.NoError(t, err)
			assert.Equal(t, assistant.ReplyNotUnderstood, res.Reply)

			tasks, err := f.store.ListTasks(context.Background())
			require.NoError(t, err)
			assert.Len(t, tasks, 1)
		})
	}
}

func TestHandleExtractionFailure(t *testing.T) {
	backend := llm.NewScriptedLLM(
		llm.Reply(`{"intent":"update"}`),
		llm.Reply(`oops`), llm.Reply(`oops`), llm.Reply(`oops`),
	)
	f := newFixture(t, backend, gymTask())

	res, err := f.svc.Handle(context.Background(), "add something")
	require.NoError(t, err)
	assert.Equal(t, assistant.ReplyExtractFailed, res.Reply)
	assert.Nil(t, res.Operations)

	tasks, err := f.store.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestHandleRejectsEmptyTranscript(t *testing.T) {
	backend := llm.NewScriptedLLM()
	f := newFixture(t, backend)

	_, err := f.svc.Handle(context.Background(), " \n\t ")
	assert.ErrorIs(t, err, domain.ErrEmptyTranscript)
	assert.Empty(t, backend.Calls())
}

func TestHandleSpeakerPanicDoesNotEscape(t *testing.T) {
	backend := llm.NewScriptedLLM(llm.Reply(`{"intent":"unrelated"}`))
	svc := assistant.NewService(backend, memory.NewTaskStore(nil), nil, nil,
		assistant.WithSpeaker(panickingSpeaker{}))

	res, err := svc.Handle(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, assistant.ReplyNotUnderstood, res.Reply)
}

// blockingLLM holds the first call until released.
type blockingLLM struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingLLM) GenerateReply(ctx context.Context, prompt string, convCtx domain.ConversationContext) (string, error) {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return `{"intent":"unrelated"}`, nil
}

func TestHandleRejectsConcurrentCycle(t *testing.T) {
	backend := &blockingLLM{entered: make(chan struct{}, 1), release: make(chan struct{})}
	svc := assistant.NewService(backend, memory.NewTaskStore(nil), nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Handle(context.Background(), "first")
		done <- err
	}()
	<-backend.entered

	_, err := svc.Handle(context.Background(), "second")
	assert.ErrorIs(t, err, domain.ErrBusy)

	close(backend.release)
	require.NoError(t, <-done)

	_, err = svc.Handle(context.Background(), "third")
	assert.NoError(t, err)
}

func TestHandlePassesHistoryToRecommendation(t *testing.T) {
	ctx := context.Background()
	backend := llm.NewScriptedLLM(
		llm.Reply(`{"intent":"unrelated"}`),
		llm.Reply(`{"intent":"select"}`),
		llm.Reply("Go to the gym."),
	)
	f := newFixture(t, backend, gymTask())

	_, err := f.svc.Handle(ctx, "hello there")
	require.NoError(t, err)
	_, err = f.svc.Handle(ctx, "what should I do?")
	require.NoError(t, err)

	calls := backend.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, []domain.Turn{
		{Role: domain.RoleUser, Text: "hello there"},
		{Role: domain.RoleAgent, Text: assistant.ReplyNotUnderstood},
	}, calls[2].ConvCtx.History)
}

func TestHandleWithMockLLM(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewMockLLM(), gymTask(), domain.TaskFields{Name: "Call mom", Priority: 1, EstimatedTime: 15})

	res, err := f.svc.Handle(ctx, "I finished the gym session")
	require.NoError(t, err)
	assert.Equal(t, "Updated the task: Gym.", res.Reply)

	res, err = f.svc.Handle(ctx, "I have 20 minutes, what should I do?")
	require.NoError(t, err)
	assert.Equal(t, "You could work on Call mom next.", res.Reply)

	res, err = f.svc.Handle(ctx, "Add a task to water the plants")
	require.NoError(t, err)
	assert.Equal(t, "Added the task: Water the plants.", res.Reply)
}

func TestAddTaskAndListTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, llm.NewScriptedLLM())

	_, err := f.svc.AddTask(ctx, domain.TaskFields{Name: "  "})
	assert.Error(t, err)

	task, err := f.svc.AddTask(ctx, domain.TaskFields{Name: "Read", Status: domain.StatusDone})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID)

	all, err := f.svc.ListTasks(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	active, err := f.svc.ListTasks(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)
}

// unreachableStore fails every call.
type unreachableStore struct{}

func (unreachableStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return nil, errors.New("store offline")
}

func (unreachableStore) AddTask(ctx context.Context, fields domain.TaskFields) (domain.Task, error) {
	return domain.Task{}, errors.New("store offline")
}

func (unreachableStore) ModifyTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	return domain.Task{}, errors.New("store offline")
}

func TestHandleStoreUnavailable(t *testing.T) {
	backend := llm.NewScriptedLLM()
	cycles := memory.NewCycleStore()
	svc := assistant.NewService(backend, unreachableStore{}, cycles, nil)

	res, err := svc.Handle(context.Background(), "add a task to buy milk")
	require.NoError(t, err)

	assert.Equal(t, assistant.ReplyStoreFailed, res.Reply)
	assert.Empty(t, backend.Calls())

	recorded, err := cycles.ListRecentCycles(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, assistant.ReplyStoreFailed, recorded[0].Reply)
}
