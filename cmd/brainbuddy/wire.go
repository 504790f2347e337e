package main

import (
	"context"
	"fmt"

	"github.com/PabloGalante/brainbuddy/internal/adapters/llm"
	"github.com/PabloGalante/brainbuddy/internal/adapters/notify"
	firestorestore "github.com/PabloGalante/brainbuddy/internal/adapters/storage/firestore"
	memstore "github.com/PabloGalante/brainbuddy/internal/adapters/storage/memory"
	"github.com/PabloGalante/brainbuddy/internal/app/assistant"
	"github.com/PabloGalante/brainbuddy/internal/app/history"
	"github.com/PabloGalante/brainbuddy/internal/config"
	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

// app holds everything a command needs. close releases backend clients.
type app struct {
	cfg       *config.Config
	assistant *assistant.Service
	history   *history.Service
	close     func()
}

func newApp(ctx context.Context, opts ...assistant.Option) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	observability.SetLevel(cfg.LogLevel)
	log := observability.Logger()

	llmClient, err := newLLM(ctx, cfg)
	if err != nil {
		return nil, err
	}

	closers := []func(){}
	var cycles domain.CycleStore

	switch cfg.StorageBackend {
	case "firestore":
		log.Info("using firestore cycle history", "project", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, fmt.Errorf("initializing firestore store: %w", err)
		}
		cycles = fsStore
		closers = append(closers, func() { _ = fsStore.Close() })
	default:
		log.Info("using in-memory cycle history")
		cycles = memstore.NewCycleStore()
	}

	// Tasks always live in memory for the life of the process.
	tasks := memstore.NewTaskStore(cfg.Now)

	opts = append([]assistant.Option{assistant.WithClock(cfg.Now)}, opts...)
	svc := assistant.NewService(llmClient, tasks, cycles, notify.NewLogNotifier(nil), opts...)

	path := cfg.SeedFile
	if seedFile != "" {
		path = seedFile
	}
	seed, err := config.LoadSeedTasks(path, cfg.Now())
	if err != nil {
		return nil, err
	}
	if err := svc.Seed(ctx, seed); err != nil {
		return nil, fmt.Errorf("seeding tasks: %w", err)
	}

	return &app{
		cfg:       cfg,
		assistant: svc,
		history:   history.NewService(cycles),
		close: func() {
			for _, c := range closers {
				c()
			}
		},
	}, nil
}

func newLLM(ctx context.Context, cfg *config.Config) (domain.LLMClient, error) {
	log := observability.Logger()

	switch cfg.LLMBackend {
	case config.LLMBackendMock:
		log.Info("using mock llm client")
		return llm.NewMockLLM(), nil
	default:
		log.Info("using gemini llm client", "backend", cfg.LLMBackend, "model", cfg.ModelName)
		client, err := llm.NewGeminiClient(ctx, llm.GeminiConfig{
			Backend:   cfg.LLMBackend,
			APIKey:    cfg.GeminiAPIKey,
			ProjectID: cfg.GCPProjectID,
			Location:  cfg.GCPLocation,
			ModelName: cfg.ModelName,
			Timeout:   cfg.LLMTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing llm client: %w", err)
		}
		return client, nil
	}
}
