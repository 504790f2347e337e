package agentflow

import (
	"context"
	"fmt"
	"time"

	"github.com/PabloGalante/brainbuddy/internal/domain"
	"github.com/PabloGalante/brainbuddy/internal/observability"
)

// Orchestrator classifies a transcript and routes it to the extractor or
// the recommendation engine. It never mutates tasks.
type Orchestrator struct {
	classifier  *IntentClassifier
	extractor   *OperationExtractor
	recommender *RecommendationEngine
}

// NewDefaultOrchestrator wires the three agents on one backend.
func NewDefaultOrchestrator(llm domain.LLMClient) *Orchestrator {
	return &Orchestrator{
		classifier:  NewIntentClassifier(llm),
		extractor:   NewOperationExtractor(llm),
		recommender: NewRecommendationEngine(llm),
	}
}

type Input struct {
	Transcript string
	Tasks      []domain.Task // snapshot taken at cycle start
	History    []domain.Turn
	Now        time.Time
}

type Output struct {
	Intent     domain.Intent
	Operations []domain.TaskOperation
	Suggestion string // "" when no suggestion is available
}

// Run returns an error only when extraction failed for an update intent.
func (o *Orchestrator) Run(ctx context.Context, in Input) (Output, error) {
	log := observability.LoggerFromContext(ctx)
	start := time.Now()

	out := Output{Intent: o.classifier.Classify(ctx, in.Transcript)}

	switch out.Intent {
	case domain.IntentUpdate:
		ops, err := o.extractor.Extract(ctx, in.Transcript, in.Tasks, in.Now)
		if err != nil {
			return out, fmt.Errorf("extract operations: %w", err)
		}
		out.Operations = ops
	case domain.IntentSelect:
		out.Suggestion = o.recommender.Recommend(ctx, in.Transcript, in.Tasks, in.History, in.Now)
	}

	log.Info("orchestrator end",
		"intent", out.Intent,
		"operations_count", len(out.Operations),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}
