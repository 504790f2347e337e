package history

import (
	"context"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

const defaultLimit = 20

// Service holds the logic of reading past interpretation cycles.
type Service struct {
	store domain.CycleStore
}

// NewService creates a history service from a CycleStore.
func NewService(store domain.CycleStore) *Service {
	return &Service{
		store: store,
	}
}

// Recent returns the last `limit` cycles, oldest first.
// If limit <= 0, a reasonable default value is used.
func (s *Service) Recent(ctx context.Context, limit int) ([]*domain.Cycle, error) {
	if s.store == nil {
		return []*domain.Cycle{}, nil
	}

	if limit <= 0 {
		limit = defaultLimit
	}

	return s.store.ListRecentCycles(ctx, limit)
}

// Get returns one cycle or an error wrapping domain.ErrCycleNotFound.
func (s *Service) Get(ctx context.Context, id domain.CycleID) (*domain.Cycle, error) {
	if s.store == nil {
		return nil, domain.ErrCycleNotFound
	}
	return s.store.GetCycle(ctx, id)
}
