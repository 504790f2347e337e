package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// CycleStore is a simple in-memory implementation of domain.CycleStore.
// It is NOT persistent and is only suitable for development / local mode.
type CycleStore struct {
	mu     sync.RWMutex
	cycles []*domain.Cycle
}

func NewCycleStore() *CycleStore {
	return &CycleStore{}
}

func (s *CycleStore) AppendCycle(ctx context.Context, cycle *domain.Cycle) error {
	if cycle == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cycle.ID == "" {
		cycle.ID = domain.CycleID(uuid.NewString())
	}

	s.cycles = append(s.cycles, cycle)
	return nil
}

func (s *CycleStore) GetCycle(ctx context.Context, id domain.CycleID) (*domain.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.cycles {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("cycle %q: %w", id, domain.ErrCycleNotFound)
}

// ListRecentCycles returns the last `limit` cycles. If limit <= 0, returns all.
func (s *CycleStore) ListRecentCycles(ctx context.Context, limit int) ([]*domain.Cycle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.cycles) {
		limit = len(s.cycles)
	}

	selected := s.cycles[len(s.cycles)-limit:]
	out := make([]*domain.Cycle, len(selected))
	copy(out, selected)
	return out, nil
}
