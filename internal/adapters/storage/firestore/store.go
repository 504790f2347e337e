package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/PabloGalante/brainbuddy/internal/domain"
)

// Store keeps interpretation cycles in Firestore.
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store.
// Uses the project passed (BRAINBUDDY_GCP_PROJECT).
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) cyclesCol() *firestore.CollectionRef {
	return s.client.Collection("cycles")
}

func (s *Store) cycleDoc(id domain.CycleID) *firestore.DocumentRef {
	return s.cyclesCol().Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type cycleDoc struct {
	Transcript string         `firestore:"transcript"`
	Intent     string         `firestore:"intent"`
	Reply      string         `firestore:"reply"`
	Operations []operationDoc `firestore:"operations"`
	CreatedAt  time.Time      `firestore:"created_at"`
}

type operationDoc struct {
	Operation       string     `firestore:"operation"`
	Name            string     `firestore:"name"`
	Date            *time.Time `firestore:"date"`
	DateType        string     `firestore:"date_type"`
	Priority        int        `firestore:"priority"`
	RequiredStamina int        `firestore:"required_stamina"`
	EstimatedTime   int        `firestore:"estimated_time"`
	Status          string     `firestore:"status"`
}

func toCycleDoc(c *domain.Cycle) cycleDoc {
	ops := make([]operationDoc, 0, len(c.Operations))
	for _, op := range c.Operations {
		ops = append(ops, operationDoc{
			Operation:       string(op.Operation),
			Name:            op.Name,
			Date:            op.Date,
			DateType:        string(op.DateType),
			Priority:        op.Priority,
			RequiredStamina: op.RequiredStamina,
			EstimatedTime:   op.EstimatedTime,
			Status:          string(op.Status),
		})
	}
	return cycleDoc{
		Transcript: c.Transcript,
		Intent:     string(c.Intent),
		Reply:      c.Reply,
		Operations: ops,
		CreatedAt:  c.CreatedAt,
	}
}

func fromCycleDoc(id string, doc cycleDoc) *domain.Cycle {
	ops := make([]domain.TaskOperation, 0, len(doc.Operations))
	for _, op := range doc.Operations {
		ops = append(ops, domain.TaskOperation{
			Operation: domain.OperationKind(op.Operation),
			TaskFields: domain.TaskFields{
				Name:            op.Name,
				Date:            op.Date,
				DateType:        domain.DateType(op.DateType),
				Priority:        op.Priority,
				RequiredStamina: op.RequiredStamina,
				EstimatedTime:   op.EstimatedTime,
				Status:          domain.TaskStatus(op.Status),
			},
		})
	}
	return &domain.Cycle{
		ID:         domain.CycleID(id),
		Transcript: doc.Transcript,
		Intent:     domain.Intent(doc.Intent),
		Reply:      doc.Reply,
		Operations: ops,
		CreatedAt:  doc.CreatedAt,
	}
}

// ─────────────────────────────────────────
// CycleStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendCycle(ctx context.Context, cycle *domain.Cycle) error {
	if cycle == nil {
		return nil
	}
	if cycle.ID == "" {
		cycle.ID = domain.CycleID(uuid.NewString())
	}

	_, err := s.cycleDoc(cycle.ID).Create(ctx, toCycleDoc(cycle))
	if err != nil {
		return fmt.Errorf("firestore AppendCycle: %w", err)
	}
	return nil
}

func (s *Store) GetCycle(ctx context.Context, id domain.CycleID) (*domain.Cycle, error) {
	snap, err := s.cycleDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("cycle %q: %w", id, domain.ErrCycleNotFound)
		}
		return nil, fmt.Errorf("firestore GetCycle: %w", err)
	}

	var doc cycleDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetCycle decode: %w", err)
	}
	return fromCycleDoc(snap.Ref.ID, doc), nil
}

// ListRecentCycles returns the last `limit` cycles, oldest first.
func (s *Store) ListRecentCycles(ctx context.Context, limit int) ([]*domain.Cycle, error) {
	q := s.cyclesCol().OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.Cycle
	for {
		snap, err := iter.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) {
				break
			}
			return nil, fmt.Errorf("firestore ListRecentCycles: %w", err)
		}

		var doc cycleDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode cycleDoc: %w", err)
		}
		out = append(out, fromCycleDoc(snap.Ref.ID, doc))
	}

	// newest first from the query, callers want chronological order
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
