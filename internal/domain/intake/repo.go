package intake

import (
	"context"

	"github.com/google/uuid"
)

// StatusRef pairs an intake id with its current status, for the bulk
// partition.
type StatusRef struct {
	ID     uuid.UUID
	Status string
}

type Repository interface {
	Create(ctx context.Context, i *Intake) error
	// GetByID returns the intake with participant summaries populated.
	GetByID(ctx context.Context, id uuid.UUID) (*Intake, error)
	// List returns intakes newest-first with participant summaries and
	// document counts. A nil submitterID returns all intakes.
	List(ctx context.Context, submitterID *uuid.UUID) ([]*Intake, error)
	// GetStatuses resolves the subset of ids that exist, with their
	// current status. Missing ids are simply absent from the result.
	GetStatuses(ctx context.Context, ids []uuid.UUID) ([]StatusRef, error)
	// UpdateStatus sets status and reviewer together.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID) error
	// UpdateStatusMany applies one status and reviewer to all ids.
	UpdateStatusMany(ctx context.Context, ids []uuid.UUID, status string, reviewerID uuid.UUID) error
	UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error
}
