package document

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*Document, error)
	// ListByIntake returns an intake's documents newest-first.
	ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*Document, error)
	// IntakeOwner reports who submitted the intake, or NotFound.
	IntakeOwner(ctx context.Context, intakeID uuid.UUID) (uuid.UUID, error)
}
