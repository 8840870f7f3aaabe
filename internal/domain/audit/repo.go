package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuerySpec is the resolved filter set applied to the global trail. All
// fields are optional and AND-combined; Search is OR-combined internally
// over actor name/email and intake client-name/id.
type QuerySpec struct {
	Search  string
	Action  string
	ActorID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

type Repository interface {
	// Append inserts an entry. It joins any transaction on ctx so the
	// entry commits or rolls back together with the operation it records.
	Append(ctx context.Context, e *Entry) error
	// Query returns matching entries newest-first with actor and intake
	// summaries populated.
	Query(ctx context.Context, spec QuerySpec) ([]*Entry, error)
	// ListByIntake returns an intake's trail oldest-first with actor
	// summaries populated.
	ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*Entry, error)
	// IntakeOwner reports who submitted the intake, or NotFound.
	IntakeOwner(ctx context.Context, intakeID uuid.UUID) (uuid.UUID, error)
	DistinctActions(ctx context.Context) ([]string, error)
}
