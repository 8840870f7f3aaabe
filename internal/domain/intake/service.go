package intake

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/domain/audit"
	"github.com/intake/intake/internal/domain/document"
	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
	"github.com/intake/intake/internal/platform/db"
)

// ViewModeRedacted selects the masked projection of an intake.
const ViewModeRedacted = "redacted"

// DocumentLister supplies an intake's documents for the detail view. The
// document repository satisfies it.
type DocumentLister interface {
	ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*document.Document, error)
}

// TrailSource supplies an intake's audit trail for the detail view. The
// audit repository satisfies it.
type TrailSource interface {
	ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*audit.Entry, error)
}

type Service struct {
	repo   Repository
	docs   DocumentLister
	trail  TrailSource
	audits *audit.Service
	tx     db.TxRunner
}

func NewService(repo Repository, docs DocumentLister, trail TrailSource, audits *audit.Service, tx db.TxRunner) *Service {
	return &Service{repo: repo, docs: docs, trail: trail, audits: audits, tx: tx}
}

// Create submits a new intake and records its creation, both in one
// transaction.
func (s *Service) Create(ctx context.Context, caller *auth.Identity, in CreateInput) (*Intake, error) {
	if err := auth.RequirePatient(caller, "submit intakes"); err != nil {
		return nil, err
	}
	if in.ClientName == "" || in.ClientEmail == "" || in.ClientPhone == "" ||
		in.DateOfBirth == "" || in.SSN == "" || in.Description == "" {
		return nil, apperr.New(apperr.Validation, "Missing required fields")
	}

	intake := &Intake{
		ClientName:    in.ClientName,
		ClientEmail:   in.ClientEmail,
		ClientPhone:   in.ClientPhone,
		DateOfBirth:   in.DateOfBirth,
		SSN:           in.SSN,
		Description:   in.Description,
		Status:        StatusPending,
		SubmittedByID: caller.UserID,
	}
	if in.Notes != "" {
		notes := in.Notes
		intake.Notes = &notes
	}

	err := s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, intake); err != nil {
			return err
		}
		return s.audits.Record(ctx, caller.UserID, intake.ID, audit.ActionCreated,
			audit.CreatedDetails{IntakeID: intake.ID.String()})
	})
	if err != nil {
		return nil, err
	}

	intake.SubmittedBy = &UserSummary{ID: caller.UserID, Name: caller.Name, Email: caller.Email}
	return intake, nil
}

// List returns intakes newest-first: a patient's own submissions, or all of
// them for a reviewer.
func (s *Service) List(ctx context.Context, caller *auth.Identity) ([]*Intake, error) {
	var submitterID *uuid.UUID
	if caller.Role == auth.RolePatient {
		id := caller.UserID
		submitterID = &id
	}
	return s.repo.List(ctx, submitterID)
}

// GetOptions tunes a detail read. SkipAudit suppresses the VIEWED entry a
// reviewer read would otherwise append, for refresh-after-mutation reads
// that should not count as a new view. ViewMode selects the redacted
// projection.
type GetOptions struct {
	SkipAudit bool
	ViewMode  string
}

// Get returns the intake detail, ownership-checked. A reviewer read appends
// a VIEWED entry unless opts.SkipAudit is set.
func (s *Service) Get(ctx context.Context, caller *auth.Identity, id uuid.UUID, opts GetOptions) (*Detail, error) {
	intake, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrReviewer(caller, intake.SubmittedByID); err != nil {
		return nil, err
	}

	docs, err := s.docs.ListByIntake(ctx, intake.ID)
	if err != nil {
		return nil, err
	}
	trail, err := s.trail.ListByIntake(ctx, intake.ID)
	if err != nil {
		return nil, err
	}

	// Recorded after the trail read so the response shows the trail as it
	// stood, not the view it just triggered.
	if caller.Role == auth.RoleReviewer && !opts.SkipAudit {
		err := s.audits.Record(ctx, caller.UserID, intake.ID, audit.ActionViewed,
			audit.ViewedDetails{ViewedBy: caller.Name})
		if err != nil {
			return nil, err
		}
	}

	if opts.ViewMode == ViewModeRedacted {
		intake = intake.Redacted()
	}
	if docs == nil {
		docs = []*document.Document{}
	}
	if trail == nil {
		trail = []*audit.Entry{}
	}
	return &Detail{Intake: intake, Documents: docs, AuditLogs: trail}, nil
}

// Update applies a status and/or notes change. A status change also assigns
// the acting reviewer and appends one STATUS_CHANGED entry, atomically.
// Setting the current status again is a no-op, and a notes-only change
// appends nothing.
func (s *Service) Update(ctx context.Context, caller *auth.Identity, id uuid.UUID, in UpdateInput) (*Intake, error) {
	if err := auth.RequireReviewer(caller, "update intakes"); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	statusChanged := in.Status != nil && *in.Status != existing.Status

	err = s.tx(ctx, func(ctx context.Context) error {
		if statusChanged {
			if err := s.repo.UpdateStatus(ctx, id, *in.Status, caller.UserID); err != nil {
				return err
			}
		}
		if in.Notes != nil {
			if err := s.repo.UpdateNotes(ctx, id, *in.Notes); err != nil {
				return err
			}
		}
		if !statusChanged {
			return nil
		}
		details := audit.StatusChangedDetails{
			PreviousStatus: existing.Status,
			NewStatus:      *in.Status,
		}
		if in.Notes != nil {
			details.Notes = "Notes updated"
		}
		return s.audits.Record(ctx, caller.UserID, id, audit.ActionStatusChanged, details)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, id)
}

// BulkUpdate applies one status to many intakes. Ids already at the target
// status are counted as skipped with no audit entry; ids that do not
// resolve are ignored unless none resolve at all. Each changed record gets
// its own STATUS_CHANGED entry tagged as a bulk action, all in one
// transaction with the update itself.
func (s *Service) BulkUpdate(ctx context.Context, caller *auth.Identity, in BulkInput) (*BulkResult, error) {
	if err := auth.RequireReviewer(caller, "bulk update intakes"); err != nil {
		return nil, err
	}
	if len(in.IntakeIDs) == 0 {
		return nil, apperr.New(apperr.Validation, "intakeIds must be a non-empty array")
	}
	if in.Status == "" {
		return nil, apperr.New(apperr.Validation, "status is required")
	}
	if !ValidStatus(in.Status) {
		return nil, apperr.New(apperr.Validation,
			"Invalid status. Must be one of: PENDING, IN_REVIEW, APPROVED, REJECTED")
	}

	ids := make([]uuid.UUID, 0, len(in.IntakeIDs))
	for _, raw := range in.IntakeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			// Malformed ids cannot resolve to records; treat them like
			// missing ones.
			continue
		}
		ids = append(ids, id)
	}

	existing, err := s.repo.GetStatuses(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return nil, apperr.New(apperr.NotFound, "No intakes found with the provided IDs")
	}

	var toUpdate []StatusRef
	for _, ref := range existing {
		if ref.Status != in.Status {
			toUpdate = append(toUpdate, ref)
		}
	}

	if len(toUpdate) == 0 {
		return &BulkResult{
			Message: "No intakes needed status change",
			Updated: 0,
			Skipped: len(existing),
		}, nil
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		updateIDs := make([]uuid.UUID, len(toUpdate))
		for i, ref := range toUpdate {
			updateIDs[i] = ref.ID
		}
		if err := s.repo.UpdateStatusMany(ctx, updateIDs, in.Status, caller.UserID); err != nil {
			return err
		}
		for _, ref := range toUpdate {
			err := s.audits.Record(ctx, caller.UserID, ref.ID, audit.ActionStatusChanged,
				audit.StatusChangedDetails{
					PreviousStatus: ref.Status,
					NewStatus:      in.Status,
					BulkAction:     true,
				})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &BulkResult{
		Message: fmt.Sprintf("Successfully updated %d intake(s)", len(toUpdate)),
		Updated: len(toUpdate),
		Skipped: len(existing) - len(toUpdate),
	}, nil
}
