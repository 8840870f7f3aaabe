package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
)

// Filter carries the raw query parameters for the global trail before they
// are resolved into a QuerySpec. Action and ReviewerID accept "all" as a
// no-filter sentinel, matching what the filter dropdowns send.
type Filter struct {
	Search     string
	Action     string
	ReviewerID string
	StartDate  string
	EndDate    string
}

// ManualInput is a caller-supplied entry appended through the API rather
// than as a side effect of another operation. Details may be any JSON
// value; it is stored verbatim.
type ManualInput struct {
	IntakeID string          `json:"intakeId"`
	Action   string          `json:"action"`
	Details  json.RawMessage `json:"details"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends an entry as a side effect of another operation. It joins
// any transaction on ctx so the entry and the operation commit together.
func (s *Service) Record(ctx context.Context, actorID, intakeID uuid.UUID, action string, details interface{}) error {
	encoded, err := EncodeDetails(details)
	if err != nil {
		return apperr.Wrap(apperr.Internal, "encode audit details", err)
	}
	return s.repo.Append(ctx, &Entry{
		Action:   action,
		Details:  encoded,
		UserID:   actorID,
		IntakeID: intakeID,
	})
}

// ManualAppend records a caller-supplied entry. Reviewer only; the intake
// must exist.
func (s *Service) ManualAppend(ctx context.Context, caller *auth.Identity, in ManualInput) (*Entry, error) {
	if err := auth.RequireReviewer(caller, "create audit logs"); err != nil {
		return nil, err
	}
	if in.IntakeID == "" || in.Action == "" {
		return nil, apperr.New(apperr.Validation, "intakeId and action are required")
	}
	intakeID, err := uuid.Parse(in.IntakeID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "Invalid intake id")
	}

	if _, err := s.repo.IntakeOwner(ctx, intakeID); err != nil {
		return nil, err
	}

	e := &Entry{
		Action:   in.Action,
		UserID:   caller.UserID,
		IntakeID: intakeID,
	}
	if len(in.Details) > 0 && string(in.Details) != "null" {
		d := string(in.Details)
		e.Details = &d
	}
	if err := s.repo.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Query returns the filtered global trail newest-first. Reviewer only.
func (s *Service) Query(ctx context.Context, caller *auth.Identity, f Filter) ([]*Entry, error) {
	if err := auth.RequireReviewer(caller, "view audit logs"); err != nil {
		return nil, err
	}

	if f.Action == "all" {
		f.Action = ""
	}
	if f.ReviewerID == "all" {
		f.ReviewerID = ""
	}

	spec := QuerySpec{Search: f.Search, Action: f.Action}

	if f.ReviewerID != "" {
		id, err := uuid.Parse(f.ReviewerID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "Invalid reviewer id")
		}
		spec.ActorID = &id
	}

	if f.StartDate != "" {
		t, err := parseDateBound(f.StartDate, false)
		if err != nil {
			return nil, err
		}
		spec.From = &t
	}
	if f.EndDate != "" {
		t, err := parseDateBound(f.EndDate, true)
		if err != nil {
			return nil, err
		}
		spec.To = &t
	}

	return s.repo.Query(ctx, spec)
}

// Trail returns an intake's trail oldest-first. The submitting patient and
// any reviewer may read it.
func (s *Service) Trail(ctx context.Context, caller *auth.Identity, intakeID uuid.UUID) ([]*Entry, error) {
	ownerID, err := s.repo.IntakeOwner(ctx, intakeID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrReviewer(caller, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByIntake(ctx, intakeID)
}

// ActionTypes lists the distinct action names recorded so far, for filter UIs.
func (s *Service) ActionTypes(ctx context.Context) ([]string, error) {
	return s.repo.DistinctActions(ctx)
}

// parseDateBound accepts RFC 3339 timestamps as-is. A bare calendar date
// used as an end bound is advanced one day so the filter includes the whole
// day rather than cutting off at midnight.
func parseDateBound(raw string, end bool) (time.Time, error) {
	if len(raw) == 10 {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, apperr.New(apperr.Validation, "Invalid date format")
		}
		if end {
			t = t.Add(24 * time.Hour)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperr.New(apperr.Validation, "Invalid date format")
	}
	return t, nil
}
