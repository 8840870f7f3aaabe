package audit

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
)

type mockRepo struct {
	entries  []*Entry
	owners   map[uuid.UUID]uuid.UUID
	lastSpec *QuerySpec
}

func newMockRepo() *mockRepo {
	return &mockRepo{owners: map[uuid.UUID]uuid.UUID{}}
}

func (m *mockRepo) Append(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockRepo) Query(ctx context.Context, spec QuerySpec) ([]*Entry, error) {
	m.lastSpec = &spec
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepo) ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*Entry, error) {
	var out []*Entry
	for _, e := range m.entries {
		if e.IntakeID == intakeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockRepo) IntakeOwner(ctx context.Context, intakeID uuid.UUID) (uuid.UUID, error) {
	owner, ok := m.owners[intakeID]
	if !ok {
		return uuid.Nil, apperr.New(apperr.NotFound, "Intake not found")
	}
	return owner, nil
}

func (m *mockRepo) DistinctActions(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, e := range m.entries {
		if !seen[e.Action] {
			seen[e.Action] = true
			out = append(out, e.Action)
		}
	}
	sort.Strings(out)
	return out, nil
}

func reviewer() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "rev@example.com", Name: "Rev", Role: auth.RoleReviewer}
}

func patient() *auth.Identity {
	return &auth.Identity{UserID: uuid.New(), Email: "pat@example.com", Name: "Pat", Role: auth.RolePatient}
}

func TestRecordEncodesDetails(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	actorID := uuid.New()
	intakeID := uuid.New()
	err := svc.Record(context.Background(), actorID, intakeID, ActionStatusChanged,
		StatusChangedDetails{PreviousStatus: "PENDING", NewStatus: "APPROVED"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.Action != ActionStatusChanged {
		t.Errorf("action = %q", e.Action)
	}

	var d StatusChangedDetails
	if err := e.DecodeDetails(&d); err != nil {
		t.Fatalf("DecodeDetails: %v", err)
	}
	if d.PreviousStatus != "PENDING" || d.NewStatus != "APPROVED" {
		t.Errorf("details = %+v", d)
	}
	if d.BulkAction {
		t.Error("bulkAction should be false by default")
	}
}

func TestRecordNilDetailsStoresNull(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	if err := svc.Record(context.Background(), uuid.New(), uuid.New(), ActionViewModeRedacted, nil); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if repo.entries[0].Details != nil {
		t.Errorf("details = %q, want nil", *repo.entries[0].Details)
	}
}

func TestManualAppendRequiresReviewer(t *testing.T) {
	repo := newMockRepo()
	intakeID := uuid.New()
	repo.owners[intakeID] = uuid.New()
	svc := NewService(repo)

	_, err := svc.ManualAppend(context.Background(), patient(),
		ManualInput{IntakeID: intakeID.String(), Action: ActionViewed})
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.KindOf(err))
	}
}

func TestManualAppendUnknownIntake(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.ManualAppend(context.Background(), reviewer(),
		ManualInput{IntakeID: uuid.New().String(), Action: ActionViewed})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestManualAppendRecordsActor(t *testing.T) {
	repo := newMockRepo()
	intakeID := uuid.New()
	repo.owners[intakeID] = uuid.New()
	svc := NewService(repo)
	caller := reviewer()

	entry, err := svc.ManualAppend(context.Background(), caller,
		ManualInput{IntakeID: intakeID.String(), Action: ActionAssigned, Details: json.RawMessage(`"note"`)})
	if err != nil {
		t.Fatalf("ManualAppend: %v", err)
	}
	if entry.UserID != caller.UserID {
		t.Errorf("userID = %s, want caller", entry.UserID)
	}
	if entry.Details == nil || *entry.Details != `"note"` {
		t.Errorf("details = %v", entry.Details)
	}
}

func TestManualAppendStructuredDetails(t *testing.T) {
	repo := newMockRepo()
	intakeID := uuid.New()
	repo.owners[intakeID] = uuid.New()
	svc := NewService(repo)

	var in ManualInput
	body := `{"action":"VIEW_MODE_PRIVILEGED","details":{"viewedBy":"Dr. Rev"}}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatalf("details must bind as any JSON value: %v", err)
	}
	in.IntakeID = intakeID.String()

	entry, err := svc.ManualAppend(context.Background(), reviewer(), in)
	if err != nil {
		t.Fatalf("ManualAppend: %v", err)
	}
	if entry.Details == nil {
		t.Fatal("details = nil, want stored object")
	}
	var d ViewedDetails
	if err := entry.DecodeDetails(&d); err != nil {
		t.Fatalf("DecodeDetails: %v", err)
	}
	if d.ViewedBy != "Dr. Rev" {
		t.Errorf("viewedBy = %q", d.ViewedBy)
	}
}

func TestManualAppendNullDetailsStoresNull(t *testing.T) {
	repo := newMockRepo()
	intakeID := uuid.New()
	repo.owners[intakeID] = uuid.New()
	svc := NewService(repo)

	var in ManualInput
	if err := json.Unmarshal([]byte(`{"action":"ASSIGNED","details":null}`), &in); err != nil {
		t.Fatal(err)
	}
	in.IntakeID = intakeID.String()

	entry, err := svc.ManualAppend(context.Background(), reviewer(), in)
	if err != nil {
		t.Fatalf("ManualAppend: %v", err)
	}
	if entry.Details != nil {
		t.Errorf("details = %q, want nil", *entry.Details)
	}
}

func TestViewModeTogglesAppendInOrder(t *testing.T) {
	repo := newMockRepo()
	owner := patient()
	intakeID := uuid.New()
	repo.owners[intakeID] = owner.UserID
	svc := NewService(repo)
	caller := reviewer()

	toggles := []string{ActionViewModePrivileged, ActionViewModeRedacted, ActionViewModePrivileged}
	for _, action := range toggles {
		_, err := svc.ManualAppend(context.Background(), caller,
			ManualInput{IntakeID: intakeID.String(), Action: action})
		if err != nil {
			t.Fatalf("ManualAppend %s: %v", action, err)
		}
	}

	entries, err := svc.Trail(context.Background(), caller, intakeID)
	if err != nil {
		t.Fatalf("Trail: %v", err)
	}
	if len(entries) != len(toggles) {
		t.Fatalf("len = %d, want %d", len(entries), len(toggles))
	}
	for i, action := range toggles {
		if entries[i].Action != action {
			t.Errorf("entries[%d].Action = %q, want %q", i, entries[i].Action, action)
		}
	}
}

func TestQueryRequiresReviewer(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Query(context.Background(), patient(), Filter{})
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("kind = %v, want Forbidden", apperr.KindOf(err))
	}
}

func TestQueryBareEndDateCoversWholeDay(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.Query(context.Background(), reviewer(), Filter{
		StartDate: "2026-03-01",
		EndDate:   "2026-03-05",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	wantFrom := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	if !repo.lastSpec.From.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", repo.lastSpec.From, wantFrom)
	}
	if !repo.lastSpec.To.Equal(wantTo) {
		t.Errorf("to = %v, want %v (end bound advanced a day)", repo.lastSpec.To, wantTo)
	}
}

func TestQueryTimestampEndDateUsedExactly(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.Query(context.Background(), reviewer(), Filter{
		EndDate: "2026-03-05T12:30:00Z",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	want := time.Date(2026, 3, 5, 12, 30, 0, 0, time.UTC)
	if !repo.lastSpec.To.Equal(want) {
		t.Errorf("to = %v, want %v", repo.lastSpec.To, want)
	}
}

func TestQueryAllSentinelsMeanNoFilter(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	_, err := svc.Query(context.Background(), reviewer(), Filter{
		Action:     "all",
		ReviewerID: "all",
	})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if repo.lastSpec.Action != "" {
		t.Errorf("action = %q, want empty for the all sentinel", repo.lastSpec.Action)
	}
	if repo.lastSpec.ActorID != nil {
		t.Errorf("actorID = %v, want nil for the all sentinel", repo.lastSpec.ActorID)
	}
}

func TestQueryInvalidDate(t *testing.T) {
	svc := NewService(newMockRepo())

	_, err := svc.Query(context.Background(), reviewer(), Filter{StartDate: "03/01/2026"})
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("kind = %v, want Validation", apperr.KindOf(err))
	}
}

func TestTrailOwnership(t *testing.T) {
	repo := newMockRepo()
	owner := patient()
	intakeID := uuid.New()
	repo.owners[intakeID] = owner.UserID

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		repo.entries = append(repo.entries, &Entry{
			ID:        uuid.New(),
			Action:    ActionViewed,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UserID:    owner.UserID,
			IntakeID:  intakeID,
		})
	}
	svc := NewService(repo)

	entries, err := svc.Trail(context.Background(), owner, intakeID)
	if err != nil {
		t.Fatalf("Trail as owner: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.Before(entries[i-1].CreatedAt) {
			t.Error("trail not oldest-first")
		}
	}

	if _, err := svc.Trail(context.Background(), reviewer(), intakeID); err != nil {
		t.Errorf("Trail as reviewer: %v", err)
	}

	_, err = svc.Trail(context.Background(), patient(), intakeID)
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Errorf("kind = %v, want Forbidden for non-owner patient", apperr.KindOf(err))
	}
}
