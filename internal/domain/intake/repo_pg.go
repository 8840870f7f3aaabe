package intake

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/db"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

func (r *RepoPG) conn(ctx context.Context) db.Queryable {
	return db.Conn(ctx, r.pool)
}

const intakeCols = `i.id, i.client_name, i.client_email, i.client_phone, i.date_of_birth,
	i.ssn, i.description, i.notes, i.status, i.created_at, i.updated_at,
	i.submitted_by_id, i.reviewer_id,
	s.id, s.name, s.email,
	rv.id, rv.name, rv.email,
	(SELECT COUNT(*) FROM documents d WHERE d.intake_id = i.id)`

const intakeJoins = `FROM intakes i
	JOIN users s ON s.id = i.submitted_by_id
	LEFT JOIN users rv ON rv.id = i.reviewer_id`

func scanIntake(row pgx.Row) (*Intake, error) {
	var in Intake
	var submitter UserSummary
	var revID *uuid.UUID
	var revName, revEmail *string
	var count int64
	err := row.Scan(
		&in.ID, &in.ClientName, &in.ClientEmail, &in.ClientPhone, &in.DateOfBirth,
		&in.SSN, &in.Description, &in.Notes, &in.Status, &in.CreatedAt, &in.UpdatedAt,
		&in.SubmittedByID, &in.ReviewerID,
		&submitter.ID, &submitter.Name, &submitter.Email,
		&revID, &revName, &revEmail,
		&count,
	)
	if err != nil {
		return nil, err
	}
	in.SubmittedBy = &submitter
	if revID != nil {
		in.Reviewer = &UserSummary{ID: *revID, Name: *revName, Email: *revEmail}
	}
	in.DocumentCount = int(count)
	return &in, nil
}

func (r *RepoPG) Create(ctx context.Context, i *Intake) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusPending
	}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO intakes (id, client_name, client_email, client_phone, date_of_birth,
			ssn, description, notes, status, submitted_by_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING created_at, updated_at`,
		i.ID, i.ClientName, i.ClientEmail, i.ClientPhone, i.DateOfBirth,
		i.SSN, i.Description, i.Notes, i.Status, i.SubmittedByID,
	).Scan(&i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert intake: %w", err)
	}
	return nil
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Intake, error) {
	q := fmt.Sprintf("SELECT %s %s WHERE i.id = $1", intakeCols, intakeJoins)
	in, err := scanIntake(r.conn(ctx).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "Intake not found")
		}
		return nil, fmt.Errorf("get intake: %w", err)
	}
	return in, nil
}

func (r *RepoPG) List(ctx context.Context, submitterID *uuid.UUID) ([]*Intake, error) {
	q := fmt.Sprintf("SELECT %s %s", intakeCols, intakeJoins)
	args := []interface{}{}
	if submitterID != nil {
		q += " WHERE i.submitted_by_id = $1"
		args = append(args, *submitterID)
	}
	q += " ORDER BY i.created_at DESC"

	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	defer rows.Close()

	var intakes []*Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, fmt.Errorf("scan intake: %w", err)
		}
		intakes = append(intakes, in)
	}
	return intakes, rows.Err()
}

func (r *RepoPG) GetStatuses(ctx context.Context, ids []uuid.UUID) ([]StatusRef, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT id, status FROM intakes WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get statuses: %w", err)
	}
	defer rows.Close()

	var refs []StatusRef
	for rows.Next() {
		var ref StatusRef
		if err := rows.Scan(&ref.ID, &ref.Status); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (r *RepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status string, reviewerID uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE intakes SET status = $2, reviewer_id = $3, updated_at = now() WHERE id = $1`,
		id, status, reviewerID)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "Intake not found")
	}
	return nil
}

func (r *RepoPG) UpdateStatusMany(ctx context.Context, ids []uuid.UUID, status string, reviewerID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE intakes SET status = $2, reviewer_id = $3, updated_at = now() WHERE id = ANY($1)`,
		ids, status, reviewerID)
	if err != nil {
		return fmt.Errorf("bulk update status: %w", err)
	}
	return nil
}

func (r *RepoPG) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE intakes SET notes = $2, updated_at = now() WHERE id = $1`,
		id, notes)
	if err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "Intake not found")
	}
	return nil
}
