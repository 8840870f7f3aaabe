package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

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

func (r *RepoPG) Append(ctx context.Context, e *Entry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO audit_logs (id, action, details, created_at, user_id, intake_id)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Action, e.Details, e.CreatedAt, e.UserID, e.IntakeID,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

const entryCols = `a.id, a.action, a.details, a.created_at, a.user_id, a.intake_id,
	u.id, u.name, u.email,
	i.id, i.client_name, i.client_email, i.status`

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var actor ActorSummary
	var intake IntakeSummary
	err := row.Scan(
		&e.ID, &e.Action, &e.Details, &e.CreatedAt, &e.UserID, &e.IntakeID,
		&actor.ID, &actor.Name, &actor.Email,
		&intake.ID, &intake.ClientName, &intake.ClientEmail, &intake.Status,
	)
	if err != nil {
		return nil, err
	}
	e.User = &actor
	e.Intake = &intake
	return &e, nil
}

func (r *RepoPG) Query(ctx context.Context, spec QuerySpec) ([]*Entry, error) {
	where := []string{}
	args := []interface{}{}
	idx := 1

	if spec.Action != "" {
		where = append(where, fmt.Sprintf("a.action = $%d", idx))
		args = append(args, spec.Action)
		idx++
	}
	if spec.ActorID != nil {
		where = append(where, fmt.Sprintf("a.user_id = $%d", idx))
		args = append(args, *spec.ActorID)
		idx++
	}
	if spec.From != nil {
		where = append(where, fmt.Sprintf("a.created_at >= $%d", idx))
		args = append(args, *spec.From)
		idx++
	}
	if spec.To != nil {
		where = append(where, fmt.Sprintf("a.created_at <= $%d", idx))
		args = append(args, *spec.To)
		idx++
	}
	if spec.Search != "" {
		where = append(where, fmt.Sprintf(
			"(u.name ILIKE $%d OR u.email ILIKE $%d OR i.client_name ILIKE $%d OR i.id::text ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, "%"+spec.Search+"%")
		idx++
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	q := fmt.Sprintf(`SELECT %s
		FROM audit_logs a
		JOIN users u ON u.id = a.user_id
		JOIN intakes i ON i.id = a.intake_id
		%s
		ORDER BY a.created_at DESC`, entryCols, whereClause)

	return r.queryEntries(ctx, q, args...)
}

func (r *RepoPG) ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*Entry, error) {
	q := fmt.Sprintf(`SELECT %s
		FROM audit_logs a
		JOIN users u ON u.id = a.user_id
		JOIN intakes i ON i.id = a.intake_id
		WHERE a.intake_id = $1
		ORDER BY a.created_at ASC`, entryCols)
	return r.queryEntries(ctx, q, intakeID)
}

func (r *RepoPG) queryEntries(ctx context.Context, q string, args ...interface{}) ([]*Entry, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *RepoPG) IntakeOwner(ctx context.Context, intakeID uuid.UUID) (uuid.UUID, error) {
	var ownerID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT submitted_by_id FROM intakes WHERE id = $1`, intakeID,
	).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, apperr.New(apperr.NotFound, "Intake not found")
		}
		return uuid.Nil, fmt.Errorf("look up intake owner: %w", err)
	}
	return ownerID, nil
}

func (r *RepoPG) DistinctActions(ctx context.Context) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT DISTINCT action FROM audit_logs ORDER BY action`)
	if err != nil {
		return nil, fmt.Errorf("query distinct actions: %w", err)
	}
	defer rows.Close()

	var actions []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}
