package document

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

const docCols = "id, file_name, file_type, file_size, file_path, description, intake_id, created_at"

func scanDoc(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.FileName, &d.FileType, &d.FileSize, &d.FilePath,
		&d.Description, &d.IntakeID, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *RepoPG) Create(ctx context.Context, d *Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := r.conn(ctx).QueryRow(ctx,
		`INSERT INTO documents (id, file_name, file_type, file_size, file_path, description, intake_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		d.ID, d.FileName, d.FileType, d.FileSize, d.FilePath, d.Description, d.IntakeID,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := scanDoc(r.conn(ctx).QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM documents WHERE id = $1", docCols), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "Document not found")
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (r *RepoPG) ListByIntake(ctx context.Context, intakeID uuid.UUID) ([]*Document, error) {
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf("SELECT %s FROM documents WHERE intake_id = $1 ORDER BY created_at DESC", docCols),
		intakeID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*Document
	for rows.Next() {
		d, err := scanDoc(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
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
