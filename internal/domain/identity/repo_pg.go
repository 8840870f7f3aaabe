package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

const userCols = `id, email, password_hash, name, role, organization, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Organization, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *RepoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.conn(ctx).Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, role, organization, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Organization, u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperr.New(apperr.Conflict, "An account with this email already exists")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *RepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	q := fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userCols)
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *RepoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	q := fmt.Sprintf("SELECT %s FROM users WHERE email = $1", userCols)
	u, err := scanUser(r.conn(ctx).QueryRow(ctx, q, strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.Unavailable,
			"Unable to connect to database. Please try again later.", err)
	}
	return u, nil
}

func (r *RepoPG) List(ctx context.Context) ([]*User, error) {
	q := fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC", userCols)
	return r.queryUsers(ctx, q)
}

func (r *RepoPG) ListByRole(ctx context.Context, role string) ([]*User, error) {
	q := fmt.Sprintf("SELECT %s FROM users WHERE role = $1 ORDER BY name", userCols)
	return r.queryUsers(ctx, q, role)
}

func (r *RepoPG) queryUsers(ctx context.Context, q string, args ...interface{}) ([]*User, error) {
	rows, err := r.conn(ctx).Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
