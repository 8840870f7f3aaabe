package identity

import (
	"time"

	"github.com/google/uuid"
)

// User maps to the users table. PasswordHash never leaves the package:
// every outbound projection goes through Public().
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	Organization *string   `db:"organization" json:"organization,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// PublicUser is the caller-visible projection of a User.
type PublicUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Organization *string   `json:"organization,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u *User) Public() *PublicUser {
	return &PublicUser{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Organization: u.Organization,
		CreatedAt:    u.CreatedAt,
	}
}

// RegisterInput is the payload for POST /auth/register.
type RegisterInput struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
}

// LoginInput is the payload for POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
