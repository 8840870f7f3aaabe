package identity

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
	"github.com/intake/intake/internal/platform/session"
)

const bcryptCost = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Service struct {
	repo     Repository
	sessions *session.Manager
}

func NewService(repo Repository, sessions *session.Manager) *Service {
	return &Service{repo: repo, sessions: sessions}
}

// Register creates a new account and issues a session token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*PublicUser, string, error) {
	if in.Email == "" || in.Password == "" || in.Name == "" || in.Role == "" {
		return nil, "", apperr.New(apperr.Validation,
			"Missing required fields: email, password, name, and role are required")
	}
	if !auth.ValidRole(in.Role) {
		return nil, "", apperr.New(apperr.Validation, "Invalid role. Must be PATIENT or REVIEWER")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, "", apperr.New(apperr.Validation, "Invalid email format")
	}
	if len(in.Password) < 6 {
		return nil, "", apperr.New(apperr.Validation, "Password must be at least 6 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		Email:        strings.ToLower(in.Email),
		PasswordHash: string(hash),
		Name:         in.Name,
		Role:         in.Role,
	}
	if in.Organization != "" {
		org := in.Organization
		u.Organization = &org
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.sessions.Issue(session.Identity{
		UserID: u.ID.String(),
		Email:  u.Email,
		Role:   u.Role,
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}
	return u.Public(), token, nil
}

// Login verifies credentials and issues a session token. Unknown account,
// wrong password, and storage unreachable are distinguished only by message
// text so clients can show useful guidance.
func (s *Service) Login(ctx context.Context, in LoginInput) (*PublicUser, string, error) {
	if in.Email == "" || in.Password == "" {
		return nil, "", apperr.New(apperr.Validation, "Email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, strings.ToLower(in.Email))
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, "", apperr.New(apperr.Unauthenticated,
				"No account found with this email. Please sign up first.")
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, "", apperr.New(apperr.Unauthenticated, "Incorrect password. Please try again.")
	}

	token, err := s.sessions.Issue(session.Identity{
		UserID: u.ID.String(),
		Email:  u.Email,
		Role:   u.Role,
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue session: %w", err)
	}
	return u.Public(), token, nil
}

// LoadIdentity implements auth.UserLoader: it confirms the user still
// exists and returns the identity passed into core operations.
func (s *Service) LoadIdentity(ctx context.Context, userID uuid.UUID) (*auth.Identity, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &auth.Identity{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*PublicUser, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u.Public(), nil
}

func (s *Service) List(ctx context.Context) ([]*PublicUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// ListReviewers backs the audit filter UI's reviewer dropdown.
func (s *Service) ListReviewers(ctx context.Context) ([]*PublicUser, error) {
	users, err := s.repo.ListByRole(ctx, auth.RoleReviewer)
	if err != nil {
		return nil, err
	}
	out := make([]*PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}
