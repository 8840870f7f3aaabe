package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/session"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity is the verified caller passed explicitly into every core
// operation. It is resolved once per request and carried on the request
// context; services take it as a parameter rather than reading ambient
// request state.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Role   string
}

// UserLoader resolves a user id to a full identity. Implemented by the
// identity service; an interface here avoids a dependency cycle.
type UserLoader interface {
	LoadIdentity(ctx context.Context, userID uuid.UUID) (*Identity, error)
}

// WithIdentity returns ctx carrying the identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the request's verified identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey).(*Identity)
	return id
}

// ResolveIdentity is the single place that turns request cookies into a
// verified identity. It tries the signed session cookie first and falls
// back to the legacy userId cookie; deleting the legacy path later touches
// only this function. A nil return means "no session"; callers never learn
// why resolution failed.
func ResolveIdentity(c echo.Context, sessions *session.Manager, users UserLoader) *Identity {
	ctx := c.Request().Context()

	if token := session.TokenFromRequest(c); token != "" {
		if sess, err := sessions.Verify(token); err == nil {
			if uid, err := uuid.Parse(sess.UserID); err == nil {
				if id, err := users.LoadIdentity(ctx, uid); err == nil {
					return id
				}
			}
		}
	}

	// Legacy cookie carries only a user id with no signature. It is trusted
	// for the migration window because issuing it required a successful
	// login at the time.
	if legacy := session.LegacyUserIDFromRequest(c); legacy != "" {
		if uid, err := uuid.Parse(legacy); err == nil {
			if id, err := users.LoadIdentity(ctx, uid); err == nil {
				return id
			}
		}
	}

	return nil
}

// RequireSession resolves the caller's identity into the request context or
// fails with 401. This is the API-side enforcement point; it never
// redirects.
func RequireSession(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ResolveIdentity(c, sessions, users)
			if id == nil {
				return apperr.New(apperr.Unauthenticated, "Unauthorized")
			}
			c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
			return next(c)
		}
	}
}

// RequireRole layers a role check on top of RequireSession.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if id == nil {
				return apperr.New(apperr.Unauthenticated, "Unauthorized")
			}
			if id.Role != role {
				return apperr.New(apperr.Forbidden, "required role: "+role)
			}
			return next(c)
		}
	}
}

// PageGate is the coarse pre-routing enforcement point for browser page
// navigation. It redirects rather than returning structured errors:
// unauthenticated users on protected paths go to the login page (with the
// original path preserved for post-login redirect), authenticated users on
// the entry page go to their role's home, and wrong-role visitors go home.
// Resource paths and static assets pass through untouched; resource
// handlers enforce their own checks.
func PageGate(sessions *session.Manager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if !IsProtectedPath(path) && !IsPublicPath(path) {
				return next(c)
			}
			if strings.Contains(path, ".") {
				return next(c)
			}

			id := ResolveIdentity(c, sessions, users)

			if IsProtectedPath(path) {
				if id == nil {
					login := "/?redirect=" + url.QueryEscape(path)
					return c.Redirect(http.StatusFound, login)
				}
				if !RoleAllowsPath(id.Role, path) {
					return c.Redirect(http.StatusFound, HomePath(id.Role))
				}
				return next(c)
			}

			// Authenticated users do not see the entry page again.
			if id != nil && path == "/" {
				return c.Redirect(http.StatusFound, HomePath(id.Role))
			}
			return next(c)
		}
	}
}
