// Package session implements the signed session credential: a compact
// HS256-signed token carrying the user's id, email and role with a hard
// 7-day expiry, plus the cookie plumbing that moves it between client and
// server. Tokens are self-contained; nothing is stored server-side.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the session cookie. LegacyCookieName is the pre-token
	// cookie that carried a bare user id; it is honored read-only during the
	// migration window and cleared on logout.
	CookieName       = "session"
	LegacyCookieName = "userId"

	// MaxAge is the fixed session lifetime. No sliding renewal.
	MaxAge = 7 * 24 * time.Hour
)

// Identity is the verified payload of a session token.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	// ExpiresAtMillis duplicates exp as epoch milliseconds; it is the
	// authoritative expiry checked by Verify.
	ExpiresAtMillis int64 `json:"expiresAt"`
}

// Manager signs and verifies session tokens and manages their cookies.
type Manager struct {
	secret []byte
	secure bool // sets the Secure cookie flag; on in production
	now    func() time.Time
}

func NewManager(secret []byte, secure bool) *Manager {
	return &Manager{secret: secret, secure: secure, now: time.Now}
}

// Issue signs a token for the given identity, expiring MaxAge from now.
func (m *Manager) Issue(id Identity) (string, error) {
	now := m.now()
	expires := now.Add(MaxAge)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID:          id.UserID,
		Email:           id.Email,
		Role:            id.Role,
		ExpiresAtMillis: expires.UnixMilli(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return token, nil
}

// Verify parses and validates a token. Any failure (bad signature,
// malformed payload, past expiry) yields a nil identity and a non-nil
// error; callers must treat all failures identically as "no session".
func (m *Manager) Verify(token string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	if c.ExpiresAtMillis != 0 && c.ExpiresAtMillis < m.now().UnixMilli() {
		return nil, fmt.Errorf("session expired")
	}
	if c.UserID == "" {
		return nil, fmt.Errorf("session missing user id")
	}

	return &Identity{UserID: c.UserID, Email: c.Email, Role: c.Role}, nil
}

// SetCookie attaches the session cookie to the response.
func (m *Manager) SetCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   int(MaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

// ClearCookie overwrites the session cookie (and the legacy userId cookie)
// with immediately-expired empty values.
func (m *Manager) ClearCookie(c echo.Context) {
	for _, name := range []string{CookieName, LegacyCookieName} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			HttpOnly: true,
			Path:     "/",
			MaxAge:   0,
			Expires:  time.Unix(0, 0),
			SameSite: http.SameSiteLaxMode,
			Secure:   m.secure,
		})
	}
}

// TokenFromRequest returns the raw session token, or "" when absent.
func TokenFromRequest(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// LegacyUserIDFromRequest returns the user id carried by the legacy cookie,
// or "" when absent.
func LegacyUserIDFromRequest(c echo.Context) string {
	cookie, err := c.Cookie(LegacyCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}
