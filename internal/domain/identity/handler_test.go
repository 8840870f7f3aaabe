package identity

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/session"
)

func newTestServer() (*echo.Echo, *mockRepo) {
	repo := newMockRepo()
	sessions := session.NewManager([]byte("test-secret-at-least-16-chars"), false)
	svc := NewService(repo, sessions)

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(zerolog.Nop())
	NewHandler(svc, sessions).RegisterRoutes(e.Group(""), func(next echo.HandlerFunc) echo.HandlerFunc {
		return next
	})
	return e, repo
}

func postJSON(e *echo.Echo, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	e, _ := newTestServer()

	rec := postJSON(e, "/auth/register",
		`{"email":"pat@example.com","password":"hunter22","name":"Pat","role":"PATIENT"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Message string `json:"message"`
		User    struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.User.Email != "pat@example.com" || body.User.Role != "PATIENT" {
		t.Errorf("user = %+v", body.User)
	}
	if strings.Contains(rec.Body.String(), "hunter22") || strings.Contains(rec.Body.String(), "password") {
		t.Error("response leaks password material")
	}

	var sessionCookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == session.CookieName {
			sessionCookie = ck
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatal("registration must set the session cookie")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
}

func TestRegisterEndpointValidation(t *testing.T) {
	e, _ := newTestServer()

	rec := postJSON(e, "/auth/register",
		`{"email":"pat@example.com","password":"short","name":"Pat","role":"PATIENT"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Password must be at least 6 characters long" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestLoginEndpoint(t *testing.T) {
	e, _ := newTestServer()
	postJSON(e, "/auth/register",
		`{"email":"pat@example.com","password":"hunter22","name":"Pat","role":"PATIENT"}`)

	rec := postJSON(e, "/auth/login", `{"email":"pat@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = postJSON(e, "/auth/login", `{"email":"pat@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Incorrect password. Please try again." {
		t.Errorf("error = %q", body["error"])
	}
}

func TestLogoutEndpointClearsCookies(t *testing.T) {
	e, _ := newTestServer()

	rec := postJSON(e, "/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	cleared := map[string]bool{}
	for _, ck := range rec.Result().Cookies() {
		if ck.Value == "" {
			cleared[ck.Name] = true
		}
	}
	if !cleared[session.CookieName] || !cleared[session.LegacyCookieName] {
		t.Errorf("cleared = %v, want both cookies", cleared)
	}
}
