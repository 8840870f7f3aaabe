package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestKindOf(t *testing.T) {
	if KindOf(New(NotFound, "gone")) != NotFound {
		t.Error("direct kind")
	}
	wrapped := fmt.Errorf("outer: %w", New(Forbidden, "no"))
	if KindOf(wrapped) != Forbidden {
		t.Error("wrapped kind")
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Error("unknown errors default to Internal")
	}
	if KindOf(nil) != Internal {
		t.Error("nil defaults to Internal")
	}
}

func TestErrorMessage(t *testing.T) {
	if got := New(Validation, "bad input").Error(); got != "bad input" {
		t.Errorf("Error() = %q", got)
	}
	cause := errors.New("dial tcp: refused")
	if got := Wrap(Unavailable, "try later", cause).Error(); got != "try later: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(Wrap(Internal, "x", cause), cause) {
		t.Error("Unwrap broken")
	}
}

func do(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.Nop())
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/intakes", nil), rec)
	e.HTTPErrorHandler(err, c)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal body %q: %v", rec.Body.String(), err)
	}
	return rec, body
}

func TestHTTPErrorHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Unauthenticated, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Validation, http.StatusBadRequest},
		{Conflict, http.StatusConflict},
		{Unavailable, http.StatusServiceUnavailable},
		{Internal, http.StatusInternalServerError},
	}
	for _, c := range cases {
		rec, _ := do(t, New(c.kind, "msg"))
		if rec.Code != c.want {
			t.Errorf("kind %v: status = %d, want %d", c.kind, rec.Code, c.want)
		}
	}
}

func TestHTTPErrorHandlerMessages(t *testing.T) {
	_, body := do(t, New(Forbidden, "Only reviewers can update intakes"))
	if body["error"] != "Only reviewers can update intakes" {
		t.Errorf("error = %q", body["error"])
	}

	// Internal details never reach the client.
	_, body = do(t, Wrap(Internal, "pgx: connection reset", errors.New("boom")))
	if body["error"] != "Internal server error" {
		t.Errorf("error = %q", body["error"])
	}

	_, body = do(t, errors.New("some stray error"))
	if body["error"] != "Internal server error" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestHTTPErrorHandlerEchoErrors(t *testing.T) {
	rec, body := do(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
	if body["error"] != "Method Not Allowed" {
		t.Errorf("error = %q", body["error"])
	}
}
