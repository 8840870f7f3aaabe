package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/session"
)

type Handler struct {
	svc      *Service
	sessions *session.Manager
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterRoutes mounts the auth endpoints (public) and the user directory.
// requireSession guards the directory; the auth endpoints establish the
// session in the first place.
func (h *Handler) RegisterRoutes(g *echo.Group, requireSession echo.MiddlewareFunc) {
	g.POST("/auth/register", h.Register)
	g.POST("/auth/login", h.Login)
	g.POST("/auth/logout", h.Logout)
	g.GET("/users", h.ListUsers, requireSession)
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}

	user, token, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	h.sessions.SetCookie(c, token)
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (h *Handler) Login(c echo.Context) error {
	var in LoginInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}

	user, token, err := h.svc.Login(c.Request().Context(), in)
	if err != nil {
		return err
	}

	h.sessions.SetCookie(c, token)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    user,
	})
}

func (h *Handler) Logout(c echo.Context) error {
	h.sessions.ClearCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// ListUsers returns all users, or a single user when ?email= is supplied.
func (h *Handler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	if email := c.QueryParam("email"); email != "" {
		user, err := h.svc.GetByEmail(ctx, email)
		if err != nil {
			if apperr.KindOf(err) == apperr.NotFound {
				return c.JSON(http.StatusNotFound, map[string]interface{}{
					"exists":  false,
					"message": "User not found",
				})
			}
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{"exists": true, "user": user})
	}

	users, err := h.svc.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}
