package intake

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the intake endpoints. The bulk route is registered
// before the id route so "bulk" is never parsed as an intake id.
func (h *Handler) RegisterRoutes(g *echo.Group, requireSession echo.MiddlewareFunc) {
	g.GET("/intakes", h.List, requireSession)
	g.POST("/intakes", h.Create, requireSession)
	g.PATCH("/intakes/bulk", h.BulkUpdate, requireSession)
	g.GET("/intakes/:id", h.Get, requireSession)
	g.PATCH("/intakes/:id", h.Update, requireSession)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	intakes, err := h.svc.List(ctx, caller)
	if err != nil {
		return err
	}
	if intakes == nil {
		intakes = []*Intake{}
	}
	return c.JSON(http.StatusOK, intakes)
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}

	intake, err := h.svc.Create(ctx, caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, intake)
}

func (h *Handler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "Invalid intake id")
	}

	detail, err := h.svc.Get(ctx, caller, id, GetOptions{
		SkipAudit: c.QueryParam("skipAudit") == "true",
		ViewMode:  c.QueryParam("viewMode"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, detail)
}

func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "Invalid intake id")
	}

	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}

	intake, err := h.svc.Update(ctx, caller, id, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, intake)
}

func (h *Handler) BulkUpdate(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	var in BulkInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}

	result, err := h.svc.BulkUpdate(ctx, caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
