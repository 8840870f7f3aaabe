package audit

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
)

// Reviewer is the directory entry shown in filter dropdowns.
type Reviewer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ReviewerSource supplies the reviewer directory. The identity service
// satisfies it through an adapter in main.
type ReviewerSource interface {
	Reviewers(ctx context.Context) ([]Reviewer, error)
}

type Handler struct {
	svc       *Service
	reviewers ReviewerSource
}

func NewHandler(svc *Service, reviewers ReviewerSource) *Handler {
	return &Handler{svc: svc, reviewers: reviewers}
}

func (h *Handler) RegisterRoutes(g *echo.Group, requireSession echo.MiddlewareFunc) {
	g.GET("/audit-logs", h.Query, requireSession)
	g.GET("/audit-logs/export", h.Export, requireSession)
	g.POST("/intakes/:id/audit", h.Create, requireSession)
	g.GET("/intakes/:id/audit", h.Trail, requireSession)
	g.GET("/intakes/:id/audit/export", h.ExportIntake, requireSession)
}

func filterFromQuery(c echo.Context) Filter {
	return Filter{
		Search:     c.QueryParam("search"),
		Action:     c.QueryParam("action"),
		ReviewerID: c.QueryParam("reviewer"),
		StartDate:  c.QueryParam("startDate"),
		EndDate:    c.QueryParam("endDate"),
	}
}

// Query returns the filtered global trail along with the reviewer directory
// and distinct action names, so a filter UI loads in one round trip.
func (h *Handler) Query(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	entries, err := h.svc.Query(ctx, caller, filterFromQuery(c))
	if err != nil {
		return err
	}

	reviewers, err := h.reviewers.Reviewers(ctx)
	if err != nil {
		return err
	}
	actions, err := h.svc.ActionTypes(ctx)
	if err != nil {
		return err
	}

	if entries == nil {
		entries = []*Entry{}
	}
	if reviewers == nil {
		reviewers = []Reviewer{}
	}
	if actions == nil {
		actions = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"auditLogs":   entries,
		"reviewers":   reviewers,
		"actionTypes": actions,
	})
}

// Export streams the filtered global trail as a CSV attachment.
func (h *Handler) Export(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	entries, err := h.svc.Query(ctx, caller, filterFromQuery(c))
	if err != nil {
		return err
	}

	csv := BuildGlobalCSV(entries)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+GlobalCSVFilename(time.Now())+`"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(csv))
}

func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	var in ManualInput
	if err := c.Bind(&in); err != nil {
		return apperr.New(apperr.Validation, "Invalid request body")
	}
	in.IntakeID = c.Param("id")

	entry, err := h.svc.ManualAppend(ctx, caller, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{"auditLog": entry})
}

func (h *Handler) Trail(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	intakeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "Invalid intake id")
	}

	entries, err := h.svc.Trail(ctx, caller, intakeID)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"auditLogs": entries})
}

// ExportIntake streams a single intake's trail as a CSV attachment, oldest
// entry first. Reviewer only, unlike the JSON trail which owners may read.
func (h *Handler) ExportIntake(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)
	if err := auth.RequireReviewer(caller, "export audit logs"); err != nil {
		return err
	}

	intakeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "Invalid intake id")
	}

	entries, err := h.svc.Trail(ctx, caller, intakeID)
	if err != nil {
		return err
	}

	csv := BuildIntakeCSV(entries)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="`+IntakeCSVFilename(intakeID, time.Now())+`"`)
	return c.Blob(http.StatusOK, "text/csv", []byte(csv))
}
