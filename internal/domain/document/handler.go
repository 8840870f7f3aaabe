package document

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

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

func (h *Handler) RegisterRoutes(g *echo.Group, requireSession echo.MiddlewareFunc) {
	g.POST("/documents", h.Upload, requireSession)
	g.GET("/documents/:id", h.Download, requireSession)
}

func (h *Handler) Upload(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	fh, err := c.FormFile("file")
	if err != nil {
		return apperr.New(apperr.Validation, "No file provided")
	}

	f, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	// Read one byte past the cap so the size check can reject oversized
	// uploads without buffering the whole excess.
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	doc, err := h.svc.Upload(ctx, caller, UploadInput{
		IntakeID:    c.FormValue("intakeId"),
		Description: c.FormValue("description"),
		FileName:    fh.Filename,
		FileType:    fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

// Download streams the stored bytes inline under the original filename.
func (h *Handler) Download(c echo.Context) error {
	ctx := c.Request().Context()
	caller := auth.IdentityFromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "Invalid document id")
	}

	doc, data, err := h.svc.Fetch(ctx, caller, id)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`inline; filename="`+doc.FileName+`"`)
	c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(doc.FileSize, 10))
	return c.Blob(http.StatusOK, doc.FileType, data)
}
