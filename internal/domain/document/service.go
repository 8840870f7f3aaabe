package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/domain/audit"
	"github.com/intake/intake/internal/platform/apperr"
	"github.com/intake/intake/internal/platform/auth"
	"github.com/intake/intake/internal/platform/blobstore"
	"github.com/intake/intake/internal/platform/db"
)

// MaxFileSize caps uploads at 10 MiB.
const MaxFileSize = 10 * 1024 * 1024

var allowedTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

type Service struct {
	repo   Repository
	store  blobstore.Store
	audits *audit.Service
	tx     db.TxRunner
}

func NewService(repo Repository, store blobstore.Store, audits *audit.Service, tx db.TxRunner) *Service {
	return &Service{repo: repo, store: store, audits: audits, tx: tx}
}

// Upload validates, persists the bytes, and records the document row and
// its audit entry together.
func (s *Service) Upload(ctx context.Context, caller *auth.Identity, in UploadInput) (*Document, error) {
	if len(in.Data) == 0 {
		return nil, apperr.New(apperr.Validation, "No file provided")
	}
	if in.IntakeID == "" {
		return nil, apperr.New(apperr.Validation, "Intake ID required")
	}
	intakeID, err := uuid.Parse(in.IntakeID)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "Invalid intake id")
	}

	ownerID, err := s.repo.IntakeOwner(ctx, intakeID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireOwnerOrReviewer(caller, ownerID); err != nil {
		return nil, err
	}

	if !allowedTypes[in.FileType] {
		return nil, apperr.New(apperr.Validation, "Invalid file type. Allowed: PDF, images, Word documents")
	}
	if int64(len(in.Data)) > MaxFileSize {
		return nil, apperr.New(apperr.Validation, "File too large. Maximum size is 10MB")
	}

	path, err := s.store.Save(ctx, intakeID.String(), in.FileName, in.Data)
	if err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	doc := &Document{
		FileName: in.FileName,
		FileType: in.FileType,
		FileSize: int64(len(in.Data)),
		FilePath: path,
		IntakeID: intakeID,
	}
	if in.Description != "" {
		desc := in.Description
		doc.Description = &desc
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}
		return s.audits.Record(ctx, caller.UserID, intakeID, audit.ActionDocumentUploaded,
			audit.DocumentUploadedDetails{
				DocumentID: doc.ID.String(),
				FileName:   doc.FileName,
				FileType:   doc.FileType,
			})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Fetch returns a document's metadata and bytes, ownership-checked like the
// intake it belongs to.
func (s *Service) Fetch(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*Document, []byte, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ownerID, err := s.repo.IntakeOwner(ctx, doc.IntakeID)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.RequireOwnerOrReviewer(caller, ownerID); err != nil {
		return nil, nil, err
	}

	data, err := s.store.Load(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, nil, apperr.New(apperr.NotFound, "File not found on server")
		}
		return nil, nil, err
	}
	return doc, data, nil
}
