package document

import (
	"time"

	"github.com/google/uuid"
)

// Document maps to the documents table. FilePath is relative to the upload
// root and is never exposed for traversal: retrieval goes through the file
// store keyed by the stored path.
type Document struct {
	ID          uuid.UUID `db:"id" json:"id"`
	FileName    string    `db:"file_name" json:"fileName"`
	FileType    string    `db:"file_type" json:"fileType"`
	FileSize    int64     `db:"file_size" json:"fileSize"`
	FilePath    string    `db:"file_path" json:"filePath"`
	Description *string   `db:"description" json:"description,omitempty"`
	IntakeID    uuid.UUID `db:"intake_id" json:"intakeId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// UploadInput carries the multipart fields plus the file bytes already read
// from the request.
type UploadInput struct {
	IntakeID    string
	Description string
	FileName    string
	FileType    string
	Data        []byte
}
