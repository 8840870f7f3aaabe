package intake

import (
	"time"

	"github.com/google/uuid"

	"github.com/intake/intake/internal/domain/audit"
	"github.com/intake/intake/internal/domain/document"
	"github.com/intake/intake/internal/platform/redact"
)

// Status values. No transition table: a reviewer may set any value at any
// time, and setting the current value is a no-op.
const (
	StatusPending  = "PENDING"
	StatusInReview = "IN_REVIEW"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Statuses lists the valid values in display order.
var Statuses = []string{StatusPending, StatusInReview, StatusApproved, StatusRejected}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

var statusLabels = map[string]string{
	StatusPending:  "Pending",
	StatusInReview: "In Review",
	StatusApproved: "Approved",
	StatusRejected: "Rejected",
}

// StatusLabel returns the human label for a status; unknown values fall
// back to the raw value.
func StatusLabel(s string) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return s
}

// UserSummary is the participant projection embedded in intake responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Intake maps to the intakes table. Phone, SSN, and date of birth are the
// masked field set; Redacted returns the projection with them masked.
type Intake struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	ClientName    string     `db:"client_name" json:"clientName"`
	ClientEmail   string     `db:"client_email" json:"clientEmail"`
	ClientPhone   string     `db:"client_phone" json:"clientPhone"`
	DateOfBirth   string     `db:"date_of_birth" json:"dateOfBirth"`
	SSN           string     `db:"ssn" json:"ssn"`
	Description   string     `db:"description" json:"description"`
	Notes         *string    `db:"notes" json:"notes"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
	SubmittedByID uuid.UUID  `db:"submitted_by_id" json:"submittedById"`
	ReviewerID    *uuid.UUID `db:"reviewer_id" json:"reviewerId,omitempty"`

	SubmittedBy   *UserSummary `json:"submittedBy,omitempty"`
	Reviewer      *UserSummary `json:"reviewer,omitempty"`
	DocumentCount int          `json:"documentCount"`
}

// Redacted returns a copy with the sensitive field set masked. Name and
// email are never masked.
func (i *Intake) Redacted() *Intake {
	cp := *i
	cp.ClientPhone = redact.Mask(i.ClientPhone, redact.Phone)
	cp.SSN = redact.Mask(i.SSN, redact.SSN)
	cp.DateOfBirth = redact.Mask(i.DateOfBirth, redact.DOB)
	return &cp
}

// Detail is the single-intake projection with its documents (newest first)
// and audit trail (oldest first) embedded.
type Detail struct {
	*Intake
	Documents []*document.Document `json:"documents"`
	AuditLogs []*audit.Entry       `json:"auditLogs"`
}

type CreateInput struct {
	ClientName  string `json:"clientName"`
	ClientEmail string `json:"clientEmail"`
	ClientPhone string `json:"clientPhone"`
	DateOfBirth string `json:"dateOfBirth"`
	SSN         string `json:"ssn"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// UpdateInput distinguishes absent fields from explicit values: a nil
// Status leaves status alone, a nil Notes leaves notes alone.
type UpdateInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

type BulkInput struct {
	IntakeIDs []string `json:"intakeIds"`
	Status    string   `json:"status"`
}

// BulkResult reports the partition of a bulk update.
type BulkResult struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
	Skipped int    `json:"skipped"`
}
