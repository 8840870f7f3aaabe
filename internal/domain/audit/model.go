package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Audit actions. DocumentDeleted is reserved: the enumeration carries it
// for forward compatibility but no endpoint emits it yet.
const (
	ActionCreated            = "CREATED"
	ActionViewed             = "VIEWED"
	ActionStatusChanged      = "STATUS_CHANGED"
	ActionDocumentUploaded   = "DOCUMENT_UPLOADED"
	ActionDocumentDeleted    = "DOCUMENT_DELETED"
	ActionAssigned           = "ASSIGNED"
	ActionViewModePrivileged = "VIEW_MODE_PRIVILEGED"
	ActionViewModeRedacted   = "VIEW_MODE_REDACTED"
)

// ActionInfo is pure display metadata for an action: a human label and a
// color category. It never drives behavior.
type ActionInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var actionInfo = map[string]ActionInfo{
	ActionCreated:            {Label: "Application Submitted", Color: "bg-emerald-500"},
	ActionViewed:             {Label: "Viewed", Color: "bg-blue-500"},
	ActionStatusChanged:      {Label: "Status Changed", Color: "bg-amber-500"},
	ActionDocumentUploaded:   {Label: "Document Uploaded", Color: "bg-blue-500"},
	ActionDocumentDeleted:    {Label: "Document Deleted", Color: "bg-red-500"},
	ActionAssigned:           {Label: "Assigned", Color: "bg-blue-500"},
	ActionViewModePrivileged: {Label: "Viewed Full PII", Color: "bg-purple-500"},
	ActionViewModeRedacted:   {Label: "Switched to Redacted", Color: "bg-gray-500"},
}

// InfoFor returns the display metadata for an action; unknown actions fall
// back to the raw action name.
func InfoFor(action string) ActionInfo {
	if info, ok := actionInfo[action]; ok {
		return info
	}
	return ActionInfo{Label: action, Color: "bg-gray-500"}
}

// LabelFor returns the human label for an action.
func LabelFor(action string) string {
	return InfoFor(action).Label
}

// Entry maps to the audit_logs table. Append-only: entries are never
// updated or deleted. Actor and Intake are joined summaries for display.
type Entry struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	Action    string         `db:"action" json:"action"`
	Details   *string        `db:"details" json:"details,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UserID    uuid.UUID      `db:"user_id" json:"userId"`
	IntakeID  uuid.UUID      `db:"intake_id" json:"intakeId"`
	User      *ActorSummary  `json:"user,omitempty"`
	Intake    *IntakeSummary `json:"intake,omitempty"`
}

// ActorSummary identifies who performed the action.
type ActorSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// IntakeSummary identifies the intake the action touched.
type IntakeSummary struct {
	ID          uuid.UUID `json:"id"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail"`
	Status      string    `json:"status"`
}

// Details payloads form a tagged union keyed by action. They are stored
// serialized and decoded only for display; the core never parses a stored
// payload to make a decision.

// CreatedDetails accompanies ActionCreated.
type CreatedDetails struct {
	IntakeID string `json:"intakeId"`
}

// ViewedDetails accompanies ActionViewed.
type ViewedDetails struct {
	ViewedBy string `json:"viewedBy"`
}

// StatusChangedDetails accompanies ActionStatusChanged.
type StatusChangedDetails struct {
	PreviousStatus string `json:"previousStatus,omitempty"`
	NewStatus      string `json:"newStatus,omitempty"`
	BulkAction     bool   `json:"bulkAction,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// DocumentUploadedDetails accompanies ActionDocumentUploaded.
type DocumentUploadedDetails struct {
	DocumentID string `json:"documentId"`
	FileName   string `json:"fileName"`
	FileType   string `json:"fileType"`
}

// EncodeDetails serializes a details payload for storage. A nil payload
// stores NULL.
func EncodeDetails(v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

// DecodeDetails is the typed accessor for a stored payload. The target
// should match the entry's action variant.
func (e *Entry) DecodeDetails(target interface{}) error {
	if e.Details == nil {
		return nil
	}
	return json.Unmarshal([]byte(*e.Details), target)
}
