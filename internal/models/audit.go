package models

import "time"

// Change sources recorded on audit entries.
const (
	ChangeSourceAutofill = "autofill"
	ChangeSourceManual   = "manual"
	ChangeSourceSystem   = "system"
)

// AuditEntry is an immutable record of one field correction. Entries are
// append-only; they are never updated or deleted.
type AuditEntry struct {
	ID              int64     `json:"id"`
	PropertyID      string    `json:"property_id"`
	FieldName       string    `json:"field_name"`
	OldValue        string    `json:"old_value"`
	NewValue        string    `json:"new_value"`
	ChangedBy       string    `json:"changed_by"`
	ChangeSource    string    `json:"change_source"`
	ChangeTimestamp time.Time `json:"change_timestamp"`
}
