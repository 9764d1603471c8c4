package database

import (
	"fmt"

	"github.com/fm-dev-mx/real-estate-insights/internal/schema"
)

// UpdatePropertyField writes a single field and refreshes updated_at. The
// column name is checked against the schema registry before being spliced
// into the statement. A missing record is an error, not a silent no-op.
func (d *Database) UpdatePropertyField(propertyID, fieldName string, value interface{}) error {
	if !schema.IsUpdatable(fieldName) {
		return fmt.Errorf("field %q is not updatable", fieldName)
	}

	query := fmt.Sprintf(
		"UPDATE properties SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		fieldName,
	)
	result, err := d.db.Exec(query, value, propertyID)
	if err != nil {
		return fmt.Errorf("failed to update %s on property %s: %w", fieldName, propertyID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("property %s: %w", propertyID, ErrPropertyNotFound)
	}
	return nil
}

// AppendAuditEntry appends one immutable correction record. Referential
// integrity to the property is enforced by the store; a violation surfaces
// loudly to the caller.
func (d *Database) AppendAuditEntry(propertyID, fieldName, oldValue, newValue, changedBy, changeSource string) error {
	_, err := d.db.Exec(`
		INSERT INTO audit_log (property_id, field_name, old_value, new_value, changed_by, change_source)
		VALUES (?, ?, ?, ?, ?, ?)
	`, propertyID, fieldName, oldValue, newValue, changedBy, changeSource)
	if err != nil {
		return fmt.Errorf("failed to append audit entry for property %s: %w", propertyID, err)
	}
	return nil
}
