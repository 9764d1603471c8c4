package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
	"github.com/fm-dev-mx/real-estate-insights/internal/schema"
)

// upsertColumns are the columns refreshed when an incoming record collides on
// id. Identity and the original listing/creation dates are never overwritten.
var upsertColumns = func() []string {
	var cols []string
	for _, c := range schema.Columns {
		if c == "id" || c == "fecha_alta" {
			continue
		}
		cols = append(cols, c)
	}
	return append(cols, "updated_at", "has_critical_gaps")
}()

// UpsertProperties bulk-inserts a batch inside the caller's transaction. On
// primary-key conflict every mutable column is updated and updated_at is
// bumped; id, fecha_alta and created_at keep their original values. The
// whole batch commits or rolls back together with tx.
func UpsertProperties(tx *gorm.DB, properties []*models.Property) error {
	if len(properties) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, p := range properties {
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(properties).Error
	if err != nil {
		return fmt.Errorf("failed to upsert %d properties: %w", len(properties), err)
	}
	return nil
}
