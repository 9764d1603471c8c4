// Package validator scans normalized records against the schema registry's
// priority tiers, flags records with missing critical fields and produces the
// gap report consumed by the review dashboard.
package validator

import (
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
	"github.com/fm-dev-mx/real-estate-insights/internal/schema"
)

// GapStatusMissing is the only status a gap entry carries today.
const GapStatusMissing = "missing"

type Validator struct {
	logger *logrus.Logger
}

func NewValidator(logger *logrus.Logger) *Validator {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Validator{logger: logger}
}

// Validate walks every record through the three priority tiers, sets
// HasCriticalGaps in place and returns the full gap report. Gaps in every
// tier are reported; only critical-tier gaps mark a record incomplete.
// Empty input short-circuits to an empty report.
func (v *Validator) Validate(runID string, records []*models.Property) *models.GapReport {
	report := &models.GapReport{RunID: runID, RecordCount: len(records)}
	if len(records) == 0 {
		return report
	}

	log := v.logger.WithFields(logrus.Fields{"stage": "validation", "run_id": runID})

	for _, record := range records {
		critical := false
		for _, tier := range schema.Tiers {
			for _, column := range schema.Priority[tier] {
				if !fieldMissing(record, column) {
					continue
				}
				report.Entries = append(report.Entries, models.GapEntry{
					PropertyID: record.ID,
					FieldName:  column,
					Priority:   tier,
					Status:     GapStatusMissing,
				})
				if tier == schema.PriorityCritical {
					critical = true
				}
			}
		}
		record.HasCriticalGaps = critical
		if critical {
			report.CriticalIDs = append(report.CriticalIDs, record.ID)
		}
	}

	log.WithFields(logrus.Fields{
		"records":       len(records),
		"gaps":          len(report.Entries),
		"critical_rows": len(report.CriticalIDs),
	}).Info("Validation pass completed")
	return report
}

// MissingFields returns the critical-tier columns missing on one record, in
// registry order. The correction workflow uses this as its work list.
func MissingFields(record *models.Property) []string {
	var missing []string
	for _, column := range schema.Priority[schema.PriorityCritical] {
		if fieldMissing(record, column) {
			missing = append(missing, column)
		}
	}
	return missing
}

// fieldMissing implements the gap definition: a field is missing when its
// value is null, or when it is string-typed and empty after trimming. Zero
// and false are valid values, never gaps.
func fieldMissing(record *models.Property, column string) bool {
	value, known := record.FieldValue(column)
	if !known {
		return false
	}
	if value == nil {
		return true
	}
	if schema.IsStringColumn(column) {
		s, _ := value.(string)
		return strings.TrimSpace(s) == ""
	}
	if t, ok := value.(time.Time); ok {
		return t.IsZero()
	}
	return false
}
