// Package fixes implements the correction workflow: manual single-field
// fixes from the review dashboard and document-driven autofill for records
// flagged with critical gaps. Every applied change lands in the audit log.
package fixes

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
	"github.com/fm-dev-mx/real-estate-insights/internal/schema"
	"github.com/fm-dev-mx/real-estate-insights/internal/validator"
)

// ErrAuditFailed marks the one outcome that needs operator attention: the
// field update committed but the audit entry did not.
var ErrAuditFailed = errors.New("field updated but audit entry failed")

// Store is the slice of the record store the workflow writes through.
type Store interface {
	GetProperty(propertyID string) (*models.Property, error)
	UpdatePropertyField(propertyID, fieldName string, value interface{}) error
	AppendAuditEntry(propertyID, fieldName, oldValue, newValue, changedBy, changeSource string) error
}

type Workflow struct {
	store     Store
	extractor Extractor
	docDir    string
	logger    *logrus.Logger
}

func NewWorkflow(store Store, extractor Extractor, docDir string, logger *logrus.Logger) *Workflow {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	if extractor == nil {
		extractor = StubExtractor{}
	}
	return &Workflow{
		store:     store,
		extractor: extractor,
		docDir:    docDir,
		logger:    logger,
	}
}

// ApplyFix writes one field of one property and appends an audit entry.
// An empty or unchanged value is skipped, not an error. The update and the
// audit append are separate writes; if the audit append fails after the
// update landed, the result carries ErrAuditFailed.
func (w *Workflow) ApplyFix(req models.FixRequest) models.FixResult {
	result := models.FixResult{PropertyID: req.PropertyID, FieldName: req.FieldName}
	log := w.logger.WithFields(logrus.Fields{
		"property_id": req.PropertyID,
		"field":       req.FieldName,
	})

	newValue := strings.TrimSpace(req.NewValue)
	if newValue == "" {
		result.Skipped = true
		result.Reason = "empty value"
		return result
	}
	if newValue == strings.TrimSpace(req.OldValue) {
		result.Skipped = true
		result.Reason = "value unchanged"
		return result
	}

	value, err := coerceValue(req.FieldName, newValue)
	if err != nil {
		result.Error = err.Error()
		log.WithError(err).Warn("Rejected fix value")
		return result
	}

	if err := w.store.UpdatePropertyField(req.PropertyID, req.FieldName, value); err != nil {
		result.Error = err.Error()
		log.WithError(err).Error("Failed to update property field")
		return result
	}
	result.Applied = true

	source := req.Source
	if source == "" {
		source = models.ChangeSourceManual
	}
	if err := w.store.AppendAuditEntry(req.PropertyID, req.FieldName, req.OldValue, newValue, req.ChangedBy, source); err != nil {
		wrapped := fmt.Errorf("%w: %v", ErrAuditFailed, err)
		result.Error = wrapped.Error()
		log.WithError(err).Error("Field updated but audit entry failed")
		return result
	}

	log.WithField("source", source).Info("Applied fix")
	return result
}

// ApplyAll applies a batch of fixes independently. One field's failure never
// blocks the rest.
func (w *Workflow) ApplyAll(requests []models.FixRequest) []models.FixResult {
	results := make([]models.FixResult, 0, len(requests))
	for _, req := range requests {
		results = append(results, w.ApplyFix(req))
	}
	return results
}

// Autofill fills a property's missing critical fields from its supporting
// document. A property with no document on disk is a routine outcome: the
// workflow logs it and returns no results, leaving the record untouched.
func (w *Workflow) Autofill(propertyID string) ([]models.FixResult, error) {
	record, err := w.store.GetProperty(propertyID)
	if err != nil {
		return nil, err
	}

	missing := validator.MissingFields(record)
	if len(missing) == 0 {
		return nil, nil
	}

	pdfPath := filepath.Join(w.docDir, propertyID+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		w.logger.WithFields(logrus.Fields{
			"property_id": propertyID,
			"path":        pdfPath,
		}).Warn("No supporting document for property, skipping autofill")
		return nil, nil
	}

	values, err := w.extractor.Extract(pdfPath, missing)
	if err != nil {
		return nil, fmt.Errorf("failed to extract values from %s: %w", pdfPath, err)
	}

	requests := make([]models.FixRequest, 0, len(values))
	for _, field := range missing {
		value, ok := values[field]
		if !ok {
			continue
		}
		requests = append(requests, models.FixRequest{
			PropertyID: propertyID,
			FieldName:  field,
			NewValue:   value,
			ChangedBy:  "autofill",
			Source:     models.ChangeSourceAutofill,
		})
	}
	return w.ApplyAll(requests), nil
}

// coerceValue converts the dashboard's string value into the column's storage
// type. bathrooms stay fractional, counts become integers, flags use the
// export's boolean vocabulary, text passes through as given.
func coerceValue(fieldName, raw string) (interface{}, error) {
	if schema.IsBoolColumn(fieldName) {
		switch strings.ToLower(raw) {
		case "si", "sí", "yes", "true", "1":
			return true, nil
		case "no", "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("field %s expects a boolean, got %q", fieldName, raw)
	}
	if !schema.IsNumericColumn(fieldName) {
		return raw, nil
	}
	if schema.IsIntColumn(fieldName) {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("field %s expects an integer, got %q", fieldName, raw)
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("field %s expects a number, got %q", fieldName, raw)
	}
	return f, nil
}
