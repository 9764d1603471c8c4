package fixes

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fm-dev-mx/real-estate-insights/internal/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetProperty(propertyID string) (*models.Property, error) {
	args := m.Called(propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockStore) UpdatePropertyField(propertyID, fieldName string, value interface{}) error {
	args := m.Called(propertyID, fieldName, value)
	return args.Error(0)
}

func (m *MockStore) AppendAuditEntry(propertyID, fieldName, oldValue, newValue, changedBy, changeSource string) error {
	args := m.Called(propertyID, fieldName, oldValue, newValue, changedBy, changeSource)
	return args.Error(0)
}

type fakeExtractor struct {
	values map[string]string
	err    error
	fields []string
}

func (f *fakeExtractor) Extract(pdfPath string, missingFields []string) (map[string]string, error) {
	f.fields = missingFields
	return f.values, f.err
}

func testWorkflow(store Store, extractor Extractor, docDir string) *Workflow {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewWorkflow(store, extractor, docDir, logger)
}

func TestApplyFixSkipsEmptyValue(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	result := w.ApplyFix(models.FixRequest{PropertyID: "EB-001", FieldName: "precio", NewValue: "   "})

	assert.True(t, result.Skipped)
	assert.Equal(t, "empty value", result.Reason)
	assert.False(t, result.Applied)
	store.AssertNotCalled(t, "UpdatePropertyField")
}

func TestApplyFixSkipsUnchangedValue(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	result := w.ApplyFix(models.FixRequest{
		PropertyID: "EB-001",
		FieldName:  "colonia",
		OldValue:   "Roma Norte",
		NewValue:   "  Roma Norte ",
	})

	assert.True(t, result.Skipped)
	assert.Equal(t, "value unchanged", result.Reason)
	store.AssertNotCalled(t, "UpdatePropertyField")
}

func TestApplyFixRejectsBadNumericValue(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	result := w.ApplyFix(models.FixRequest{PropertyID: "EB-001", FieldName: "precio", NewValue: "dos millones"})

	assert.False(t, result.Applied)
	assert.False(t, result.Skipped)
	assert.Contains(t, result.Error, "expects a number")
	store.AssertNotCalled(t, "UpdatePropertyField")
}

func TestApplyFixCoercesTypes(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	store.On("UpdatePropertyField", "EB-001", "recamaras", 3).Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "recamaras", "", "3", "ana", models.ChangeSourceManual).Return(nil).Once()

	result := w.ApplyFix(models.FixRequest{
		PropertyID: "EB-001",
		FieldName:  "recamaras",
		NewValue:   "3",
		ChangedBy:  "ana",
	})

	assert.True(t, result.Applied)
	assert.Empty(t, result.Error)
	store.AssertExpectations(t)
}

func TestApplyFixCoercesBooleanVocabulary(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	store.On("UpdatePropertyField", "EB-001", "cocina", true).Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "cocina", "", "si", "ana", models.ChangeSourceManual).Return(nil).Once()
	store.On("UpdatePropertyField", "EB-001", "en_internet", false).Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "en_internet", "si", "no", "ana", models.ChangeSourceManual).Return(nil).Once()

	results := w.ApplyAll([]models.FixRequest{
		{PropertyID: "EB-001", FieldName: "cocina", NewValue: "si", ChangedBy: "ana"},
		{PropertyID: "EB-001", FieldName: "en_internet", OldValue: "si", NewValue: "no", ChangedBy: "ana"},
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].Applied)
	assert.True(t, results[1].Applied)
	store.AssertExpectations(t)
}

func TestApplyFixRejectsBadBooleanValue(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	result := w.ApplyFix(models.FixRequest{PropertyID: "EB-001", FieldName: "cocina", NewValue: "tal vez"})

	assert.False(t, result.Applied)
	assert.False(t, result.Skipped)
	assert.Contains(t, result.Error, "expects a boolean")
	store.AssertNotCalled(t, "UpdatePropertyField")
}

func TestApplyFixAuditFailureAfterUpdate(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	store.On("UpdatePropertyField", "EB-001", "colonia", "Condesa").Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "colonia", "", "Condesa", "", models.ChangeSourceManual).
		Return(errors.New("disk full")).Once()

	result := w.ApplyFix(models.FixRequest{PropertyID: "EB-001", FieldName: "colonia", NewValue: "Condesa"})

	assert.True(t, result.Applied)
	assert.Contains(t, result.Error, ErrAuditFailed.Error())
	store.AssertExpectations(t)
}

func TestApplyAllIsIndependentPerField(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, nil, t.TempDir())

	store.On("UpdatePropertyField", "EB-001", "precio", 2500000.0).Return(errors.New("db locked")).Once()
	store.On("UpdatePropertyField", "EB-001", "colonia", "Condesa").Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "colonia", "", "Condesa", "ana", models.ChangeSourceManual).Return(nil).Once()

	results := w.ApplyAll([]models.FixRequest{
		{PropertyID: "EB-001", FieldName: "precio", NewValue: "2500000", ChangedBy: "ana"},
		{PropertyID: "EB-001", FieldName: "colonia", NewValue: "Condesa", ChangedBy: "ana"},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].Applied)
	assert.Contains(t, results[0].Error, "db locked")
	assert.True(t, results[1].Applied)
	store.AssertExpectations(t)
}

func TestAutofillWithoutDocumentIsBenign(t *testing.T) {
	store := &MockStore{}
	extractor := &fakeExtractor{values: map[string]string{"precio": "1000000"}}
	w := testWorkflow(store, extractor, t.TempDir())

	store.On("GetProperty", "EB-001").Return(&models.Property{ID: "EB-001"}, nil).Once()

	results, err := w.Autofill("EB-001")

	require.NoError(t, err)
	assert.Nil(t, results)
	assert.Nil(t, extractor.fields)
	store.AssertNotCalled(t, "UpdatePropertyField")
}

func TestAutofillCompleteRecordDoesNothing(t *testing.T) {
	store := &MockStore{}
	w := testWorkflow(store, &fakeExtractor{}, t.TempDir())

	fechaAlta := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	precio := 2500000.0
	m2c := 120.0
	m2t := 90.0
	recamaras := 3
	lat := 19.41
	lon := -99.17
	record := &models.Property{
		ID:              "EB-001",
		FechaAlta:       &fechaAlta,
		Status:          "enPromocion",
		TipoOperacion:   "venta",
		TipoContrato:    "exclusiva",
		Precio:          &precio,
		M2Construccion:  &m2c,
		M2Terreno:       &m2t,
		Recamaras:       &recamaras,
		BanosTotales:    2.5,
		Descripcion:     "Casa remodelada",
		Colonia:         "Roma Norte",
		Municipio:       "Cuauhtemoc",
		Latitud:         &lat,
		Longitud:        &lon,
	}
	store.On("GetProperty", "EB-001").Return(record, nil).Once()

	results, err := w.Autofill("EB-001")

	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestAutofillAppliesExtractedValues(t *testing.T) {
	store := &MockStore{}
	extractor := &fakeExtractor{values: map[string]string{
		"precio":  "2500000",
		"colonia": "Roma Norte",
	}}
	docDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "EB-001.pdf"), []byte("%PDF-1.4"), 0o644))

	w := testWorkflow(store, extractor, docDir)

	store.On("GetProperty", "EB-001").Return(&models.Property{ID: "EB-001"}, nil).Once()
	store.On("UpdatePropertyField", "EB-001", "precio", 2500000.0).Return(nil).Once()
	store.On("UpdatePropertyField", "EB-001", "colonia", "Roma Norte").Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "precio", "", "2500000", "autofill", models.ChangeSourceAutofill).Return(nil).Once()
	store.On("AppendAuditEntry", "EB-001", "colonia", "", "Roma Norte", "autofill", models.ChangeSourceAutofill).Return(nil).Once()

	results, err := w.Autofill("EB-001")

	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Applied)
	}
	// Only the record's missing fields were offered to the extractor.
	assert.Contains(t, extractor.fields, "precio")
	assert.Contains(t, extractor.fields, "colonia")
	store.AssertExpectations(t)
}

func TestAutofillPropagatesExtractorError(t *testing.T) {
	store := &MockStore{}
	extractor := &fakeExtractor{err: errors.New("corrupt document")}
	docDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "EB-001.pdf"), []byte("%PDF-1.4"), 0o644))

	w := testWorkflow(store, extractor, docDir)
	store.On("GetProperty", "EB-001").Return(&models.Property{ID: "EB-001"}, nil).Once()

	_, err := w.Autofill("EB-001")
	assert.ErrorContains(t, err, "corrupt document")
}
