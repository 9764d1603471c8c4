package processor

import (
	"database/sql"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/fm-dev-mx/real-estate-insights/config"
	"github.com/fm-dev-mx/real-estate-insights/internal/models"
	"github.com/fm-dev-mx/real-estate-insights/internal/queue"
)

// MockDB mocks the Transactor interface
type MockDB struct {
	mock.Mock
}

func (m *MockDB) Transaction(fc func(*gorm.DB) error, opts ...*sql.TxOptions) error {
	args := m.Called(fc)
	return args.Error(0)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.BatchProcessing.ProcessorCount = 2
	cfg.BatchProcessing.MaxRetries = 3
	cfg.BatchProcessing.RetryDelay = 0
	return cfg
}

func TestNewBatchProcessor(t *testing.T) {
	mockDB := &MockDB{}
	mockQueue := queue.NewPropertyQueue(10, nil)
	cfg := testConfig()
	logger := logrus.New()

	processor := NewBatchProcessor(mockDB, mockQueue, cfg, logger)

	assert.NotNil(t, processor)
	assert.Equal(t, Transactor(mockDB), processor.db)
	assert.Equal(t, mockQueue, processor.queue)
	assert.Equal(t, cfg, processor.config)
	assert.Equal(t, logger, processor.logger)
}

func TestBatchProcessor_ProcessBatch(t *testing.T) {
	mockDB := &MockDB{}
	mockQueue := queue.NewPropertyQueue(10, nil)
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(), logger)

	batch := []*models.Property{
		{ID: "EB-001", Colonia: "Roma Norte"},
		{ID: "EB-002", Colonia: "Condesa"},
	}

	// Successful processing
	mockDB.On("Transaction", mock.Anything).Return(nil).Once()
	err := processor.processBatch(batch)
	assert.NoError(t, err)

	// Retries exhausted on persistent failure
	mockDB.On("Transaction", mock.Anything).Return(errors.New("db error")).Times(4)
	err = processor.processBatch(batch)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to process batch after 3 attempts")
	mockDB.AssertExpectations(t)
}

func TestBatchProcessor_EachBatchPersistedOnce(t *testing.T) {
	mockDB := &MockDB{}
	mockQueue := queue.NewPropertyQueue(10, nil)
	defer mockQueue.Close()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(), logger)

	var transactions int32
	mockDB.On("Transaction", mock.Anything).Return(nil).Run(func(mock.Arguments) {
		atomic.AddInt32(&transactions, 1)
	})

	processor.Start()
	defer processor.Stop()
	mockQueue.Start()

	require.NoError(t, mockQueue.Push([]*models.Property{{ID: "EB-001"}}))
	require.NoError(t, mockQueue.Push([]*models.Property{{ID: "EB-002"}}))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&transactions) >= 2
	}, 2*time.Second, 10*time.Millisecond)

	// Settle long enough to catch a duplicate delivery to a second worker.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(2), atomic.LoadInt32(&transactions))
}

func TestBatchProcessor_StartStop(t *testing.T) {
	mockDB := &MockDB{}
	mockQueue := queue.NewPropertyQueue(10, nil)
	logger := logrus.New()

	processor := NewBatchProcessor(mockDB, mockQueue, testConfig(), logger)

	processor.Start()
	time.Sleep(100 * time.Millisecond) // Give time for goroutines to start

	processor.Stop()
	mockQueue.Close()
	assert.True(t, mockQueue.IsClosed())
}
