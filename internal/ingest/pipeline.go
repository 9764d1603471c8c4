// Package ingest runs the end-to-end inventory pass: discover the newest
// export, normalize it, validate completeness, write the gap artifacts and
// hand batches to the persistence queue.
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/config"
	"github.com/fm-dev-mx/real-estate-insights/internal/cleaner"
	"github.com/fm-dev-mx/real-estate-insights/internal/models"
	"github.com/fm-dev-mx/real-estate-insights/internal/queue"
	"github.com/fm-dev-mx/real-estate-insights/internal/validator"
)

// ErrNoInventoryFile means the inventory directory holds no export yet.
// Callers treat it as a routine outcome, not a failure.
var ErrNoInventoryFile = errors.New("no inventory file found")

const pushRetryDelay = 200 * time.Millisecond
const maxPushRetries = 50

type Pipeline struct {
	cleaner   *cleaner.Cleaner
	validator *validator.Validator
	queue     *queue.PropertyQueue
	config    *config.Config
	logger    *logrus.Logger
}

func NewPipeline(q *queue.PropertyQueue, cfg *config.Config, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	return &Pipeline{
		cleaner:   cleaner.NewCleaner(logger),
		validator: validator.NewValidator(logger),
		queue:     q,
		config:    cfg,
		logger:    logger,
	}
}

// Run processes the newest inventory export end to end. A structural failure
// aborts before any artifact is written or any batch is enqueued.
func (p *Pipeline) Run() (*models.IngestReport, error) {
	sourceFile, err := latestExport(p.config.Paths.InventoryDir)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	log := p.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"source": filepath.Base(sourceFile),
	})
	log.Info("Starting ingestion run")

	records, err := p.cleaner.CleanFile(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to clean %s: %w", sourceFile, err)
	}

	gapReport := p.validator.Validate(runID, records)
	if err := p.validator.WriteArtifacts(p.config.Paths.ReportDir, gapReport); err != nil {
		return nil, fmt.Errorf("failed to write gap artifacts: %w", err)
	}

	enqueued, err := p.enqueue(records)
	if err != nil {
		return nil, err
	}

	report := &models.IngestReport{
		RunID:         runID,
		SourceFile:    filepath.Base(sourceFile),
		RecordCount:   len(records),
		CriticalCount: len(gapReport.CriticalIDs),
		GapCount:      len(gapReport.Entries),
		Enqueued:      enqueued,
	}
	log.WithFields(logrus.Fields{
		"records":       report.RecordCount,
		"critical_rows": report.CriticalCount,
		"batches":       enqueued,
	}).Info("Ingestion run completed")
	return report, nil
}

// enqueue hands records to the queue in config-sized batches. A full queue
// is backpressure from the processors, so pushes are retried with a delay.
func (p *Pipeline) enqueue(records []*models.Property) (int, error) {
	batchSize := p.config.BatchProcessing.MaxBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	enqueued := 0
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := p.push(records[start:end]); err != nil {
			return enqueued, fmt.Errorf("failed to enqueue batch: %w", err)
		}
		enqueued++
	}
	return enqueued, nil
}

func (p *Pipeline) push(batch []*models.Property) error {
	var err error
	for attempt := 0; attempt < maxPushRetries; attempt++ {
		err = p.queue.Push(batch)
		if !errors.Is(err, queue.ErrQueueFull) {
			return err
		}
		time.Sleep(pushRetryDelay)
	}
	return err
}

// latestExport returns the most recently modified CSV export in dir.
func latestExport(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read inventory directory %s: %w", dir, err)
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = entry.Name()
			newestTime = info.ModTime()
		}
	}
	if newest == "" {
		return "", ErrNoInventoryFile
	}
	return filepath.Join(dir, newest), nil
}
