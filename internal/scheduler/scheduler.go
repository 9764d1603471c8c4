// Package scheduler drives periodic ingestion runs: one pass on startup,
// then one per configured interval. Runs never overlap.
package scheduler

import (
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fm-dev-mx/real-estate-insights/internal/ingest"
)

// Scheduler manages periodic execution of ingestion runs
type Scheduler struct {
	pipeline     *ingest.Pipeline
	logger       *logrus.Logger
	interval     time.Duration
	stopChan     chan struct{}
	wg           sync.WaitGroup
	jobMutex     sync.Mutex // Ensures sequential run execution
	isStartupRun bool       // Tracks whether we're in startup run
}

// NewScheduler creates a new scheduler
func NewScheduler(pipeline *ingest.Pipeline, intervalMinutes int, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}
	if intervalMinutes <= 0 {
		intervalMinutes = 360
	}

	return &Scheduler{
		pipeline:     pipeline,
		logger:       logger,
		interval:     time.Duration(intervalMinutes) * time.Minute,
		stopChan:     make(chan struct{}),
		isStartupRun: true, // Initialize as true for startup
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// runScheduler handles all scheduled tasks
func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	// Run the startup pass in a separate goroutine
	go func() {
		s.jobMutex.Lock()
		defer s.jobMutex.Unlock()
		s.logger.Info("Running startup ingestion pass")
		s.runOnce()
		s.isStartupRun = false // Mark startup as complete
		s.logger.Info("Startup ingestion pass completed")
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if s.isStartupRun {
				s.logger.Debug("Skipping scheduled run while startup is in progress")
				continue
			}
			s.jobMutex.Lock()
			s.logger.Info("Starting scheduled ingestion run")
			s.runOnce()
			s.logger.Info("Completed scheduled ingestion run")
			s.jobMutex.Unlock()
		}
	}
}

// runOnce executes a single ingestion pass. An empty inventory directory is
// a routine outcome for a scheduled run.
func (s *Scheduler) runOnce() {
	report, err := s.pipeline.Run()
	if err != nil {
		if errors.Is(err, ingest.ErrNoInventoryFile) {
			s.logger.Info("No inventory export available, skipping run")
			return
		}
		s.logger.WithError(err).Error("Ingestion run failed")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"run_id":        report.RunID,
		"source":        report.SourceFile,
		"records":       report.RecordCount,
		"critical_rows": report.CriticalCount,
	}).Info("Ingestion run succeeded")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}
