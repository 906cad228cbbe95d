// Package scheduler runs the catalog's background jobs: periodic audits that
// refresh the Prometheus gauges and the data quality report, session
// expiry, and daily log cleanup.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/giygas/medication-catalog/entities"
	"github.com/giygas/medication-catalog/interfaces"
	"github.com/giygas/medication-catalog/logging"
	"github.com/giygas/medication-catalog/metrics"
	"github.com/giygas/medication-catalog/validation"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// CatalogSource is the read side of the store used by the audit job.
type CatalogSource interface {
	metrics.InfoSource
	ListMedications(ctx context.Context) ([]entities.Medication, error)
}

// SessionSweeper expires idle sessions.
type SessionSweeper interface {
	Sweep() int
	Len() int
}

// Options tunes the job intervals. Zero values fall back to defaults.
type Options struct {
	RefreshInterval time.Duration
	SweepInterval   time.Duration
	LogCleanupAt    string // HH:MM, local time
}

// Scheduler handles periodic catalog jobs using dependency injection
type Scheduler struct {
	store       CatalogSource
	sessions    SessionSweeper
	validator   interfaces.DataValidator
	opts        Options
	cleanupLogs func() (int, error)
	scheduler   *gocron.Scheduler

	mu     sync.RWMutex
	report *interfaces.DataQualityReport
}

// NewScheduler creates a new scheduler instance with injected dependencies.
// sessions may be nil.
func NewScheduler(store CatalogSource, sessions SessionSweeper, opts Options) *Scheduler {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}
	if opts.LogCleanupAt == "" {
		opts.LogCleanupAt = "03:00"
	}

	return &Scheduler{
		store:       store,
		sessions:    sessions,
		validator:   validation.NewDataValidator(),
		opts:        opts,
		cleanupLogs: logging.CleanupOldLogs,
		scheduler:   gocron.NewScheduler(time.Local),
	}
}

// Start runs a first audit, then schedules the recurring jobs
func (s *Scheduler) Start() error {
	if err := s.audit(context.Background()); err != nil {
		logging.Error("Failed to perform initial catalog audit", "error", err)
		return fmt.Errorf("initial catalog audit failed: %w", err)
	}

	_, err := s.scheduler.Every(s.opts.RefreshInterval).SingletonMode().WaitForSchedule().Do(func() {
		if err := s.audit(context.Background()); err != nil {
			logging.Error("Failed to audit catalog", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule catalog audit: %w", err)
	}

	if s.sessions != nil {
		_, err = s.scheduler.Every(s.opts.SweepInterval).WaitForSchedule().Do(s.sweepSessions)
		if err != nil {
			return fmt.Errorf("failed to schedule session sweep: %w", err)
		}
	}

	_, err = s.scheduler.Every(1).Days().At(s.opts.LogCleanupAt).Do(s.runLogCleanup)
	if err != nil {
		return fmt.Errorf("failed to schedule log cleanup: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// LastReport returns the data quality report of the latest audit, or nil
// before the first one.
func (s *Scheduler) LastReport() *interfaces.DataQualityReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// audit refreshes the gauges and logs catalog gaps
func (s *Scheduler) audit(ctx context.Context) error {
	start := time.Now()

	var sessions metrics.SessionCounter
	if s.sessions != nil {
		sessions = s.sessions
	}
	if err := metrics.RefreshCatalogMetrics(ctx, s.store, sessions); err != nil {
		return err
	}

	meds, err := s.store.ListMedications(ctx)
	if err != nil {
		return fmt.Errorf("failed to list medications: %w", err)
	}

	report := s.validator.ReportDataQuality(meds)

	if len(report.DuplicateGenericNames) > 0 {
		logging.Warn("Duplicate generic names detected",
			"total", len(report.DuplicateGenericNames),
			"names", report.DuplicateGenericNames,
		)
	}

	if report.MedicationsWithoutCategory > 0 {
		logging.Warn("Medications without category",
			"count", report.MedicationsWithoutCategory,
			"ids", report.WithoutCategoryIDs,
		)
	}

	if report.MedicationsWithoutAvailability > 0 {
		logging.Info("Medications without availability",
			"count", report.MedicationsWithoutAvailability,
			"ids", report.WithoutAvailabilityIDs,
		)
	}

	if report.MedicationsWithoutDosing > 0 {
		logging.Info("Medications without dosing information",
			"count", report.MedicationsWithoutDosing,
			"ids", report.WithoutDosingIDs,
		)
	}

	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	logging.Debug("Catalog audit completed", "duration", time.Since(start).String(), "medication_count", len(meds))
	return nil
}

func (s *Scheduler) sweepSessions() {
	if n := s.sessions.Sweep(); n > 0 {
		logging.Debug("Expired idle sessions", "count", n)
	}
	metrics.SessionsActive.Set(float64(s.sessions.Len()))
}

func (s *Scheduler) runLogCleanup() {
	n, err := s.cleanupLogs()
	if err != nil {
		logging.Error("Failed to clean up old logs", "error", err)
		return
	}
	if n > 0 {
		logging.Info("Removed old log files", "count", n)
	}
}
