// Package monitor reports extraction jobs stuck in the running state.
// A job orphaned by a crash or restart stays running forever; the monitor
// surfaces that in the logs so an operator can act. It never mutates jobs.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// DefaultStaleAfter is the age at which a running job is reported
const DefaultStaleAfter = time.Hour

// Monitor periodically sweeps job history for stale running jobs
type Monitor struct {
	storage    interfaces.StorageManager
	cron       *cron.Cron
	schedule   string
	staleAfter time.Duration
	logger     arbor.ILogger
}

// New creates a stale-job monitor from configuration
func New(logger arbor.ILogger, storage interfaces.StorageManager, config *common.MonitorConfig) (*Monitor, error) {
	staleAfter := DefaultStaleAfter
	if config.StaleAfter != "" {
		d, err := time.ParseDuration(config.StaleAfter)
		if err != nil {
			return nil, fmt.Errorf("invalid stale_after duration '%s': %w", config.StaleAfter, err)
		}
		staleAfter = d
	}

	schedule := config.Schedule
	if schedule == "" {
		schedule = "*/5 * * * *"
	}

	return &Monitor{
		storage:    storage,
		cron:       cron.New(),
		schedule:   schedule,
		staleAfter: staleAfter,
		logger:     logger,
	}, nil
}

// Start schedules the sweep and begins running it
func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc(m.schedule, m.sweep); err != nil {
		return fmt.Errorf("invalid monitor schedule '%s': %w", m.schedule, err)
	}
	m.cron.Start()

	m.logger.Info().
		Str("schedule", m.schedule).
		Str("stale_after", m.staleAfter.String()).
		Msg("Stale job monitor started")
	return nil
}

// Stop halts the sweep schedule
func (m *Monitor) Stop() {
	m.cron.Stop()
}

// sweep logs every running job older than the configured age
func (m *Monitor) sweep() {
	ctx := context.Background()

	entries, err := m.storage.Jobs().ListJobs(ctx, 0)
	if err != nil {
		m.logger.Warn().Err(err).Msg("Stale job sweep failed")
		return
	}

	stale := 0
	for _, entry := range entries {
		if entry.Status != models.JobStatusRunning {
			continue
		}
		age := entry.Age()
		if age < m.staleAfter {
			continue
		}
		stale++
		m.logger.Warn().
			Str("job_id", entry.ID).
			Str("target", entry.Target).
			Str("age", age.Round(time.Second).String()).
			Msg("Job has been running longer than expected")
	}

	if stale > 0 {
		m.logger.Info().Int("stale_jobs", stale).Msg("Stale job sweep finished")
	}
}
