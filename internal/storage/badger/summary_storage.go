package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// summaryRecord stores a summary plus a monotonic insertion stamp used to
// break CreatedAt ties when selecting the latest summary for a job.
type summaryRecord struct {
	models.Summary
	InsertedAt int64
}

// SummaryStorage implements the SummaryStorage interface for Badger
type SummaryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSummaryStorage creates a new SummaryStorage instance
func NewSummaryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SummaryStorage {
	return &SummaryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SummaryStorage) CreateSummary(ctx context.Context, summary *models.Summary) error {
	if summary.ID == "" {
		return models.NewValidationError("summary ID is required")
	}

	record := &summaryRecord{
		Summary:    *summary,
		InsertedAt: time.Now().UnixNano(),
	}
	if err := s.db.Store().Insert(summary.ID, record); err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

func (s *SummaryStorage) GetSummary(ctx context.Context, id string) (*models.SummaryWithJob, error) {
	var record summaryRecord
	if err := s.db.Store().Get(id, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.NewNotFoundError("summary not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	result := &models.SummaryWithJob{Summary: record.Summary}

	var job jobRecord
	if err := s.db.Store().Get(record.JobID, &job); err == nil {
		result.Target = job.Target
		result.Section = job.Section
	}

	return result, nil
}

func (s *SummaryStorage) LatestSummaryForJob(ctx context.Context, jobID string) (*models.Summary, error) {
	var records []summaryRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("JobID").Eq(jobID)); err != nil {
		return nil, fmt.Errorf("failed to find summaries for job %s: %w", jobID, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	latest := records[0]
	for _, r := range records[1:] {
		if r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.InsertedAt > latest.InsertedAt) {
			latest = r
		}
	}

	summary := latest.Summary
	return &summary, nil
}

func (s *SummaryStorage) CountSummaries(ctx context.Context, jobID string) (int, error) {
	count, err := s.db.Store().Count(&summaryRecord{}, badgerhold.Where("JobID").Eq(jobID))
	if err != nil {
		return 0, fmt.Errorf("failed to count summaries for job %s: %w", jobID, err)
	}
	return int(count), nil
}
