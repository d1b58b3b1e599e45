package badger

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// jobRecord is the stored aggregate for a job. Items ride inside the record
// so the document backend keeps a job and its items in one value; the public
// contract still serves them separately.
type jobRecord struct {
	models.Job
	Items []models.Item
}

// JobStorage implements the JobStorage interface for Badger
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) CreateJob(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return models.NewValidationError("job ID is required")
	}

	record := &jobRecord{Job: *job}
	if err := s.db.Store().Insert(job.ID, record); err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.Job, error) {
	record, err := s.getRecord(id)
	if err != nil {
		return nil, err
	}
	job := record.Job
	return &job, nil
}

func (s *JobStorage) CompleteJob(ctx context.Context, id string, items []models.Item) error {
	record, err := s.getRecord(id)
	if err != nil {
		return err
	}
	if record.IsTerminal() {
		return models.NewPreconditionError("job %s is already %s", id, record.Status)
	}

	record.MarkCompleted(len(items))
	record.Items = items
	if err := s.db.Store().Update(id, record); err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

func (s *JobStorage) FailJob(ctx context.Context, id string, errorMessage string) error {
	record, err := s.getRecord(id)
	if err != nil {
		return err
	}
	if record.IsTerminal() {
		return models.NewPreconditionError("job %s is already %s", id, record.Status)
	}

	record.MarkFailed(errorMessage)
	if err := s.db.Store().Update(id, record); err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}
	return nil
}

func (s *JobStorage) ListJobs(ctx context.Context, limit int) ([]*models.JobListEntry, error) {
	var records []jobRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	entries := make([]*models.JobListEntry, 0, len(records))
	for i := range records {
		count, err := s.db.Store().Count(&summaryRecord{}, badgerhold.Where("JobID").Eq(records[i].ID))
		if err != nil {
			return nil, fmt.Errorf("failed to count summaries for job %s: %w", records[i].ID, err)
		}
		entries = append(entries, &models.JobListEntry{
			Job:          records[i].Job,
			SummaryCount: int(count),
		})
	}
	return entries, nil
}

func (s *JobStorage) DeleteJob(ctx context.Context, id string) error {
	if _, err := s.getRecord(id); err != nil {
		return err
	}

	if err := s.db.Store().Delete(id, &jobRecord{}); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	// Cascade to derived summaries
	if err := s.db.Store().DeleteMatching(&summaryRecord{}, badgerhold.Where("JobID").Eq(id)); err != nil {
		return fmt.Errorf("failed to delete summaries for job %s: %w", id, err)
	}
	return nil
}

func (s *JobStorage) ListItems(ctx context.Context, jobID string) ([]models.Item, error) {
	record, err := s.getRecord(jobID)
	if err != nil {
		return nil, err
	}
	if record.Items == nil {
		return []models.Item{}, nil
	}
	return record.Items, nil
}

func (s *JobStorage) getRecord(id string) (*jobRecord, error) {
	var record jobRecord
	if err := s.db.Store().Get(id, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, models.NewNotFoundError("job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &record, nil
}
