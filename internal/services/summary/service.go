// Package summary derives AI artifacts from completed extraction jobs.
package summary

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Service generates summaries and reports for completed jobs
type Service struct {
	storage    interfaces.StorageManager
	summarizer interfaces.Summarizer
	logger     arbor.ILogger
}

// NewService creates a new summary pipeline
func NewService(logger arbor.ILogger, storage interfaces.StorageManager, summarizer interfaces.Summarizer) *Service {
	return &Service{
		storage:    storage,
		summarizer: summarizer,
		logger:     logger,
	}
}

// GenerateSummary summarizes a completed job's items and persists the result
// as a new summary record. Regeneration never overwrites earlier summaries.
func (s *Service) GenerateSummary(ctx context.Context, jobID string) (*models.Summary, error) {
	items, err := s.requireCompletedWithItems(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result, err := s.summarizer.Summarize(ctx, items)
	if err != nil {
		return nil, models.NewCollaboratorError("summary generation failed", err)
	}

	record := models.NewSummary(jobID, result)
	if err := s.storage.Summaries().CreateSummary(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", jobID).
		Str("summary_id", record.ID).
		Int("tokens_used", record.TokensUsed).
		Msg("Summary persisted")

	return record, nil
}

// GenerateReport produces a narrative report for a completed job. The most
// recent stored summary is reused; when none exists the job is summarized
// transiently without persisting anything. Reports are never stored.
func (s *Service) GenerateReport(ctx context.Context, jobID string) (*models.Report, error) {
	items, err := s.requireCompletedWithItems(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var result *models.SummaryResult
	stored, err := s.storage.Summaries().LatestSummaryForJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if stored != nil {
		result = stored.Result()
		s.logger.Debug().
			Str("job_id", jobID).
			Str("summary_id", stored.ID).
			Msg("Reusing stored summary for report")
	} else {
		result, err = s.summarizer.Summarize(ctx, items)
		if err != nil {
			return nil, models.NewCollaboratorError("summary generation failed", err)
		}
	}

	report, err := s.summarizer.Report(ctx, items, result)
	if err != nil {
		return nil, models.NewCollaboratorError("report generation failed", err)
	}

	s.logger.Info().
		Str("job_id", jobID).
		Int("tokens_used", report.TokensUsed).
		Msg("Report generated")

	return report, nil
}

// GetSummary returns a stored summary with its parent job's target and section
func (s *Service) GetSummary(ctx context.Context, id string) (*models.SummaryWithJob, error) {
	return s.storage.Summaries().GetSummary(ctx, id)
}

// requireCompletedWithItems enforces the shared artifact preconditions:
// the job exists, has completed and produced at least one item.
func (s *Service) requireCompletedWithItems(ctx context.Context, jobID string) ([]models.Item, error) {
	job, err := s.storage.Jobs().GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobStatusCompleted {
		return nil, models.NewPreconditionError("job %s is %s, not completed", jobID, job.Status)
	}

	items, err := s.storage.Jobs().ListItems(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.NewPreconditionError("job %s has no items to analyze", jobID)
	}
	return items, nil
}
