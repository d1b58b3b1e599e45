// Package orchestrator owns the extraction job lifecycle: start, track,
// settle. Jobs are fire-and-forget; the caller gets an ID back immediately
// and polls for status.
package orchestrator

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// StartJobInput is a validated start request
type StartJobInput struct {
	Target  string `json:"url" validate:"required"`
	Section string `json:"tab" validate:"omitempty,oneof=classroom community calendar about"`
	Options models.ExtractionOptions
}

// Service coordinates extraction jobs
type Service struct {
	storage      interfaces.StorageManager
	extractor    interfaces.Extractor
	sourceDomain string
	validate     *validator.Validate
	logger       arbor.ILogger
}

// NewService creates a new job orchestrator
func NewService(logger arbor.ILogger, storage interfaces.StorageManager, extractor interfaces.Extractor, sourceDomain string) *Service {
	return &Service{
		storage:      storage,
		extractor:    extractor,
		sourceDomain: sourceDomain,
		validate:     validator.New(),
		logger:       logger,
	}
}

// StartJob validates the request, persists a running job and dispatches the
// extractor on a detached goroutine. Returns the job as soon as it is
// persisted; extraction settles it later.
func (s *Service) StartJob(ctx context.Context, input *StartJobInput) (*models.Job, error) {
	if err := s.validate.Struct(input); err != nil {
		if strings.TrimSpace(input.Target) == "" {
			return nil, models.NewValidationError("url is required")
		}
		return nil, models.NewValidationError("invalid request: %v", err)
	}

	if err := common.ValidateTarget(input.Target, s.sourceDomain); err != nil {
		return nil, models.NewValidationError("%v", err)
	}

	job := models.NewJob(input.Target, input.Section)
	if err := s.storage.Jobs().CreateJob(ctx, job); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("target", job.Target).
		Str("tab", job.Section).
		Msg("Extraction job started")

	opts := input.Options
	opts.Section = job.Section
	common.SafeGo(s.logger, "runExtraction:"+job.ID, func() {
		s.runExtraction(job, &opts)
	})

	return job, nil
}

// runExtraction drives the detached extraction and settles the job exactly
// once. It runs on a background context: the HTTP request that started the
// job is long gone.
func (s *Service) runExtraction(job *models.Job, opts *models.ExtractionOptions) {
	ctx := context.Background()

	result, err := s.extractor.Extract(ctx, job.Target, opts)
	if err != nil {
		s.logger.Warn().
			Str("job_id", job.ID).
			Err(err).
			Msg("Extraction failed")
		if failErr := s.storage.Jobs().FailJob(ctx, job.ID, err.Error()); failErr != nil {
			s.logger.Error().
				Str("job_id", job.ID).
				Err(failErr).
				Msg("Failed to persist job failure")
		}
		return
	}

	if err := s.storage.Jobs().CompleteJob(ctx, job.ID, result.Items); err != nil {
		s.logger.Error().
			Str("job_id", job.ID).
			Err(err).
			Msg("Failed to persist job completion")
		return
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Int("items", result.Count).
		Msg("Extraction job completed")
}

// GetJobStatus returns the job without its items
func (s *Service) GetJobStatus(ctx context.Context, id string) (*models.Job, error) {
	return s.storage.Jobs().GetJob(ctx, id)
}

// GetJobItems returns the items collected by a job
func (s *Service) GetJobItems(ctx context.Context, id string) ([]models.Item, error) {
	return s.storage.Jobs().ListItems(ctx, id)
}

// ListJobs returns job history, newest first, with summary counts
func (s *Service) ListJobs(ctx context.Context, limit int) ([]*models.JobListEntry, error) {
	return s.storage.Jobs().ListJobs(ctx, limit)
}

// DeleteJob removes a job and everything derived from it
func (s *Service) DeleteJob(ctx context.Context, id string) error {
	if err := s.storage.Jobs().DeleteJob(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("job_id", id).Msg("Job deleted")
	return nil
}
