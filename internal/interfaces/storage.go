package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// JobStorage persists extraction jobs and their items
type JobStorage interface {
	// CreateJob persists a new job record
	CreateJob(ctx context.Context, job *models.Job) error

	// GetJob retrieves a job by ID, NotFound error when missing
	GetJob(ctx context.Context, id string) (*models.Job, error)

	// CompleteJob transitions a running job to completed and stores its
	// items atomically. Precondition error if the job is already terminal.
	CompleteJob(ctx context.Context, id string, items []models.Item) error

	// FailJob transitions a running job to failed with an error message.
	// Precondition error if the job is already terminal.
	FailJob(ctx context.Context, id string, errorMessage string) error

	// ListJobs returns up to limit jobs newest-first, each with its
	// derived summary count. Items are never included.
	ListJobs(ctx context.Context, limit int) ([]*models.JobListEntry, error)

	// DeleteJob removes a job and cascades to its items and summaries.
	// NotFound error when the job does not exist.
	DeleteJob(ctx context.Context, id string) error

	// ListItems returns a job's items in insertion order
	ListItems(ctx context.Context, jobID string) ([]models.Item, error)
}

// SummaryStorage persists AI summaries derived from jobs
type SummaryStorage interface {
	// CreateSummary persists a new summary record
	CreateSummary(ctx context.Context, summary *models.Summary) error

	// GetSummary retrieves a summary joined with its parent job's target
	// and section, NotFound error when missing.
	GetSummary(ctx context.Context, id string) (*models.SummaryWithJob, error)

	// LatestSummaryForJob returns the most recently created summary for a
	// job, or (nil, nil) when the job has none.
	LatestSummaryForJob(ctx context.Context, jobID string) (*models.Summary, error)

	// CountSummaries returns how many summaries exist for a job
	CountSummaries(ctx context.Context, jobID string) (int, error)
}

// StorageManager bundles the per-entity storages behind one lifecycle
type StorageManager interface {
	Jobs() JobStorage
	Summaries() SummaryStorage
	Close() error
}
