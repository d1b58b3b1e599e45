package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// JobStorage implements the JobStorage interface for SQLite
type JobStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

func (s *JobStorage) CreateJob(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		return models.NewValidationError("job ID is required")
	}

	_, err := s.db.DB().ExecContext(ctx, `
		INSERT INTO jobs (id, url, tab, status, items_count, error, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULL)`,
		job.ID, job.Target, job.Section, string(job.Status), job.ItemCount,
		nullString(job.Error), job.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (s *JobStorage) GetJob(ctx context.Context, id string) (*models.Job, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, url, tab, status, items_count, error, created_at, completed_at
		FROM jobs WHERE id = ?`, id)
	return scanJob(row, id)
}

func (s *JobStorage) CompleteJob(ctx context.Context, id string, items []models.Item) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireRunning(ctx, tx, id); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET status = ?, items_count = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		string(models.JobStatusCompleted), len(items), now.UnixNano(),
		id, string(models.JobStatusRunning))
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	for i := range items {
		content, err := json.Marshal(items[i].Content)
		if err != nil {
			return fmt.Errorf("failed to encode item content: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO job_items (job_id, content, type, scraped_at)
			VALUES (?, ?, ?, ?)`,
			id, string(content), items[i].Kind, items[i].ExtractedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job completion: %w", err)
	}
	return nil
}

func (s *JobStorage) FailJob(ctx context.Context, id string, errorMessage string) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.requireRunning(ctx, tx, id); err != nil {
		return err
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, completed_at = ?
		WHERE id = ? AND status = ?`,
		string(models.JobStatusFailed), errorMessage, now.UnixNano(),
		id, string(models.JobStatusRunning))
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job failure: %w", err)
	}
	return nil
}

func (s *JobStorage) ListJobs(ctx context.Context, limit int) ([]*models.JobListEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats negative LIMIT as unlimited
	}

	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT j.id, j.url, j.tab, j.status, j.items_count, j.error, j.created_at, j.completed_at,
		       COUNT(s.id) AS summary_count
		FROM jobs j
		LEFT JOIN summaries s ON s.job_id = j.id
		GROUP BY j.id
		ORDER BY j.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	entries := []*models.JobListEntry{}
	for rows.Next() {
		var (
			entry       models.JobListEntry
			errMsg      sql.NullString
			createdAt   int64
			completedAt sql.NullInt64
		)
		err := rows.Scan(&entry.ID, &entry.Target, &entry.Section, &entry.Status,
			&entry.ItemCount, &errMsg, &createdAt, &completedAt, &entry.SummaryCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		entry.Error = errMsg.String
		entry.CreatedAt = time.Unix(0, createdAt)
		if completedAt.Valid {
			t := time.Unix(0, completedAt.Int64)
			entry.CompletedAt = &t
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate job rows: %w", err)
	}
	return entries, nil
}

func (s *JobStorage) DeleteJob(ctx context.Context, id string) error {
	result, err := s.db.DB().ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return models.NewNotFoundError("job not found: %s", id)
	}
	// Items and summaries removed by FK cascade
	return nil
}

func (s *JobStorage) ListItems(ctx context.Context, jobID string) ([]models.Item, error) {
	if _, err := s.GetJob(ctx, jobID); err != nil {
		return nil, err
	}

	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT content, type, scraped_at
		FROM job_items WHERE job_id = ?
		ORDER BY id ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var (
			content   string
			item      models.Item
			scrapedAt int64
		)
		if err := rows.Scan(&content, &item.Kind, &scrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		if err := json.Unmarshal([]byte(content), &item.Content); err != nil {
			return nil, fmt.Errorf("failed to decode item content: %w", err)
		}
		item.ExtractedAt = time.Unix(0, scrapedAt)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate item rows: %w", err)
	}
	return items, nil
}

// requireRunning loads the job inside the transaction and rejects terminal
// transitions with a precondition error.
func (s *JobStorage) requireRunning(ctx context.Context, tx *sql.Tx, id string) error {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM jobs WHERE id = ?`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return models.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("failed to get job status: %w", err)
	}
	if models.JobStatus(status) != models.JobStatusRunning {
		return models.NewPreconditionError("job %s is already %s", id, status)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row rowScanner, id string) (*models.Job, error) {
	var (
		job         models.Job
		errMsg      sql.NullString
		createdAt   int64
		completedAt sql.NullInt64
	)
	err := row.Scan(&job.ID, &job.Target, &job.Section, &job.Status,
		&job.ItemCount, &errMsg, &createdAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("job not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}
	job.Error = errMsg.String
	job.CreatedAt = time.Unix(0, createdAt)
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64)
		job.CompletedAt = &t
	}
	return &job, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
