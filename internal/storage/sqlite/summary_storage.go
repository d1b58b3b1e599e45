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

// SummaryStorage implements the SummaryStorage interface for SQLite
type SummaryStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewSummaryStorage creates a new SummaryStorage instance
func NewSummaryStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.SummaryStorage {
	return &SummaryStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SummaryStorage) CreateSummary(ctx context.Context, summary *models.Summary) error {
	if summary.ID == "" {
		return models.NewValidationError("summary ID is required")
	}

	keyPoints, err := json.Marshal(summary.KeyPoints)
	if err != nil {
		return fmt.Errorf("failed to encode key points: %w", err)
	}
	topics, err := json.Marshal(summary.Topics)
	if err != nil {
		return fmt.Errorf("failed to encode topics: %w", err)
	}
	insights, err := json.Marshal(summary.Insights)
	if err != nil {
		return fmt.Errorf("failed to encode insights: %w", err)
	}

	_, err = s.db.DB().ExecContext(ctx, `
		INSERT INTO summaries (id, job_id, summary, key_points, topics, practical_insights, tokens_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID, summary.JobID, summary.Summary, string(keyPoints),
		string(topics), string(insights), summary.TokensUsed, summary.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create summary: %w", err)
	}
	return nil
}

func (s *SummaryStorage) GetSummary(ctx context.Context, id string) (*models.SummaryWithJob, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT s.id, s.job_id, s.summary, s.key_points, s.topics, s.practical_insights,
		       s.tokens_used, s.created_at, j.url, j.tab
		FROM summaries s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.id = ?`, id)

	var (
		result    models.SummaryWithJob
		keyPoints string
		topics    string
		insights  string
		createdAt int64
	)
	err := row.Scan(&result.ID, &result.JobID, &result.Summary.Summary, &keyPoints,
		&topics, &insights, &result.TokensUsed, &createdAt, &result.Target, &result.Section)
	if err == sql.ErrNoRows {
		return nil, models.NewNotFoundError("summary not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get summary: %w", err)
	}

	if err := decodeSummaryLists(&result.Summary, keyPoints, topics, insights); err != nil {
		return nil, err
	}
	result.CreatedAt = time.Unix(0, createdAt)
	return &result, nil
}

func (s *SummaryStorage) LatestSummaryForJob(ctx context.Context, jobID string) (*models.Summary, error) {
	// rowid breaks CreatedAt ties in insertion order
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, job_id, summary, key_points, topics, practical_insights, tokens_used, created_at
		FROM summaries WHERE job_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, jobID)

	var (
		summary   models.Summary
		keyPoints string
		topics    string
		insights  string
		createdAt int64
	)
	err := row.Scan(&summary.ID, &summary.JobID, &summary.Summary, &keyPoints,
		&topics, &insights, &summary.TokensUsed, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest summary: %w", err)
	}

	if err := decodeSummaryLists(&summary, keyPoints, topics, insights); err != nil {
		return nil, err
	}
	summary.CreatedAt = time.Unix(0, createdAt)
	return &summary, nil
}

func (s *SummaryStorage) CountSummaries(ctx context.Context, jobID string) (int, error) {
	var count int
	err := s.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM summaries WHERE job_id = ?`, jobID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}

func decodeSummaryLists(summary *models.Summary, keyPoints, topics, insights string) error {
	if keyPoints != "" {
		if err := json.Unmarshal([]byte(keyPoints), &summary.KeyPoints); err != nil {
			return fmt.Errorf("failed to decode key points: %w", err)
		}
	}
	if topics != "" {
		if err := json.Unmarshal([]byte(topics), &summary.Topics); err != nil {
			return fmt.Errorf("failed to decode topics: %w", err)
		}
	}
	if insights != "" {
		if err := json.Unmarshal([]byte(insights), &summary.Insights); err != nil {
			return fmt.Errorf("failed to decode insights: %w", err)
		}
	}
	return nil
}
