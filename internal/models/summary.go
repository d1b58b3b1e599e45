package models

import (
	"time"

	"github.com/ternarybob/colligo/internal/common"
)

// Summary is a persisted AI-derived digest of a job's items. Regeneration
// always creates a new record; the most recently created summary for a job
// is "the current summary" for report reuse.
type Summary struct {
	ID         string    `json:"id"`
	JobID      string    `json:"job_id"`
	Summary    string    `json:"summary"`
	KeyPoints  []string  `json:"key_points"`
	Topics     []string  `json:"topics"`
	Insights   []string  `json:"practical_insights"`
	TokensUsed int       `json:"tokens_used"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewSummary creates a summary record from a summarizer result
func NewSummary(jobID string, result *SummaryResult) *Summary {
	return &Summary{
		ID:         common.NewSummaryID(),
		JobID:      jobID,
		Summary:    result.Summary,
		KeyPoints:  result.KeyPoints,
		Topics:     result.Topics,
		Insights:   result.Insights,
		TokensUsed: result.TokensUsed,
		CreatedAt:  time.Now(),
	}
}

// Result converts a persisted summary back into the collaborator result
// shape, so the report generator consumes stored and transient summaries
// identically.
func (s *Summary) Result() *SummaryResult {
	return &SummaryResult{
		Summary:    s.Summary,
		KeyPoints:  s.KeyPoints,
		Topics:     s.Topics,
		Insights:   s.Insights,
		TokensUsed: s.TokensUsed,
	}
}

// SummaryWithJob is a summary joined with its parent job's target and section
type SummaryWithJob struct {
	Summary
	Target  string `json:"url"`
	Section string `json:"tab"`
}

// SummaryResult is the raw output of the summarizer collaborator
type SummaryResult struct {
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points"`
	Topics     []string `json:"topics"`
	Insights   []string `json:"practical_insights"`
	TokensUsed int      `json:"tokens_used"`
}

// Report is a stateless derived artifact; reports are never persisted
type Report struct {
	Report     string `json:"report"`
	TokensUsed int    `json:"tokens_used"`
}
