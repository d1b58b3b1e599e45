package models

import (
	"time"

	"github.com/ternarybob/colligo/internal/common"
)

// JobStatus represents the lifecycle state of an extraction job
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// Group sections that the extractor can target
const (
	SectionClassroom = "classroom"
	SectionCommunity = "community"
	SectionCalendar  = "calendar"
	SectionAbout     = "about"

	// SectionDefault is used when a start request omits the section
	SectionDefault = SectionClassroom
)

// Job is one tracked extraction run against a group target.
//
// Lifecycle: created in "running", moved exactly once to "completed" or
// "failed". Terminal jobs never transition again. Items are stored by the
// backend alongside the job and retrieved via JobStorage.ListItems; they are
// deliberately not part of this struct so status reads stay size-bounded.
type Job struct {
	ID          string     `json:"id"`
	Target      string     `json:"url"`
	Section     string     `json:"tab"`
	Status      JobStatus  `json:"status"`
	ItemCount   int        `json:"items_count"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// NewJob creates a new job in the running state with a server-assigned ID
func NewJob(target, section string) *Job {
	if section == "" {
		section = SectionDefault
	}
	return &Job{
		ID:        common.NewJobID(),
		Target:    target,
		Section:   section,
		Status:    JobStatusRunning,
		ItemCount: 0,
		CreatedAt: time.Now(),
	}
}

// IsTerminal returns true once the job has settled
func (j *Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// MarkCompleted records the successful terminal transition
func (j *Job) MarkCompleted(itemCount int) {
	j.Status = JobStatusCompleted
	j.ItemCount = itemCount
	now := time.Now()
	j.CompletedAt = &now
}

// MarkFailed records the failed terminal transition
func (j *Job) MarkFailed(errorMessage string) {
	j.Status = JobStatusFailed
	j.Error = errorMessage
	now := time.Now()
	j.CompletedAt = &now
}

// Age returns how long ago the job was created. Used by the stale-job
// monitor so operators can spot jobs orphaned in "running" after a restart.
func (j *Job) Age() time.Duration {
	return time.Since(j.CreatedAt)
}

// JobListEntry is the history projection of a job: metadata plus the number
// of summaries derived from it. Items are never included.
type JobListEntry struct {
	Job
	SummaryCount int `json:"summary_count"`
}
