package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique job ID with the "job_" prefix
// Format: job_<uuid>
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewSummaryID generates a unique summary ID with the "sum_" prefix
// Format: sum_<uuid>
func NewSummaryID() string {
	return "sum_" + uuid.New().String()
}
