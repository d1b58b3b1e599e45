package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/services/summary"
)

// SummaryHandler serves the AI artifact endpoints
type SummaryHandler struct {
	pipeline *summary.Service
	logger   arbor.ILogger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(svc *summary.Service, logger arbor.ILogger) *SummaryHandler {
	return &SummaryHandler{
		pipeline: svc,
		logger:   logger,
	}
}

// GenerateHandler summarizes a completed job and persists the result
// POST /api/summary/generate/{id}
func (h *SummaryHandler) GenerateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/summary/generate/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	record, err := h.pipeline.GenerateSummary(r.Context(), jobID)
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}

// ReportHandler produces a narrative report for a completed job
// POST /api/summary/report/{id}
func (h *SummaryHandler) ReportHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/api/summary/report/")
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	report, err := h.pipeline.GenerateReport(r.Context(), jobID)
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, report)
}

// GetHandler returns a stored summary with its parent job context
// GET /api/summary/{id}
func (h *SummaryHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/summary/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Summary ID is required")
		return
	}

	record, err := h.pipeline.GetSummary(r.Context(), id)
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, record)
}
