package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/orchestrator"
)

// ScraperHandler serves the extraction job endpoints
type ScraperHandler struct {
	orchestrator *orchestrator.Service
	logger       arbor.ILogger
}

// NewScraperHandler creates a new scraper handler
func NewScraperHandler(svc *orchestrator.Service, logger arbor.ILogger) *ScraperHandler {
	return &ScraperHandler{
		orchestrator: svc,
		logger:       logger,
	}
}

// startRequest is the POST /api/scraper/start body
type startRequest struct {
	URL             string `json:"url"`
	Tab             string `json:"tab"`
	IncludeComments bool   `json:"include_comments"`
	CommentsLimit   int    `json:"comments_limit"`
	MaxItems        int    `json:"max_items"`
}

// StartHandler launches a new extraction job
// POST /api/scraper/start
func (h *ScraperHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	job, err := h.orchestrator.StartJob(r.Context(), &orchestrator.StartJobInput{
		Target:  req.URL,
		Section: req.Tab,
		Options: models.ExtractionOptions{
			Section:         req.Tab,
			IncludeComments: req.IncludeComments,
			CommentsLimit:   req.CommentsLimit,
			MaxItems:        req.MaxItems,
		},
	})
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"job_id":  job.ID,
		"message": "Extraction started",
	})
}

// StatusHandler returns job status without items
// GET /api/scraper/status/{id}
func (h *ScraperHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/scraper/status/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	job, err := h.orchestrator.GetJobStatus(r.Context(), id)
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// ItemsHandler returns the items a job collected
// GET /api/scraper/items/{id}
func (h *ScraperHandler) ItemsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/scraper/items/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	items, err := h.orchestrator.GetJobItems(r.Context(), id)
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(items),
		"items": items,
	})
}
