package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/services/orchestrator"
)

// DefaultHistoryLimit caps the history listing when no limit is given
const DefaultHistoryLimit = 50

// HistoryHandler serves the job history endpoints
type HistoryHandler struct {
	orchestrator *orchestrator.Service
	logger       arbor.ILogger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(svc *orchestrator.Service, logger arbor.ILogger) *HistoryHandler {
	return &HistoryHandler{
		orchestrator: svc,
		logger:       logger,
	}
}

// ListHandler returns job history, newest first, with summary counts
// GET /api/history?limit=
func (h *HistoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, err := h.orchestrator.ListJobs(r.Context(), limit)
	if err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(entries),
		"jobs":  entries,
	})
}

// DeleteHandler removes a job and its derived data
// DELETE /api/history/{id}
func (h *HistoryHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "DELETE") {
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/history/")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	if err := h.orchestrator.DeleteJob(r.Context(), id); err != nil {
		WriteModelError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Job deleted",
	})
}
