package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/colligo/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// WriteModelError maps the error taxonomy to HTTP statuses:
// validation and precondition to 400, not found to 404, collaborator to 502.
// Unclassified errors become 500 without leaking internals.
func WriteModelError(w http.ResponseWriter, err error) error {
	switch models.KindOf(err) {
	case models.ErrKindValidation, models.ErrKindPrecondition:
		return WriteError(w, http.StatusBadRequest, err.Error())
	case models.ErrKindNotFound:
		return WriteError(w, http.StatusNotFound, err.Error())
	case models.ErrKindCollaborator:
		return WriteError(w, http.StatusBadGateway, err.Error())
	default:
		return WriteError(w, http.StatusInternalServerError, "Internal server error")
	}
}
