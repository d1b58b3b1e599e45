package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Extraction jobs
	mux.HandleFunc("/api/scraper/start", s.app.ScraperHandler.StartHandler)    // POST - launch a job
	mux.HandleFunc("/api/scraper/status/", s.app.ScraperHandler.StatusHandler) // GET /{id} - job status
	mux.HandleFunc("/api/scraper/items/", s.app.ScraperHandler.ItemsHandler)   // GET /{id} - extracted items

	// Job history
	mux.HandleFunc("/api/history", s.app.HistoryHandler.ListHandler)    // GET - list with summary counts
	mux.HandleFunc("/api/history/", s.app.HistoryHandler.DeleteHandler) // DELETE /{id}

	// AI artifacts. ServeMux picks the longest matching prefix, so the
	// generate/report routes win over the bare summary lookup.
	mux.HandleFunc("/api/summary/generate/", s.app.SummaryHandler.GenerateHandler) // POST /{jobId}
	mux.HandleFunc("/api/summary/report/", s.app.SummaryHandler.ReportHandler)     // POST /{jobId}
	mux.HandleFunc("/api/summary/", s.app.SummaryHandler.GetHandler)               // GET /{id}

	// Service endpoints
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// Everything else is a JSON 404
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
