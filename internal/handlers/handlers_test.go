package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/services/orchestrator"
	"github.com/ternarybob/colligo/internal/services/summary"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

type stubExtractor struct {
	items []models.Item
}

func (s *stubExtractor) Extract(ctx context.Context, target string, opts *models.ExtractionOptions) (*models.ExtractionResult, error) {
	return &models.ExtractionResult{Items: s.items, Count: len(s.items)}, nil
}

type stubSummarizer struct{}

func (s *stubSummarizer) Summarize(ctx context.Context, items []models.Item) (*models.SummaryResult, error) {
	return &models.SummaryResult{Summary: "digest", KeyPoints: []string{"k"}, TokensUsed: 10}, nil
}

func (s *stubSummarizer) Report(ctx context.Context, items []models.Item, result *models.SummaryResult) (*models.Report, error) {
	return &models.Report{Report: "# Report", TokensUsed: 5}, nil
}

type fixture struct {
	storage interfaces.StorageManager
	scraper *ScraperHandler
	history *HistoryHandler
	summary *SummaryHandler
	orch    *orchestrator.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := arbor.NewLogger()
	storage, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })

	extractor := &stubExtractor{items: []models.Item{
		models.NewItem(map[string]interface{}{"type": "post", "title": "hello"}),
	}}
	orch := orchestrator.NewService(logger, storage, extractor, "skool.com")
	pipeline := summary.NewService(logger, storage, &stubSummarizer{})

	return &fixture{
		storage: storage,
		scraper: NewScraperHandler(orch, logger),
		history: NewHistoryHandler(orch, logger),
		summary: NewSummaryHandler(pipeline, logger),
		orch:    orch,
	}
}

func (f *fixture) startJob(t *testing.T) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/scraper/start",
		strings.NewReader(`{"url":"https://www.skool.com/my-group","tab":"community"}`))
	rec := httptest.NewRecorder()
	f.scraper.StartHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool   `json:"success"`
		JobID   string `json:"job_id"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.JobID)
	require.Equal(t, "Extraction started", resp.Message)

	// Wait for the detached extraction to settle
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := f.orch.GetJobStatus(context.Background(), resp.JobID)
		require.NoError(t, err)
		if job.IsTerminal() {
			return resp.JobID
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not settle in time")
	return ""
}

func TestStartAndStatus(t *testing.T) {
	f := newFixture(t)
	jobID := f.startJob(t)

	req := httptest.NewRequest(http.MethodGet, "/api/scraper/status/"+jobID, nil)
	rec := httptest.NewRecorder()
	f.scraper.StatusHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var job models.Job
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, 1, job.ItemCount)
	// Status view never includes items
	assert.NotContains(t, rec.Body.String(), `"items"`)
}

func TestStartRejectsInvalidTarget(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scraper/start",
		strings.NewReader(`{"url":"https://www.example.com/g"}`))
	rec := httptest.NewRecorder()
	f.scraper.StartHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemsEndpoint(t *testing.T) {
	f := newFixture(t)
	jobID := f.startJob(t)

	req := httptest.NewRequest(http.MethodGet, "/api/scraper/items/"+jobID, nil)
	rec := httptest.NewRecorder()
	f.scraper.ItemsHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int           `json:"count"`
		Items []models.Item `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "hello", resp.Items[0].Content["title"])

	missing := httptest.NewRequest(http.MethodGet, "/api/scraper/items/job_missing", nil)
	rec = httptest.NewRecorder()
	f.scraper.ItemsHandler(rec, missing)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHistoryListAndDelete(t *testing.T) {
	f := newFixture(t)
	jobID := f.startJob(t)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	f.history.ListHandler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int                   `json:"count"`
		Jobs  []models.JobListEntry `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Jobs, 1)
	assert.Equal(t, jobID, resp.Jobs[0].ID)
	assert.Equal(t, 0, resp.Jobs[0].SummaryCount)

	del := httptest.NewRequest(http.MethodDelete, "/api/history/"+jobID, nil)
	rec = httptest.NewRecorder()
	f.history.DeleteHandler(rec, del)
	assert.Equal(t, http.StatusOK, rec.Code)

	del = httptest.NewRequest(http.MethodDelete, "/api/history/"+jobID, nil)
	rec = httptest.NewRecorder()
	f.history.DeleteHandler(rec, del)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSummaryEndpoints(t *testing.T) {
	f := newFixture(t)
	jobID := f.startJob(t)

	gen := httptest.NewRequest(http.MethodPost, "/api/summary/generate/"+jobID, nil)
	rec := httptest.NewRecorder()
	f.summary.GenerateHandler(rec, gen)
	require.Equal(t, http.StatusOK, rec.Code)

	var created models.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, jobID, created.JobID)
	assert.Equal(t, "digest", created.Summary)

	get := httptest.NewRequest(http.MethodGet, "/api/summary/"+created.ID, nil)
	rec = httptest.NewRecorder()
	f.summary.GetHandler(rec, get)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "https://www.skool.com/my-group")

	rep := httptest.NewRequest(http.MethodPost, "/api/summary/report/"+jobID, nil)
	rec = httptest.NewRecorder()
	f.summary.ReportHandler(rec, rep)
	require.Equal(t, http.StatusOK, rec.Code)

	var report models.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "# Report", report.Report)

	// Report for a running job is a precondition failure
	running := models.NewJob("https://www.skool.com/other", "")
	require.NoError(t, f.storage.Jobs().CreateJob(context.Background(), running))
	rep = httptest.NewRequest(http.MethodPost, "/api/summary/report/"+running.ID, nil)
	rec = httptest.NewRecorder()
	f.summary.ReportHandler(rec, rep)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMethodEnforcement(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/scraper/start", nil)
	rec := httptest.NewRecorder()
	f.scraper.StartHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
