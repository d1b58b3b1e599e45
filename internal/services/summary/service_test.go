package summary

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

// stubSummarizer counts calls so tests can verify the reuse policy
type stubSummarizer struct {
	summarizeCalls int
	reportCalls    int
	summarizeErr   error
	reportErr      error
	lastSummary    *models.SummaryResult
}

func (s *stubSummarizer) Summarize(ctx context.Context, items []models.Item) (*models.SummaryResult, error) {
	s.summarizeCalls++
	if s.summarizeErr != nil {
		return nil, s.summarizeErr
	}
	return &models.SummaryResult{
		Summary:    fmt.Sprintf("digest %d", s.summarizeCalls),
		KeyPoints:  []string{"point"},
		Topics:     []string{"topic"},
		Insights:   []string{"insight"},
		TokensUsed: 100,
	}, nil
}

func (s *stubSummarizer) Report(ctx context.Context, items []models.Item, summary *models.SummaryResult) (*models.Report, error) {
	s.reportCalls++
	s.lastSummary = summary
	if s.reportErr != nil {
		return nil, s.reportErr
	}
	return &models.Report{Report: "# Report\n\n" + summary.Summary, TokensUsed: 50}, nil
}

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	logger := arbor.NewLogger()
	mgr, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func seedCompletedJob(t *testing.T, storage interfaces.StorageManager, itemCount int) *models.Job {
	t.Helper()
	ctx := context.Background()
	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, storage.Jobs().CreateJob(ctx, job))

	items := make([]models.Item, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		items = append(items, models.NewItem(map[string]interface{}{"title": fmt.Sprintf("item %d", i)}))
	}
	require.NoError(t, storage.Jobs().CompleteJob(ctx, job.ID, items))
	return job
}

func TestGenerateSummaryPersists(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	job := seedCompletedJob(t, storage, 3)

	first, err := svc.GenerateSummary(ctx, job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, job.ID, first.JobID)
	assert.Equal(t, "digest 1", first.Summary)
	assert.Equal(t, 100, first.TokensUsed)

	// Regeneration creates a distinct record
	second, err := svc.GenerateSummary(ctx, job.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := storage.Summaries().CountSummaries(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	latest, err := storage.Summaries().LatestSummaryForJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)
}

func TestGenerateSummaryPreconditions(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	_, err := svc.GenerateSummary(ctx, "job_missing")
	assert.True(t, models.IsNotFound(err))

	running := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, storage.Jobs().CreateJob(ctx, running))
	_, err = svc.GenerateSummary(ctx, running.ID)
	assert.True(t, models.IsPrecondition(err))

	failed := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, storage.Jobs().CreateJob(ctx, failed))
	require.NoError(t, storage.Jobs().FailJob(ctx, failed.ID, "boom"))
	_, err = svc.GenerateSummary(ctx, failed.ID)
	assert.True(t, models.IsPrecondition(err))

	empty := seedCompletedJob(t, storage, 0)
	_, err = svc.GenerateSummary(ctx, empty.ID)
	assert.True(t, models.IsPrecondition(err))

	assert.Equal(t, 0, stub.summarizeCalls)
}

func TestGenerateSummaryCollaboratorFailure(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{summarizeErr: fmt.Errorf("model unavailable")}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	job := seedCompletedJob(t, storage, 2)
	_, err := svc.GenerateSummary(ctx, job.ID)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindCollaborator, models.KindOf(err))

	// Nothing persisted on failure
	count, err := storage.Summaries().CountSummaries(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGenerateReportReusesStoredSummary(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	job := seedCompletedJob(t, storage, 2)

	stored, err := svc.GenerateSummary(ctx, job.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stub.summarizeCalls)

	report, err := svc.GenerateReport(ctx, job.ID)
	require.NoError(t, err)
	assert.Contains(t, report.Report, stored.Summary)

	// Stored summary reused: no second summarize call
	assert.Equal(t, 1, stub.summarizeCalls)
	assert.Equal(t, 1, stub.reportCalls)
	assert.Equal(t, stored.Summary, stub.lastSummary.Summary)
}

func TestGenerateReportTransientSummary(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	job := seedCompletedJob(t, storage, 2)

	report, err := svc.GenerateReport(ctx, job.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Report)
	assert.Equal(t, 1, stub.summarizeCalls)
	assert.Equal(t, 1, stub.reportCalls)

	// The transient summary was not persisted
	count, err := storage.Summaries().CountSummaries(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGenerateReportPreconditions(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	_, err := svc.GenerateReport(ctx, "job_missing")
	assert.True(t, models.IsNotFound(err))

	running := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, storage.Jobs().CreateJob(ctx, running))
	_, err = svc.GenerateReport(ctx, running.ID)
	assert.True(t, models.IsPrecondition(err))
}

func TestGetSummary(t *testing.T) {
	storage := newTestStorage(t)
	stub := &stubSummarizer{}
	svc := NewService(arbor.NewLogger(), storage, stub)
	ctx := context.Background()

	job := seedCompletedJob(t, storage, 1)
	created, err := svc.GenerateSummary(ctx, job.ID)
	require.NoError(t, err)

	got, err := svc.GetSummary(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "https://www.skool.com/my-group", got.Target)

	_, err = svc.GetSummary(ctx, "sum_missing")
	assert.True(t, models.IsNotFound(err))
}
