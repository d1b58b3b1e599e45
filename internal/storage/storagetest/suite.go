// Package storagetest holds the shared storage contract suite. Both backends
// run the same suite so job lifecycle, cascade delete, history counts and
// latest-summary selection behave identically regardless of engine.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Factory builds a fresh, empty storage manager for each test
type Factory func(t *testing.T) interfaces.StorageManager

// Run executes the contract suite against a backend
func Run(t *testing.T, newManager Factory) {
	t.Run("CreateAndGetJob", func(t *testing.T) { testCreateAndGetJob(t, newManager) })
	t.Run("GetMissingJob", func(t *testing.T) { testGetMissingJob(t, newManager) })
	t.Run("CompleteJob", func(t *testing.T) { testCompleteJob(t, newManager) })
	t.Run("FailJob", func(t *testing.T) { testFailJob(t, newManager) })
	t.Run("TerminalJobRejectsTransition", func(t *testing.T) { testTerminalRejects(t, newManager) })
	t.Run("ItemOrder", func(t *testing.T) { testItemOrder(t, newManager) })
	t.Run("ListJobsNewestFirst", func(t *testing.T) { testListJobs(t, newManager) })
	t.Run("DeleteJobCascades", func(t *testing.T) { testDeleteCascades(t, newManager) })
	t.Run("LatestSummary", func(t *testing.T) { testLatestSummary(t, newManager) })
	t.Run("GetSummaryWithJob", func(t *testing.T) { testGetSummaryWithJob(t, newManager) })
}

func makeItems(n int) []models.Item {
	items := make([]models.Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, models.NewItem(map[string]interface{}{
			"type":  "post",
			"title": string(rune('a' + i)),
			"index": float64(i),
		}))
	}
	return items
}

func testCreateAndGetJob(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", models.SectionCommunity)
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))

	got, err := mgr.Jobs().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "https://www.skool.com/my-group", got.Target)
	assert.Equal(t, models.SectionCommunity, got.Section)
	assert.Equal(t, models.JobStatusRunning, got.Status)
	assert.Equal(t, 0, got.ItemCount)
	assert.Nil(t, got.CompletedAt)
}

func testGetMissingJob(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	_, err := mgr.Jobs().GetJob(ctx, "job_missing")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))

	err = mgr.Jobs().DeleteJob(ctx, "job_missing")
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func testCompleteJob(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))

	items := makeItems(3)
	require.NoError(t, mgr.Jobs().CompleteJob(ctx, job.ID, items))

	got, err := mgr.Jobs().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 3, got.ItemCount)
	require.NotNil(t, got.CompletedAt)

	stored, err := mgr.Jobs().ListItems(ctx, job.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func testFailJob(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))
	require.NoError(t, mgr.Jobs().FailJob(ctx, job.ID, "actor run failed"))

	got, err := mgr.Jobs().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, got.Status)
	assert.Equal(t, "actor run failed", got.Error)
	require.NotNil(t, got.CompletedAt)

	// Failed jobs have no items
	stored, err := mgr.Jobs().ListItems(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func testTerminalRejects(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))
	require.NoError(t, mgr.Jobs().CompleteJob(ctx, job.ID, makeItems(2)))

	err := mgr.Jobs().CompleteJob(ctx, job.ID, makeItems(5))
	require.Error(t, err)
	assert.True(t, models.IsPrecondition(err))

	err = mgr.Jobs().FailJob(ctx, job.ID, "too late")
	require.Error(t, err)
	assert.True(t, models.IsPrecondition(err))

	// First settlement is preserved
	got, err := mgr.Jobs().GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, 2, got.ItemCount)
}

func testItemOrder(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))

	items := makeItems(5)
	require.NoError(t, mgr.Jobs().CompleteJob(ctx, job.ID, items))

	stored, err := mgr.Jobs().ListItems(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	for i := range stored {
		assert.Equal(t, items[i].Content["title"], stored[i].Content["title"])
		assert.Equal(t, "post", stored[i].Kind)
	}
}

func testListJobs(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	first := models.NewJob("https://www.skool.com/first", "")
	first.CreatedAt = time.Now().Add(-2 * time.Hour)
	second := models.NewJob("https://www.skool.com/second", "")
	second.CreatedAt = time.Now().Add(-1 * time.Hour)
	third := models.NewJob("https://www.skool.com/third", "")

	require.NoError(t, mgr.Jobs().CreateJob(ctx, first))
	require.NoError(t, mgr.Jobs().CreateJob(ctx, second))
	require.NoError(t, mgr.Jobs().CreateJob(ctx, third))

	require.NoError(t, mgr.Jobs().CompleteJob(ctx, second.ID, makeItems(1)))
	require.NoError(t, mgr.Summaries().CreateSummary(ctx, models.NewSummary(second.ID, &models.SummaryResult{Summary: "one"})))
	require.NoError(t, mgr.Summaries().CreateSummary(ctx, models.NewSummary(second.ID, &models.SummaryResult{Summary: "two"})))

	entries, err := mgr.Jobs().ListJobs(ctx, 50)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first
	assert.Equal(t, third.ID, entries[0].ID)
	assert.Equal(t, second.ID, entries[1].ID)
	assert.Equal(t, first.ID, entries[2].ID)

	assert.Equal(t, 0, entries[0].SummaryCount)
	assert.Equal(t, 2, entries[1].SummaryCount)

	limited, err := mgr.Jobs().ListJobs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, third.ID, limited[0].ID)
}

func testDeleteCascades(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))
	require.NoError(t, mgr.Jobs().CompleteJob(ctx, job.ID, makeItems(2)))

	summary := models.NewSummary(job.ID, &models.SummaryResult{Summary: "digest"})
	require.NoError(t, mgr.Summaries().CreateSummary(ctx, summary))

	require.NoError(t, mgr.Jobs().DeleteJob(ctx, job.ID))

	_, err := mgr.Jobs().GetJob(ctx, job.ID)
	assert.True(t, models.IsNotFound(err))

	_, err = mgr.Summaries().GetSummary(ctx, summary.ID)
	assert.True(t, models.IsNotFound(err))

	count, err := mgr.Summaries().CountSummaries(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func testLatestSummary(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", "")
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))
	require.NoError(t, mgr.Jobs().CompleteJob(ctx, job.ID, makeItems(1)))

	latest, err := mgr.Summaries().LatestSummaryForJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)

	older := models.NewSummary(job.ID, &models.SummaryResult{Summary: "older"})
	older.CreatedAt = time.Now().Add(-1 * time.Hour)
	newer := models.NewSummary(job.ID, &models.SummaryResult{Summary: "newer"})

	require.NoError(t, mgr.Summaries().CreateSummary(ctx, older))
	require.NoError(t, mgr.Summaries().CreateSummary(ctx, newer))

	latest, err = mgr.Summaries().LatestSummaryForJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, newer.ID, latest.ID)

	// Equal timestamps fall back to insertion order
	tied := time.Now().Add(time.Hour).Truncate(time.Second)
	tieA := models.NewSummary(job.ID, &models.SummaryResult{Summary: "tie a"})
	tieA.CreatedAt = tied
	tieB := models.NewSummary(job.ID, &models.SummaryResult{Summary: "tie b"})
	tieB.CreatedAt = tied

	require.NoError(t, mgr.Summaries().CreateSummary(ctx, tieA))
	require.NoError(t, mgr.Summaries().CreateSummary(ctx, tieB))

	latest, err = mgr.Summaries().LatestSummaryForJob(ctx, job.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, tieB.ID, latest.ID)

	count, err := mgr.Summaries().CountSummaries(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func testGetSummaryWithJob(t *testing.T, newManager Factory) {
	mgr := newManager(t)
	ctx := context.Background()

	job := models.NewJob("https://www.skool.com/my-group", models.SectionAbout)
	require.NoError(t, mgr.Jobs().CreateJob(ctx, job))
	require.NoError(t, mgr.Jobs().CompleteJob(ctx, job.ID, makeItems(1)))

	summary := models.NewSummary(job.ID, &models.SummaryResult{
		Summary:    "digest",
		KeyPoints:  []string{"a", "b"},
		Topics:     []string{"t"},
		Insights:   []string{"i"},
		TokensUsed: 42,
	})
	require.NoError(t, mgr.Summaries().CreateSummary(ctx, summary))

	got, err := mgr.Summaries().GetSummary(ctx, summary.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.ID, got.ID)
	assert.Equal(t, job.ID, got.JobID)
	assert.Equal(t, "digest", got.Summary.Summary)
	assert.Equal(t, []string{"a", "b"}, got.KeyPoints)
	assert.Equal(t, []string{"t"}, got.Topics)
	assert.Equal(t, []string{"i"}, got.Insights)
	assert.Equal(t, 42, got.TokensUsed)
	assert.Equal(t, "https://www.skool.com/my-group", got.Target)
	assert.Equal(t, models.SectionAbout, got.Section)

	_, err = mgr.Summaries().GetSummary(ctx, "sum_missing")
	assert.True(t, models.IsNotFound(err))
}
