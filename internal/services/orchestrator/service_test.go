package orchestrator

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
	"github.com/ternarybob/colligo/internal/storage/badger"
)

// stubExtractor settles with canned items or a canned error
type stubExtractor struct {
	items []models.Item
	err   error
	panic bool
}

func (s *stubExtractor) Extract(ctx context.Context, target string, opts *models.ExtractionOptions) (*models.ExtractionResult, error) {
	if s.panic {
		panic("extractor exploded")
	}
	if s.err != nil {
		return nil, s.err
	}
	return &models.ExtractionResult{Items: s.items, Count: len(s.items)}, nil
}

func newTestStorage(t *testing.T) interfaces.StorageManager {
	t.Helper()
	logger := arbor.NewLogger()
	mgr, err := badger.NewManager(logger, &common.BadgerConfig{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

// waitTerminal polls until the job settles or the deadline passes
func waitTerminal(t *testing.T, svc *Service, id string) *models.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, err := svc.GetJobStatus(context.Background(), id)
		require.NoError(t, err)
		if job.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not settle in time")
	return nil
}

func TestStartJobCompletes(t *testing.T) {
	storage := newTestStorage(t)
	extractor := &stubExtractor{items: []models.Item{
		models.NewItem(map[string]interface{}{"type": "post", "title": "hello"}),
		models.NewItem(map[string]interface{}{"title": "world"}),
	}}
	svc := NewService(arbor.NewLogger(), storage, extractor, "skool.com")

	job, err := svc.StartJob(context.Background(), &StartJobInput{
		Target: "https://www.skool.com/my-group",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusRunning, job.Status)
	assert.Equal(t, models.SectionDefault, job.Section)

	settled := waitTerminal(t, svc, job.ID)
	assert.Equal(t, models.JobStatusCompleted, settled.Status)
	assert.Equal(t, 2, settled.ItemCount)
	require.NotNil(t, settled.CompletedAt)

	items, err := svc.GetJobItems(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestStartJobFails(t *testing.T) {
	storage := newTestStorage(t)
	extractor := &stubExtractor{err: fmt.Errorf("actor run failed")}
	svc := NewService(arbor.NewLogger(), storage, extractor, "skool.com")

	job, err := svc.StartJob(context.Background(), &StartJobInput{
		Target:  "https://www.skool.com/my-group",
		Section: models.SectionCommunity,
	})
	require.NoError(t, err)

	settled := waitTerminal(t, svc, job.ID)
	assert.Equal(t, models.JobStatusFailed, settled.Status)
	assert.Equal(t, "actor run failed", settled.Error)

	items, err := svc.GetJobItems(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStartJobPanicDoesNotCrash(t *testing.T) {
	storage := newTestStorage(t)
	svc := NewService(arbor.NewLogger(), storage, &stubExtractor{panic: true}, "skool.com")

	job, err := svc.StartJob(context.Background(), &StartJobInput{
		Target: "https://www.skool.com/my-group",
	})
	require.NoError(t, err)

	// The panic is swallowed by the goroutine guard; the job stays running,
	// which is the documented orphan gap.
	time.Sleep(100 * time.Millisecond)
	got, err := svc.GetJobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusRunning, got.Status)
}

func TestStartJobValidation(t *testing.T) {
	storage := newTestStorage(t)
	svc := NewService(arbor.NewLogger(), storage, &stubExtractor{}, "skool.com")

	tests := []struct {
		name  string
		input *StartJobInput
	}{
		{"empty target", &StartJobInput{Target: ""}},
		{"wrong host", &StartJobInput{Target: "https://www.example.com/my-group"}},
		{"bad section", &StartJobInput{Target: "https://www.skool.com/g", Section: "forum"}},
		{"missing scheme", &StartJobInput{Target: "www.skool.com/my-group"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.StartJob(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, models.IsValidation(err))
		})
	}

	// Nothing persisted for rejected requests
	entries, err := svc.ListJobs(context.Background(), 50)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestConfiguredSourceDomain(t *testing.T) {
	storage := newTestStorage(t)
	extractor := &stubExtractor{items: []models.Item{models.NewItem(map[string]interface{}{"title": "x"})}}
	svc := NewService(arbor.NewLogger(), storage, extractor, "example.com")

	job, err := svc.StartJob(context.Background(), &StartJobInput{
		Target: "https://example.com/g/test",
	})
	require.NoError(t, err)

	settled := waitTerminal(t, svc, job.ID)
	assert.Equal(t, models.JobStatusCompleted, settled.Status)
}

func TestDeleteJob(t *testing.T) {
	storage := newTestStorage(t)
	extractor := &stubExtractor{items: []models.Item{models.NewItem(map[string]interface{}{"title": "x"})}}
	svc := NewService(arbor.NewLogger(), storage, extractor, "skool.com")

	job, err := svc.StartJob(context.Background(), &StartJobInput{
		Target: "https://www.skool.com/my-group",
	})
	require.NoError(t, err)
	waitTerminal(t, svc, job.ID)

	require.NoError(t, svc.DeleteJob(context.Background(), job.ID))

	_, err = svc.GetJobStatus(context.Background(), job.ID)
	assert.True(t, models.IsNotFound(err))

	err = svc.DeleteJob(context.Background(), job.ID)
	assert.True(t, models.IsNotFound(err))
}
