package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/models"
)

// fakeApify simulates the run/poll/dataset endpoints of the actor API
type fakeApify struct {
	finalStatus string
	polls       int32
	lastInput   map[string]interface{}
}

func (f *fakeApify) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/acts/test-actor/runs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		json.NewDecoder(r.Body).Decode(&f.lastInput)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"id":               "run-1",
				"status":           "RUNNING",
				"defaultDatasetId": "ds-1",
			},
		})
	})
	mux.HandleFunc("/v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		status := "RUNNING"
		if atomic.AddInt32(&f.polls, 1) >= 2 {
			status = f.finalStatus
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"id":               "run-1",
				"status":           status,
				"defaultDatasetId": "ds-1",
				"statusMessage":    "boom",
			},
		})
	})
	mux.HandleFunc("/v2/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"type": "post", "title": "first"},
			{"title": "second"},
		})
	})
	return mux
}

func newTestService(t *testing.T, finalStatus string) (*fakeApify, *Service) {
	t.Helper()

	fake := &fakeApify{finalStatus: finalStatus}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	logger := arbor.NewLogger()
	client := NewClient("test-key", WithBaseURL(server.URL), WithLogger(logger), WithRateLimit(100))
	svc := NewServiceWithClient(logger, client, "test-actor", 10*time.Millisecond, 5*time.Second)
	return fake, svc.(*Service)
}

func TestExtractSuccess(t *testing.T) {
	fake, svc := newTestService(t, "SUCCEEDED")

	result, err := svc.Extract(context.Background(), "https://www.skool.com/my-group", &models.ExtractionOptions{
		Section:         models.SectionCommunity,
		IncludeComments: true,
		CommentsLimit:   5,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "post", result.Items[0].Kind)
	assert.Equal(t, models.ItemKindUnknown, result.Items[1].Kind)

	// Actor input carries the request options and defaults
	assert.Equal(t, "community", fake.lastInput["tab"])
	assert.Equal(t, true, fake.lastInput["includeComments"])
	assert.Equal(t, float64(5), fake.lastInput["commentsLimit"])
	assert.Equal(t, float64(models.DefaultMaxItems), fake.lastInput["maxItems"])
	startURLs, ok := fake.lastInput["startUrls"].([]interface{})
	require.True(t, ok)
	require.Len(t, startURLs, 1)
}

func TestExtractRunFailure(t *testing.T) {
	_, svc := newTestService(t, "FAILED")

	_, err := svc.Extract(context.Background(), "https://www.skool.com/my-group", &models.ExtractionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FAILED")
	assert.Contains(t, err.Error(), "boom")
}

func TestExtractTimeout(t *testing.T) {
	fake := &fakeApify{finalStatus: "RUNNING"}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	logger := arbor.NewLogger()
	client := NewClient("test-key", WithBaseURL(server.URL), WithLogger(logger), WithRateLimit(100))
	svc := NewServiceWithClient(logger, client, "test-actor", 10*time.Millisecond, 100*time.Millisecond)

	_, err := svc.Extract(context.Background(), "https://www.skool.com/my-group", &models.ExtractionOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not finish")
}

func TestNewServiceRequiresCredentials(t *testing.T) {
	logger := arbor.NewLogger()

	_, err := NewService(logger, &common.ApifyConfig{ActorID: "actor"})
	require.Error(t, err)

	_, err = NewService(logger, &common.ApifyConfig{APIKey: "key"})
	require.Error(t, err)
}
