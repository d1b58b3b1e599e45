package extraction

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// Service implements the Extractor interface against the Apify actor API.
// Extract blocks until the remote run settles or the run timeout elapses.
type Service struct {
	client       *Client
	actorID      string
	pollInterval time.Duration
	runTimeout   time.Duration
	logger       arbor.ILogger
}

// NewService creates a new extraction service from configuration
func NewService(logger arbor.ILogger, config *common.ApifyConfig) (interfaces.Extractor, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("apify api key is required")
	}
	if config.ActorID == "" {
		return nil, fmt.Errorf("apify actor id is required")
	}

	opts := []ClientOption{WithLogger(logger)}
	if config.BaseURL != "" {
		opts = append(opts, WithBaseURL(config.BaseURL))
	}

	pollInterval := 5 * time.Second
	if config.PollInterval != "" {
		if d, err := time.ParseDuration(config.PollInterval); err == nil {
			pollInterval = d
		}
	}
	runTimeout := 30 * time.Minute
	if config.RunTimeout != "" {
		if d, err := time.ParseDuration(config.RunTimeout); err == nil {
			runTimeout = d
		}
	}

	return &Service{
		client:       NewClient(config.APIKey, opts...),
		actorID:      config.ActorID,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
		logger:       logger,
	}, nil
}

// NewServiceWithClient creates an extraction service around an existing client
func NewServiceWithClient(logger arbor.ILogger, client *Client, actorID string, pollInterval, runTimeout time.Duration) interfaces.Extractor {
	return &Service{
		client:       client,
		actorID:      actorID,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
		logger:       logger,
	}
}

func (s *Service) Extract(ctx context.Context, target string, opts *models.ExtractionOptions) (*models.ExtractionResult, error) {
	opts = opts.Normalized()

	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	input := s.buildActorInput(target, opts)

	run, err := s.client.StartRun(ctx, s.actorID, input)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Str("target", target).
		Str("tab", opts.Section).
		Msg("Actor run started")

	run, err = s.waitForRun(ctx, run.ID)
	if err != nil {
		return nil, err
	}

	if run.Status != runStatusSucceeded {
		message := run.StatusMessage
		if message == "" {
			message = run.Status
		}
		return nil, fmt.Errorf("actor run %s finished with status %s: %s", run.ID, run.Status, message)
	}

	raw, err := s.client.GetDatasetItems(ctx, run.DefaultDatasetID)
	if err != nil {
		return nil, err
	}

	items := make([]models.Item, 0, len(raw))
	for _, content := range raw {
		items = append(items, models.NewItem(content))
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Int("items", len(items)).
		Msg("Actor run completed")

	return &models.ExtractionResult{
		Items: items,
		Count: len(items),
	}, nil
}

// buildActorInput assembles the actor input document the extraction actor
// expects, with the concurrency and proxy knobs it was tuned for.
func (s *Service) buildActorInput(target string, opts *models.ExtractionOptions) map[string]interface{} {
	return map[string]interface{}{
		"startUrls":       []map[string]string{{"url": target}},
		"tab":             opts.Section,
		"includeComments": opts.IncludeComments,
		"commentsLimit":   opts.CommentsLimit,
		"maxItems":        opts.MaxItems,
		"maxConcurrency":  100,
		"minConcurrency":  1,
		"storeName":       "media",
		"proxy": map[string]interface{}{
			"useApifyProxy": true,
		},
	}
}

// waitForRun polls the run until it reaches a terminal status
func (s *Service) waitForRun(ctx context.Context, runID string) (*actorRun, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		run, err := s.client.GetRun(ctx, runID)
		if err != nil {
			return nil, err
		}

		switch run.Status {
		case runStatusSucceeded, runStatusFailed, runStatusAborted, runStatusTimedOut:
			return run, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("actor run %s did not finish: %w", runID, ctx.Err())
		case <-ticker.C:
		}
	}
}
