package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// DefaultClaudeModel is used when no model is configured
const DefaultClaudeModel = "claude-haiku-3-5-20241022"

// ClaudeService implements the Summarizer interface with the Anthropic
// messages API. Claude has no structured-output switch, so the summary JSON
// is extracted from the response text.
type ClaudeService struct {
	client    anthropic.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewClaudeService creates a new Claude summarizer from configuration
func NewClaudeService(logger arbor.ILogger, config *common.ClaudeConfig) (interfaces.Summarizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}

	model := config.Model
	if model == "" {
		model = DefaultClaudeModel
	}

	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	timeout := DefaultTimeout
	if config.Timeout != "" {
		d, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
		}
		timeout = d
	}

	service := &ClaudeService{
		client:    anthropic.NewClient(option.WithAPIKey(config.APIKey)),
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
		logger:    logger,
	}

	logger.Debug().
		Str("model", model).
		Int("max_tokens", maxTokens).
		Msg("Claude summarizer initialized")

	return service, nil
}

func (s *ClaudeService) Summarize(ctx context.Context, items []models.Item) (*models.SummaryResult, error) {
	text, tokensUsed, err := s.complete(ctx, summarySystemPrompt, buildSummaryPrompt(items))
	if err != nil {
		return nil, err
	}

	result, err := parseSummaryResponse(text, tokensUsed)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("model", s.model).
		Int("tokens_used", tokensUsed).
		Msg("Summary generated")

	return result, nil
}

func (s *ClaudeService) Report(ctx context.Context, items []models.Item, summary *models.SummaryResult) (*models.Report, error) {
	text, tokensUsed, err := s.complete(ctx, reportSystemPrompt, buildReportPrompt(items, summary))
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("model", s.model).
		Int("tokens_used", tokensUsed).
		Msg("Report generated")

	return &models.Report{
		Report:     text,
		TokensUsed: tokensUsed,
	}, nil
}

func (s *ClaudeService) complete(ctx context.Context, system, prompt string) (string, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.model),
		MaxTokens: int64(s.maxTokens),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", 0, fmt.Errorf("claude API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", 0, fmt.Errorf("no response generated from claude API")
	}

	tokensUsed := int(resp.Usage.InputTokens + resp.Usage.OutputTokens)
	return text.String(), tokensUsed, nil
}
