package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

const (
	// DefaultOpenAIModel is used when no model is configured
	DefaultOpenAIModel = "gpt-4o-mini"

	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 2 * time.Minute
)

// OpenAIService implements the Summarizer interface with OpenAI chat completions
type OpenAIService struct {
	client    openai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    arbor.ILogger
}

// NewOpenAIService creates a new OpenAI summarizer from configuration
func NewOpenAIService(logger arbor.ILogger, config *common.OpenAIConfig) (interfaces.Summarizer, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	timeout := DefaultTimeout
	if config.Timeout != "" {
		d, err := time.ParseDuration(config.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration '%s': %w", config.Timeout, err)
		}
		timeout = d
	}

	service := &OpenAIService{
		client:    openai.NewClient(option.WithAPIKey(config.APIKey)),
		model:     model,
		maxTokens: config.MaxTokens,
		timeout:   timeout,
		logger:    logger,
	}

	logger.Debug().
		Str("model", model).
		Msg("OpenAI summarizer initialized")

	return service, nil
}

func (s *OpenAIService) Summarize(ctx context.Context, items []models.Item) (*models.SummaryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(summarySystemPrompt),
			openai.UserMessage(buildSummaryPrompt(items)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	}
	if s.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(s.maxTokens))
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	tokensUsed := int(completion.Usage.TotalTokens)
	result, err := parseSummaryResponse(completion.Choices[0].Message.Content, tokensUsed)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("model", s.model).
		Int("tokens_used", tokensUsed).
		Msg("Summary generated")

	return result, nil
}

func (s *OpenAIService) Report(ctx context.Context, items []models.Item, summary *models.SummaryResult) (*models.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reportSystemPrompt),
			openai.UserMessage(buildReportPrompt(items, summary)),
		},
	}
	if s.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(s.maxTokens))
	}

	completion, err := s.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	tokensUsed := int(completion.Usage.TotalTokens)

	s.logger.Info().
		Str("model", s.model).
		Int("tokens_used", tokensUsed).
		Msg("Report generated")

	return &models.Report{
		Report:     completion.Choices[0].Message.Content,
		TokensUsed: tokensUsed,
	}, nil
}
