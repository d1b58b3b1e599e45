package ai

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/colligo/internal/common"
	"github.com/ternarybob/colligo/internal/interfaces"
)

// NewSummarizer creates the configured AI provider
func NewSummarizer(logger arbor.ILogger, config *common.AIConfig) (interfaces.Summarizer, error) {
	switch config.Provider {
	case common.AIProviderOpenAI, "":
		return NewOpenAIService(logger, &config.OpenAI)
	case common.AIProviderClaude:
		return NewClaudeService(logger, &config.Claude)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s (must be 'openai' or 'claude')", config.Provider)
	}
}
