package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// Summarizer derives natural-language artifacts from extracted items via an
// AI provider. Both operations report token usage for cost diagnostics.
type Summarizer interface {
	// Summarize produces a structured digest of the items
	Summarize(ctx context.Context, items []models.Item) (*models.SummaryResult, error)

	// Report produces a narrative report from the items and an existing
	// summary. The summary may be persisted or transient; reports are
	// never stored.
	Report(ctx context.Context, items []models.Item, summary *models.SummaryResult) (*models.Report, error)
}
