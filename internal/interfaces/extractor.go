package interfaces

import (
	"context"

	"github.com/ternarybob/colligo/internal/models"
)

// Extractor runs a remote extraction against a group target and returns the
// collected items. Implementations block until the remote run settles, so
// callers dispatch them on detached goroutines.
type Extractor interface {
	Extract(ctx context.Context, target string, opts *models.ExtractionOptions) (*models.ExtractionResult, error)
}
