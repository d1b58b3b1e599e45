package models

import "time"

// ItemKindUnknown tags items whose payload does not self-describe
const ItemKindUnknown = "unknown"

// Item is one extracted record belonging to a job. The payload shape is
// controlled by the remote extractor, not by us, so content is kept as a
// string-keyed map of dynamic values and passed through untyped.
type Item struct {
	Content     map[string]interface{} `json:"content"`
	Kind        string                 `json:"type"`
	ExtractedAt time.Time              `json:"scraped_at"`
}

// NewItem wraps a raw extractor payload, deriving the kind tag from the
// payload's own "type" field when present.
func NewItem(content map[string]interface{}) Item {
	kind := ItemKindUnknown
	if t, ok := content["type"].(string); ok && t != "" {
		kind = t
	}
	return Item{
		Content:     content,
		Kind:        kind,
		ExtractedAt: time.Now(),
	}
}

// ExtractionOptions configure a single extractor run
type ExtractionOptions struct {
	Section         string `json:"tab"`
	IncludeComments bool   `json:"include_comments"`
	CommentsLimit   int    `json:"comments_limit"`
	MaxItems        int    `json:"max_items"`
}

// Extraction option defaults, matching the actor's expected input
const (
	DefaultCommentsLimit = 20
	DefaultMaxItems      = 10000
)

// Normalized returns a copy with defaults filled in for zero-valued fields
func (o *ExtractionOptions) Normalized() *ExtractionOptions {
	opts := &ExtractionOptions{
		Section:         o.Section,
		IncludeComments: o.IncludeComments,
		CommentsLimit:   o.CommentsLimit,
		MaxItems:        o.MaxItems,
	}
	if opts.Section == "" {
		opts.Section = SectionDefault
	}
	if opts.CommentsLimit <= 0 {
		opts.CommentsLimit = DefaultCommentsLimit
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = DefaultMaxItems
	}
	return opts
}

// ExtractionResult is the settled output of a successful extractor run
type ExtractionResult struct {
	Items []Item `json:"items"`
	Count int    `json:"count"`
}
