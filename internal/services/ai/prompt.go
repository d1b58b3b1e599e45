// Package ai derives summaries and reports from extracted items through a
// configurable language-model provider.
package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/colligo/internal/models"
)

// maxContentChars caps the item digest sent to the model. Oversized digests
// are cut and marked so the model knows it saw a prefix.
const maxContentChars = 100000

const truncationMarker = "\n\n[Content truncated...]"

// summaryResponse is the JSON document the summarize prompt asks for
type summaryResponse struct {
	Summary           string   `json:"summary"`
	KeyPoints         []string `json:"key_points"`
	Topics            []string `json:"topics"`
	PracticalInsights []string `json:"practical_insights"`
}

const summarySystemPrompt = "You are an expert content analyst. You produce concise, " +
	"structured summaries of community content. Always respond with a single JSON object " +
	"with the keys \"summary\", \"key_points\", \"topics\" and \"practical_insights\". " +
	"\"summary\" is a string, the other three are arrays of strings."

const reportSystemPrompt = "You are an expert analyst. You write clear, well-structured " +
	"narrative reports in markdown based on community content and an existing summary."

// buildContent flattens the item payloads into a text digest. Each item
// contributes its title and body text, falling back through the field names
// different item kinds use.
func buildContent(items []models.Item) string {
	var b strings.Builder

	for i, item := range items {
		title := firstString(item.Content, "title", "name")
		body := firstString(item.Content, "description", "content", "text")

		b.WriteString(fmt.Sprintf("--- Item %d (%s) ---\n", i+1, item.Kind))
		if title != "" {
			b.WriteString(title)
			b.WriteString("\n")
		}
		if body != "" {
			b.WriteString(body)
			b.WriteString("\n")
		}
		b.WriteString("\n")

		if b.Len() > maxContentChars {
			break
		}
	}

	content := b.String()
	if len(content) > maxContentChars {
		content = content[:maxContentChars] + truncationMarker
	}
	return content
}

func firstString(content map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := content[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// buildSummaryPrompt assembles the user prompt for the summarize operation
func buildSummaryPrompt(items []models.Item) string {
	return fmt.Sprintf(
		"Analyze the following %d items extracted from a community group and summarize them.\n\n%s",
		len(items), buildContent(items))
}

// buildReportPrompt assembles the user prompt for the report operation
func buildReportPrompt(items []models.Item, summary *models.SummaryResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a detailed markdown report about a community group based on %d extracted items and the summary below.\n\n", len(items))
	fmt.Fprintf(&b, "Summary: %s\n\n", summary.Summary)
	if len(summary.KeyPoints) > 0 {
		fmt.Fprintf(&b, "Key points:\n")
		for _, p := range summary.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}
	if len(summary.Topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n\n", strings.Join(summary.Topics, ", "))
	}
	b.WriteString("The report should cover the main themes, notable discussions and actionable takeaways.")

	return b.String()
}

// parseSummaryResponse decodes the model output into a summary result.
// Providers that cannot enforce JSON output may wrap the document in prose,
// so the first balanced JSON object in the text is used.
func parseSummaryResponse(text string, tokensUsed int) (*models.SummaryResult, error) {
	doc := extractJSONObject(text)
	if doc == "" {
		return nil, fmt.Errorf("no JSON object in model response")
	}

	var parsed summaryResponse
	if err := json.Unmarshal([]byte(doc), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	if parsed.Summary == "" {
		return nil, fmt.Errorf("model response is missing the summary field")
	}

	return &models.SummaryResult{
		Summary:    parsed.Summary,
		KeyPoints:  parsed.KeyPoints,
		Topics:     parsed.Topics,
		Insights:   parsed.PracticalInsights,
		TokensUsed: tokensUsed,
	}, nil
}

// extractJSONObject returns the first balanced top-level JSON object in text
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}
