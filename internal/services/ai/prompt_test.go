package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/colligo/internal/models"
)

func TestBuildContentFallbacks(t *testing.T) {
	items := []models.Item{
		models.NewItem(map[string]interface{}{"type": "post", "title": "A title", "description": "A description"}),
		models.NewItem(map[string]interface{}{"name": "A name", "content": "Some content"}),
		models.NewItem(map[string]interface{}{"text": "Just text"}),
	}

	content := buildContent(items)
	assert.Contains(t, content, "A title")
	assert.Contains(t, content, "A description")
	assert.Contains(t, content, "A name")
	assert.Contains(t, content, "Some content")
	assert.Contains(t, content, "Just text")
	assert.Contains(t, content, "Item 1 (post)")
	assert.Contains(t, content, "Item 3 (unknown)")
}

func TestBuildContentTruncation(t *testing.T) {
	big := strings.Repeat("x", 60000)
	items := []models.Item{
		models.NewItem(map[string]interface{}{"title": "one", "description": big}),
		models.NewItem(map[string]interface{}{"title": "two", "description": big}),
		models.NewItem(map[string]interface{}{"title": "three", "description": big}),
	}

	content := buildContent(items)
	assert.LessOrEqual(t, len(content), maxContentChars+len(truncationMarker))
	assert.True(t, strings.HasSuffix(content, truncationMarker))
}

func TestParseSummaryResponse(t *testing.T) {
	text := `{"summary":"the digest","key_points":["a","b"],"topics":["t"],"practical_insights":["i"]}`

	result, err := parseSummaryResponse(text, 123)
	require.NoError(t, err)
	assert.Equal(t, "the digest", result.Summary)
	assert.Equal(t, []string{"a", "b"}, result.KeyPoints)
	assert.Equal(t, []string{"t"}, result.Topics)
	assert.Equal(t, []string{"i"}, result.Insights)
	assert.Equal(t, 123, result.TokensUsed)
}

func TestParseSummaryResponseEmbeddedJSON(t *testing.T) {
	text := "Here is the analysis you asked for:\n\n" +
		`{"summary":"embedded","key_points":[],"topics":[],"practical_insights":[]}` +
		"\n\nLet me know if you need anything else."

	result, err := parseSummaryResponse(text, 5)
	require.NoError(t, err)
	assert.Equal(t, "embedded", result.Summary)
}

func TestParseSummaryResponseRejectsGarbage(t *testing.T) {
	_, err := parseSummaryResponse("no json here", 0)
	require.Error(t, err)

	_, err = parseSummaryResponse(`{"key_points":["missing summary"]}`, 0)
	require.Error(t, err)
}

func TestBuildReportPrompt(t *testing.T) {
	items := []models.Item{
		models.NewItem(map[string]interface{}{"title": "a"}),
		models.NewItem(map[string]interface{}{"title": "b"}),
	}
	summary := &models.SummaryResult{
		Summary:   "digest",
		KeyPoints: []string{"first point"},
		Topics:    []string{"alpha", "beta"},
	}

	prompt := buildReportPrompt(items, summary)
	assert.Contains(t, prompt, "2 extracted items")
	assert.Contains(t, prompt, "digest")
	assert.Contains(t, prompt, "first point")
	assert.Contains(t, prompt, "alpha, beta")
}
