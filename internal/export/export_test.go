package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aicb-dev/aicb/internal/parse"
)

func testConv(id string, update time.Time) *parse.Conversation {
	create := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &parse.Conversation{
		ID:         id,
		Title:      "Fix the uploader",
		CreateTime: create,
		UpdateTime: update,
		Messages: []parse.Message{
			{ID: "m1", Role: parse.RoleUser, Content: "please fix the uploader", CreateTime: create},
			{ID: "m2", Role: parse.RoleAssistant, Content: "import os\nimport sys\ndone"},
		},
	}
}

func TestExportMarkdown(t *testing.T) {
	conv := testConv("c1", time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC))
	out, err := New(nil).Export(conv, FormatMarkdown)
	require.NoError(t, err)

	require.Contains(t, out, "# Fix the uploader")
	require.Contains(t, out, "**Session ID:** c1")
	require.Contains(t, out, "**Messages:** 2")
	require.Contains(t, out, "## 👤 USER")
	require.Contains(t, out, "## 🤖 ASSISTANT")
	// multi-line content with code indicators gets fenced
	require.Contains(t, out, "```\nimport os\nimport sys\ndone\n```")
}

func TestExportText(t *testing.T) {
	conv := testConv("c1", time.Now())
	out, err := New(nil).Export(conv, FormatText)
	require.NoError(t, err)

	require.Contains(t, out, "Conversation: Fix the uploader")
	require.Contains(t, out, "USER:")
	require.Contains(t, out, "ASSISTANT:")
}

func TestExportJSON(t *testing.T) {
	conv := testConv("c1", time.Now())
	out, err := New(nil).Export(conv, FormatJSON)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "c1", doc["id"])

	msgs := doc["messages"].([]any)
	require.Len(t, msgs, 2)
	// unknown message timestamp serializes as null, not zero
	m2 := msgs[1].(map[string]any)
	require.Nil(t, m2["create_time"])
	m1 := msgs[0].(map[string]any)
	require.NotNil(t, m1["create_time"])
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "markdown", "json"} {
		f, err := ParseFormat(s)
		require.NoError(t, err)
		require.Equal(t, Format(s), f)
	}
	_, err := ParseFormat("pdf")
	require.Error(t, err)
}

func TestCacheHitAndStaleness(t *testing.T) {
	cache := NewCache(10)
	exp := New(cache)
	update := time.Now().Add(-time.Hour)
	conv := testConv("c1", update)

	_, err := exp.Export(conv, FormatText)
	require.NoError(t, err)
	_, err = exp.Export(conv, FormatText)
	require.NoError(t, err)

	stats := exp.CacheStats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)

	// same id and format but advanced update time must re-render
	conv.UpdateTime = time.Now().Add(time.Hour)
	_, err = exp.Export(conv, FormatText)
	require.NoError(t, err)
	require.Equal(t, int64(2), exp.CacheStats().Misses)
}

func TestCacheEvictsOldest(t *testing.T) {
	cache := NewCache(2)
	old := time.Now().Add(-time.Hour)

	cache.Put(Key{ID: "a", Format: FormatText}, "a")
	cache.Put(Key{ID: "b", Format: FormatText}, "b")
	cache.Put(Key{ID: "c", Format: FormatText}, "c")

	stats := cache.Stats()
	require.Equal(t, 2, stats.Size)
	require.Equal(t, int64(1), stats.Evictions)

	// "a" was the oldest insertion
	_, ok := cache.Get(Key{ID: "a", Format: FormatText}, old)
	require.False(t, ok)
	_, ok = cache.Get(Key{ID: "c", Format: FormatText}, old)
	require.True(t, ok)
}

func TestCacheFormatsAreDistinct(t *testing.T) {
	cache := NewCache(10)
	old := time.Now().Add(-time.Hour)

	cache.Put(Key{ID: "a", Format: FormatText}, "text out")
	_, ok := cache.Get(Key{ID: "a", Format: FormatJSON}, old)
	require.False(t, ok)
}
