package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapLine(t *testing.T) {
	t.Run("no width means no wrap", func(t *testing.T) {
		lines := wrapLine(strings.Repeat("a", 200), 0)
		require.Len(t, lines, 1)
	})

	t.Run("wraps at visible width", func(t *testing.T) {
		lines := wrapLine(strings.Repeat("a", 25), 10)
		require.Equal(t, []string{
			strings.Repeat("a", 10),
			strings.Repeat("a", 10),
			strings.Repeat("a", 5),
		}, lines)
	})

	t.Run("ansi escapes are zero width", func(t *testing.T) {
		line := colorUser + strings.Repeat("a", 10) + colorReset
		lines := wrapLine(line, 10)
		require.Len(t, lines, 1)
	})

	t.Run("wide runes count double", func(t *testing.T) {
		lines := wrapLine(strings.Repeat("字", 10), 10)
		require.Len(t, lines, 2)
	})

	t.Run("empty line survives", func(t *testing.T) {
		require.Equal(t, []string{""}, wrapLine("", 10))
	})
}

func TestHighlightKeywords(t *testing.T) {
	out := highlightKeywords("the quick fox", "quick")
	require.Equal(t, "the "+colorBoldRed+"quick"+colorReset+" fox", out)

	t.Run("operators are not highlighted", func(t *testing.T) {
		out := highlightKeywords("fish AND chips", "fish AND")
		require.Contains(t, out, colorBoldRed+"fish"+colorReset)
		require.NotContains(t, out, colorBoldRed+"AND")
	})

	t.Run("case insensitive match keeps original case", func(t *testing.T) {
		out := highlightKeywords("The Quick fox", "quick")
		require.Contains(t, out, colorBoldRed+"Quick"+colorReset)
	})

	t.Run("empty query is a no-op", func(t *testing.T) {
		require.Equal(t, "text", highlightKeywords("text", ""))
	})
}
