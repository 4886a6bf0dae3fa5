package export

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestFoldString(t *testing.T) {
	t.Run("short strings untouched", func(t *testing.T) {
		s := numberedLines(50)
		require.Equal(t, s, foldString(s, 50))
	})

	t.Run("long strings keep head and tail", func(t *testing.T) {
		folded := foldString(numberedLines(60), 50)
		lines := strings.Split(folded, "\n")
		require.Len(t, lines, 11)
		require.Equal(t, "line 1", lines[0])
		require.Equal(t, "line 5", lines[4])
		require.Equal(t, "(50 lines folded)", lines[5])
		require.Equal(t, "line 56", lines[6])
		require.Equal(t, "line 60", lines[10])
	})
}

func alignedEntries() []map[string]any {
	return []map[string]any{
		{
			"type":      "user",
			"timestamp": "2024-03-15T10:30:00Z",
			"message": map[string]any{
				"role":    "user",
				"content": "run the tests please",
			},
		},
		{
			"type":      "assistant",
			"timestamp": "2024-03-15T10:30:10Z",
			"message": map[string]any{
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "text", "text": "Running them now."},
					map[string]any{"type": "tool_use", "name": "Bash", "input": map[string]any{
						"command": "go test ./...",
					}},
				},
				"usage": map[string]any{"input_tokens": float64(120), "output_tokens": float64(45)},
			},
		},
		{
			"type": "user",
			"message": map[string]any{
				"role": "user",
				"content": []any{
					map[string]any{"type": "tool_result", "content": numberedLines(60)},
				},
			},
			"toolUseResult": map[string]any{"stdout": numberedLines(60), "stderr": "boom"},
		},
		{"type": "file-history-snapshot", "snapshot": map[string]any{}},
	}
}

func TestExportAlignedLineParity(t *testing.T) {
	jsonDoc, textDoc := ExportAligned(alignedEntries(), 50)

	jsonLines := strings.Split(jsonDoc, "\n")
	textLines := strings.Split(textDoc, "\n")
	require.Equal(t, len(jsonLines), len(textLines))

	// every separator in the text pane pairs with a blank JSON line
	for i, l := range textLines {
		if l == alignedSeparator {
			require.Equal(t, "", jsonLines[i], "line %d", i)
		}
	}

	require.True(t, strings.HasSuffix(jsonDoc, "\n"))
	require.True(t, strings.HasSuffix(textDoc, "\n"))
}

func TestExportAlignedDeterministic(t *testing.T) {
	j1, t1 := ExportAligned(alignedEntries(), 50)
	j2, t2 := ExportAligned(alignedEntries(), 50)
	require.Equal(t, j1, j2)
	require.Equal(t, t1, t2)
}

func TestExportAlignedFoldsLongOutput(t *testing.T) {
	jsonDoc, textDoc := ExportAligned(alignedEntries(), 50)

	require.Contains(t, jsonDoc, "(50 lines folded)")
	require.Contains(t, textDoc, "(50 lines folded)")
	require.NotContains(t, jsonDoc, "line 30")
	require.NotContains(t, textDoc, "line 30")
	require.Contains(t, textDoc, "line 60")
}

func TestExportAlignedUsageCollapses(t *testing.T) {
	jsonDoc, _ := ExportAligned(alignedEntries(), 50)
	require.Contains(t, jsonDoc, "(usage: input_tokens=120 output_tokens=45)")
	require.NotContains(t, jsonDoc, `"input_tokens": 120`)
}

func TestExportAlignedTextRendering(t *testing.T) {
	_, textDoc := ExportAligned(alignedEntries(), 50)

	require.Contains(t, textDoc, "## 👤 USER [2024-03-15 10:30]")
	require.Contains(t, textDoc, "## 🤖 ASSISTANT [2024-03-15 10:30]")
	require.Contains(t, textDoc, "run the tests please")
	require.Contains(t, textDoc, "[Tool: Bash]")
	require.Contains(t, textDoc, "  command: go test ./...")
	require.Contains(t, textDoc, "[Tool Result]")
	require.Contains(t, textDoc, "--- [snapshot] ---")
	require.Contains(t, textDoc, "  [stderr]")
	require.Contains(t, textDoc, "  boom")
}

func TestExportAlignedDoesNotMutateInput(t *testing.T) {
	entries := alignedEntries()
	ExportAligned(entries, 50)

	msg := entries[1]["message"].(map[string]any)
	usage, ok := msg["usage"].(map[string]any)
	require.True(t, ok, "usage block must stay a map on the caller's entry")
	require.Equal(t, float64(120), usage["input_tokens"])

	result := entries[2]["toolUseResult"].(map[string]any)
	require.Len(t, strings.Split(result["stdout"].(string), "\n"), 60)
}
