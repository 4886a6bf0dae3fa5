package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScanRoots(t *testing.T) {
	dir := t.TempDir()

	claudeRoot := filepath.Join(dir, "claude")
	projDir := filepath.Join(claudeRoot, "-home-user-app")
	require.NoError(t, os.MkdirAll(projDir, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(projDir, "subagents"), 0o755))
	write := func(path string) {
		require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))
	}
	write(filepath.Join(projDir, "sess.jsonl"))
	write(filepath.Join(projDir, "sessions-index.jsonl")) // excluded
	write(filepath.Join(projDir, "subagents", "sub.jsonl")) // excluded dir
	write(filepath.Join(projDir, "notes.txt"))

	geminiRoot := filepath.Join(dir, "gemini")
	sessDir := filepath.Join(geminiRoot, "s1")
	require.NoError(t, os.MkdirAll(sessDir, 0o755))
	write(filepath.Join(sessDir, "checkpoint-1.json"))
	write(filepath.Join(sessDir, "logs.json")) // not a checkpoint

	chatgptPath := filepath.Join(dir, "conversations.json")
	write(chatgptPath)

	files, err := ScanRoots(claudeRoot, geminiRoot, chatgptPath)
	require.NoError(t, err)

	bySource := map[string]int{}
	for _, f := range files {
		bySource[f.Source]++
		require.NotZero(t, f.Mtime)
		require.NotZero(t, f.Size)
	}
	require.Equal(t, 1, bySource["claude"])
	require.Equal(t, 1, bySource["gemini"])
	require.Equal(t, 1, bySource["chatgpt"])
}

func TestScanRootsMissingRoots(t *testing.T) {
	files, err := ScanRoots("/nonexistent/a", "/nonexistent/b", "")
	require.NoError(t, err)
	require.Empty(t, files)
}
