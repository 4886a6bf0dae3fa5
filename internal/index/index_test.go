package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sessionFixture = `{"type":"user","uuid":"u-1","timestamp":"2024-03-15T10:30:00Z","message":{"role":"user","content":"please fix the websocket reconnect logic"}}
{"type":"assistant","uuid":"a-1","timestamp":"2024-03-15T10:31:00Z","message":{"role":"assistant","content":[{"type":"text","text":"The reconnect backoff was missing jitter."}]}}
`

func setupRoot(t *testing.T) (claudeRoot, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	claudeRoot = filepath.Join(dir, "projects")
	projDir := filepath.Join(claudeRoot, "-home-user-app")
	require.NoError(t, os.MkdirAll(projDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projDir, "sess-1.jsonl"), []byte(sessionFixture), 0o644))
	return claudeRoot, filepath.Join(dir, "test.db")
}

func TestIndexAll(t *testing.T) {
	claudeRoot, dbPath := setupRoot(t)

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	stats, err := IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, stats.Scanned)
	require.Equal(t, 1, stats.Updated)
	require.Equal(t, 0, stats.Errors)

	n, err := db.ConversationCount()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	m, err := db.MessageCount()
	require.NoError(t, err)
	require.Equal(t, 2, m)

	conv, err := db.GetConversationByKey("claude:sess-1")
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Equal(t, "claude", conv.Source)
	require.Equal(t, "-home-user-app", conv.Project)
}

func TestIndexAllSkipsFreshFiles(t *testing.T) {
	claudeRoot, dbPath := setupRoot(t)

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)

	stats, err := IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)
	require.Equal(t, 0, stats.Updated)
	require.Equal(t, 1, stats.Skipped)
}

func TestIndexAllPrunesDeletedFiles(t *testing.T) {
	claudeRoot, dbPath := setupRoot(t)

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(claudeRoot, "-home-user-app", "sess-1.jsonl")))

	stats, err := IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pruned)

	n, err := db.ConversationCount()
	require.NoError(t, err)
	require.Equal(t, 0, n)
}

func TestGetMessageWindow(t *testing.T) {
	claudeRoot, dbPath := setupRoot(t)

	db, err := OpenDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)

	msgs, hitIdx, startPos, total, err := db.GetMessageWindow("claude:sess-1", 1, 5)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Equal(t, 0, startPos)
	require.Len(t, msgs, 2)
	require.Equal(t, 1, hitIdx)
	require.Equal(t, "assistant", msgs[hitIdx].Role)
}
