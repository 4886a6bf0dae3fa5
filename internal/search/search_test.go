package search

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aicb-dev/aicb/internal/index"
)

const sessionFixture = `{"type":"user","uuid":"u-1","timestamp":"2024-03-15T10:30:00Z","message":{"role":"user","content":"please fix the websocket reconnect logic"}}
{"type":"assistant","uuid":"a-1","timestamp":"2024-03-15T10:31:00Z","message":{"role":"assistant","content":[{"type":"text","text":"The reconnect backoff was missing jitter. 重连逻辑已修复"}]}}
`

func setupIndexed(t *testing.T) *index.DB {
	t.Helper()
	dir := t.TempDir()
	claudeRoot := filepath.Join(dir, "projects")
	projDir := filepath.Join(claudeRoot, "-home-user-app")
	require.NoError(t, os.MkdirAll(projDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projDir, "sess-1.jsonl"), []byte(sessionFixture), 0o644))

	db, err := index.OpenDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = index.IndexAll(db, claudeRoot, "", "")
	require.NoError(t, err)
	return db
}

func TestSearchFTS(t *testing.T) {
	db := setupIndexed(t)

	results, err := Search(db, Options{Query: "websocket"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "claude:sess-1", results[0].ConvKey)
	require.Equal(t, "user", results[0].Role)
	require.Contains(t, results[0].Snippet, ">>>")
}

func TestSearchRoleFilter(t *testing.T) {
	db := setupIndexed(t)

	results, err := Search(db, Options{Query: "reconnect", Role: "assistant"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "assistant", results[0].Role)
}

func TestSearchDeduplicatesByConversation(t *testing.T) {
	db := setupIndexed(t)

	// "reconnect" matches both messages; only the best hit survives
	results, err := Search(db, Options{Query: "reconnect"})
	require.NoError(t, err)
	require.Len(t, results, 1)
}

func TestSearchCJKFallsBackToLike(t *testing.T) {
	db := setupIndexed(t)

	results, err := Search(db, Options{Query: "重连"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Contains(t, results[0].Snippet, ">>>重连<<<")
}

func TestSearchNoResults(t *testing.T) {
	db := setupIndexed(t)

	results, err := Search(db, Options{Query: "zeppelin"})
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestMakeSnippet(t *testing.T) {
	text := "aaaa needle bbbb"
	snip := makeSnippet(text, "needle", 30)
	require.Equal(t, "aaaa >>>needle<<< bbbb", snip)

	snip = makeSnippet("no match here", "zzz", 3)
	require.Equal(t, "no mat...", snip)
}
