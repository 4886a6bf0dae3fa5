package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const geminiCheckpoint = `[
  {"role": "user", "timestamp": "2024-05-01T08:00:00Z", "parts": [{"text": "summarize the release notes"}]},
  {"role": "model", "parts": [{"text": "Here is a summary."}, {"text": "Three changes landed."}]},
  {"role": "user", "message": "thanks, expand point two"},
  {"role": "system", "parts": [{"text": "dropped"}]}
]`

func TestLoadGeminiConversation(t *testing.T) {
	root := t.TempDir()
	sessionDir := filepath.Join(root, "session-42")
	require.NoError(t, os.MkdirAll(sessionDir, 0o755))
	path := writeSession(t, sessionDir, "checkpoint-1.json", geminiCheckpoint)

	conv, err := LoadGeminiConversation(path)
	require.NoError(t, err)
	require.NotNil(t, conv)

	// id is the session directory, not the checkpoint filename
	require.Equal(t, "session-42", conv.ID)
	require.Equal(t, SourceGemini, conv.Source())

	require.Len(t, conv.Messages, 3)
	require.Equal(t, RoleUser, conv.Messages[0].Role)
	require.Equal(t, RoleAssistant, conv.Messages[1].Role)
	require.Equal(t, "Here is a summary.\nThree changes landed.", conv.Messages[1].Content)
	require.Equal(t, "thanks, expand point two", conv.Messages[2].Content)

	// synthesized ids are distinct
	require.NotEqual(t, conv.Messages[0].ID, conv.Messages[1].ID)

	require.Equal(t, "2024-05-01T08:00:00Z", conv.CreateTime.UTC().Format("2006-01-02T15:04:05Z"))
	require.Equal(t, "summarize the release notes", conv.Title)
}

func TestLoadGeminiConversationsRoot(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"s1", "s2"} {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		writeSession(t, dir, "checkpoint-main.json", geminiCheckpoint)
	}
	writeSession(t, root, "stray.json", geminiCheckpoint) // not in a session dir

	convs, err := LoadGeminiConversations(root)
	require.NoError(t, err)
	require.Len(t, convs, 2)
}

func TestLoadGeminiConversationEmpty(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "s")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := writeSession(t, dir, "checkpoint-1.json", `[]`)

	conv, err := LoadGeminiConversation(path)
	require.NoError(t, err)
	require.Nil(t, conv)
}

func TestDetectFormat(t *testing.T) {
	dir := t.TempDir()

	require.Equal(t, FormatClaude, DetectFormat(dir))
	require.Equal(t, FormatClaude, DetectFormat(filepath.Join(dir, "session.jsonl")))
	require.Equal(t, FormatGemini, DetectFormat(filepath.Join(dir, "checkpoint-5.json")))
	require.Equal(t, FormatChatGPT, DetectFormat(filepath.Join(dir, "conversations.json")))

	gem := filepath.Join(dir, ".gemini", "tmp")
	require.NoError(t, os.MkdirAll(gem, 0o755))
	require.Equal(t, FormatGemini, DetectFormat(gem))
}
