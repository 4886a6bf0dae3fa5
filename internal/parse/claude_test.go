package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const claudeSession = `{"type":"summary","summary":"old summary","leafUuid":"x"}
{"type":"user","uuid":"u-1","timestamp":"2024-03-15T10:30:00Z","message":{"role":"user","content":"please fix the flaky uploader retry test"}}
{"type":"assistant","uuid":"a-1","timestamp":"2024-03-15T10:30:05Z","message":{"role":"assistant","content":[{"type":"text","text":"Looking at it now."},{"type":"tool_use","name":"Read","input":{"file_path":"/src/upload.go"}}]}}
{"type":"file-history-snapshot","messageId":"s-1","snapshot":{}}
{"type":"user","uuid":"u-2","timestamp":"2024-03-15T10:31:00Z","message":{"role":"user","content":[{"type":"tool_result","content":"ok"}]}}
`

func writeSession(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadClaudeConversation(t *testing.T) {
	root := t.TempDir()
	projDir := filepath.Join(root, "projects", "-home-user-demo")
	require.NoError(t, os.MkdirAll(projDir, 0o755))
	path := writeSession(t, projDir, "abc-123.jsonl", claudeSession)

	conv, err := LoadClaudeConversation(path)
	require.NoError(t, err)
	require.NotNil(t, conv)

	// id is the filename stem, never a uuid from inside the file
	require.Equal(t, "abc-123", conv.ID)
	require.Equal(t, SourceClaude, conv.Source())
	require.Equal(t, "-home-user-demo", conv.Metadata["project"])

	require.Len(t, conv.Messages, 3)
	require.Equal(t, RoleUser, conv.Messages[0].Role)
	require.Equal(t, "please fix the flaky uploader retry test", conv.Messages[0].Content)
	require.Contains(t, conv.Messages[1].Content, "Looking at it now.")
	require.Contains(t, conv.Messages[1].Content, "[Tool: Read]")
	require.Contains(t, conv.Messages[2].Content, "[Tool Result: ok]")

	require.Equal(t, "2024-03-15T10:30:00Z", conv.CreateTime.UTC().Format("2006-01-02T15:04:05Z"))
	// update time comes from file mtime when available
	require.False(t, conv.UpdateTime.IsZero())

	require.Equal(t, "please fix the flaky uploader retry test", conv.Title)
}

func TestLoadClaudeConversationEmpty(t *testing.T) {
	dir := t.TempDir()
	path := writeSession(t, dir, "empty.jsonl", `{"type":"summary","summary":"nothing"}`+"\n")

	conv, err := LoadClaudeConversation(path)
	require.NoError(t, err)
	require.Nil(t, conv)
}

func TestLoadClaudeConversationSkipsBadLines(t *testing.T) {
	dir := t.TempDir()
	content := "not json at all\n" +
		`{"type":"user","uuid":"u-1","timestamp":"2024-01-01T00:00:00Z","message":{"role":"user","content":"still loads fine"}}` + "\n"
	path := writeSession(t, dir, "partial.jsonl", content)

	conv, err := LoadClaudeConversation(path)
	require.NoError(t, err)
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 1)
}

func TestLoadClaudeConversationsDir(t *testing.T) {
	dir := t.TempDir()
	writeSession(t, dir, "a.jsonl",
		`{"type":"user","uuid":"1","timestamp":"2024-01-01T00:00:00Z","message":{"role":"user","content":"older session content here"}}`+"\n")
	writeSession(t, dir, "b.jsonl",
		`{"type":"user","uuid":"2","timestamp":"2024-06-01T00:00:00Z","message":{"role":"user","content":"newer session content here"}}`+"\n")
	writeSession(t, dir, "broken.jsonl", "{{{\n")
	writeSession(t, dir, "notes.txt", "ignored\n")

	convs, err := LoadClaudeConversations(dir)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	// newest first
	require.Equal(t, "b", convs[0].ID)
	require.Equal(t, "a", convs[1].ID)
}

func TestRawEntries(t *testing.T) {
	dir := t.TempDir()
	path := writeSession(t, dir, "raw.jsonl", claudeSession)

	entries, err := RawEntries(path)
	require.NoError(t, err)
	// every decodable record survives, including summary and snapshot
	require.Len(t, entries, 5)
	require.Equal(t, "summary", entries[0]["type"])
	require.Equal(t, "file-history-snapshot", entries[3]["type"])
}

func TestClaudeProjectName(t *testing.T) {
	require.Equal(t, "-home-user-demo",
		claudeProjectName("/root/.claude/projects/-home-user-demo/abc.jsonl"))
	require.Equal(t, "", claudeProjectName("/tmp/abc.jsonl"))
}
