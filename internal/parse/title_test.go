package parse

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func userMsg(content string) Message {
	return Message{ID: "u1", Role: RoleUser, Content: content}
}

func TestGenerateTitleFromUserMessage(t *testing.T) {
	msgs := []Message{
		userMsg("hi"),
		userMsg("please add retry logic to the uploader"),
	}
	title := GenerateTitle(msgs, "", SourceClaude, ClaudeTitleRules())
	require.Equal(t, "please add retry logic to the uploader", title)
}

func TestGenerateTitleSkipsNoiseLines(t *testing.T) {
	msgs := []Message{
		userMsg("Error: something broke badly in production"),
		userMsg("[Tool: Bash]"),
		userMsg("investigate the flaky websocket reconnect test"),
	}
	title := GenerateTitle(msgs, "", SourceClaude, ClaudeTitleRules())
	require.Equal(t, "investigate the flaky websocket reconnect test", title)
}

func TestGenerateTitleContinuation(t *testing.T) {
	content := "This session is being continued from a previous conversation that ran out of context.\n" +
		"Summary:\n" +
		`The user said "This session covers old work" and later asked ` +
		`"migrate the billing jobs to the new queue" before the cutoff.`
	msgs := []Message{userMsg(content)}

	title := GenerateTitle(msgs, "", SourceClaude, ClaudeTitleRules())
	require.Equal(t, "migrate the billing jobs to the new queue", title)
}

func TestGenerateTitleAssistantHelpFallback(t *testing.T) {
	msgs := []Message{
		userMsg("ok"),
		{ID: "a1", Role: RoleAssistant, Content: "I'll help you migrate the legacy importer today."},
	}
	title := GenerateTitle(msgs, "", SourceClaude, ClaudeTitleRules())
	require.Equal(t, "I'll help you migrate the legacy importer today.", title)
}

func TestGenerateTitleProjectFallback(t *testing.T) {
	msgs := []Message{userMsg("ok")}
	title := GenerateTitle(msgs, "-home-user-my-app", SourceClaude, ClaudeTitleRules())
	require.Equal(t, "Session in home/user/my/app", title)
}

func TestGenerateTitleTimestampFallback(t *testing.T) {
	ts := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	msgs := []Message{{ID: "u1", Role: RoleUser, Content: "ok", CreateTime: ts}}
	title := GenerateTitle(msgs, "", SourceGemini, GeminiTitleRules())
	// Gemini rules have no minimum line length, so the short line wins.
	require.Equal(t, "ok", title)

	msgs[0].Content = "[bracketed]"
	title = GenerateTitle(msgs, "", SourceGemini, GeminiTitleRules())
	require.Equal(t, "Gemini session 2024-06-01 09:30", title)
}

func TestGenerateTitleLastResort(t *testing.T) {
	msgs := []Message{userMsg("[x]")}
	require.Equal(t, "ChatGPT conversation", GenerateTitle(msgs, "", SourceChatGPT, TitleRules{MinLine: titleMinLine}))
}

func TestTruncateTitle(t *testing.T) {
	long := strings.Repeat("a", 100)
	title := truncateTitle(long)
	require.Len(t, title, 80)
	require.True(t, strings.HasSuffix(title, "..."))
}

func TestGenerateTitleCJKTruncation(t *testing.T) {
	line := strings.Repeat("统计每个项目的会话数量", 9)
	title := GenerateTitle([]Message{userMsg(line)}, "", SourceClaude, ClaudeTitleRules())
	require.True(t, utf8.ValidString(title))
	require.Equal(t, 80, len([]rune(title)))
	require.Equal(t, string([]rune(line)[:77])+"...", title)
}
