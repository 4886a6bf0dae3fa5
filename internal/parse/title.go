package parse

import (
	"regexp"
	"strings"
)

const (
	titleMaxLen  = 80
	titleMinLine = 20
)

// TitleRules is the per-source configuration for title generation. Keeping
// the phrase lists here, rather than in control flow, lets each loader tune
// them without touching the extraction logic.
type TitleRules struct {
	// SkipPrefixes reject candidate lines that are tool or log echo
	// rather than something the user typed.
	SkipPrefixes []string
	// ContinuationMark flags a synthetic carried-over session summary;
	// such a message is mined for quoted user text instead of being used
	// directly.
	ContinuationMark string
	// SummaryHeading locates the summary section inside a continuation
	// message.
	SummaryHeading string
	// QuoteSkipPrefix rejects quoted strings that are meta-commentary.
	QuoteSkipPrefix string
	// HelpPhrases identify assistant lines that describe the task, used
	// when no user line qualifies.
	HelpPhrases []string
	// MinLine is the minimum length for a candidate line; zero accepts
	// any non-empty line.
	MinLine int
}

var claudeSkipPrefixes = []string{
	"1. Replaced", "File \"", "Applied ", "The file ", "Contents of",
	"Error:", "Traceback", "WARNING:", "INFO:", "DEBUG:",
	"Successfully", "Failed to", "Created", "Updated", "Deleted",
	"Running", "Executing", "Processing", "Building",
	"```", "---", "===", "...", "Note:",
	"#", "//", "/*",
}

// ClaudeTitleRules returns the rules for Claude transcripts, which contain
// synthetic continuation preambles and tool output interleaved with user
// text.
func ClaudeTitleRules() TitleRules {
	return TitleRules{
		SkipPrefixes:     claudeSkipPrefixes,
		ContinuationMark: "being continued from a previous conversation",
		SummaryHeading:   "Summary:",
		QuoteSkipPrefix:  "This session",
		HelpPhrases:      []string{"I'll help", "Let me", "I can"},
		MinLine:          titleMinLine,
	}
}

// GeminiTitleRules returns the rules for Gemini checkpoints, whose user
// turns are plain text and often very short prompts. MinLine stays zero so
// a one-line prompt still beats the timestamp fallback.
func GeminiTitleRules() TitleRules {
	return TitleRules{}
}

var quotedRe = regexp.MustCompile(`"([^"]+)"`)

// GenerateTitle derives a conversation title from its messages. The
// fallback chain is: representative user line, assistant help-offering
// line, project-derived label, timestamp label, fixed literal.
func GenerateTitle(messages []Message, projectName string, source Source, rules TitleRules) string {
	if title := titleFromUserMessages(messages, rules); title != "" {
		return title
	}

	if len(rules.HelpPhrases) > 0 {
		if title := titleFromAssistant(messages, rules.HelpPhrases); title != "" {
			return title
		}
	}

	if projectName != "" {
		clean := strings.ReplaceAll(strings.TrimLeft(projectName, "-"), "-", "/")
		return "Session in " + clean
	}

	if len(messages) > 0 && !messages[0].CreateTime.IsZero() {
		return source.Label() + " session " + messages[0].CreateTime.Format("2006-01-02 15:04")
	}

	return source.Label() + " conversation"
}

func titleFromUserMessages(messages []Message, rules TitleRules) string {
	for _, msg := range messages {
		if msg.Role != RoleUser {
			continue
		}

		content := titleContent(msg, rules)
		if content == "" {
			continue
		}

		if rules.ContinuationMark != "" && strings.Contains(content, rules.ContinuationMark) {
			if title := titleFromContinuation(content, rules); title != "" {
				return title
			}
			continue
		}

		for _, line := range strings.Split(content, "\n") {
			line = strings.TrimSpace(line)
			if len(line) <= rules.MinLine || strings.HasPrefix(line, "[") {
				continue
			}
			if isNoiseLine(line, rules.SkipPrefixes) {
				continue
			}
			return truncateTitle(line)
		}
	}
	return ""
}

// titleContent re-extracts message content in title mode from the raw
// record when available, so tool blocks and noise lines are filtered the
// same way regardless of how the display content was joined.
func titleContent(msg Message, rules TitleRules) string {
	if msg.Raw != nil {
		if inner, ok := msg.Raw["message"].(map[string]any); ok {
			parts := decodeClaudeParts(inner["content"])
			return RenderParts(parts, ExtractOptions{
				ForTitle:     true,
				SkipPrefixes: rules.SkipPrefixes,
			})
		}
	}
	return msg.Content
}

// titleFromContinuation mines a carried-over session summary for quoted
// user text, since the summary itself describes the previous session
// rather than this one.
func titleFromContinuation(content string, rules TitleRules) string {
	section := content
	if rules.SummaryHeading != "" {
		idx := strings.Index(content, rules.SummaryHeading)
		if idx < 0 {
			return ""
		}
		section = content[idx:]
	}
	for _, m := range quotedRe.FindAllStringSubmatch(section, -1) {
		quote := m[1]
		if len(quote) <= titleMinLine {
			continue
		}
		if rules.QuoteSkipPrefix != "" && strings.HasPrefix(quote, rules.QuoteSkipPrefix) {
			continue
		}
		return truncateTitle(quote)
	}
	return ""
}

func titleFromAssistant(messages []Message, phrases []string) string {
	limit := min(len(messages), 5)
	for _, msg := range messages[:limit] {
		if msg.Role != RoleAssistant {
			continue
		}
		for _, line := range strings.Split(msg.Content, "\n") {
			for _, phrase := range phrases {
				if strings.Contains(line, phrase) && len(strings.TrimSpace(line)) > titleMinLine {
					return truncateTitle(strings.TrimSpace(line))
				}
			}
		}
	}
	return ""
}

// truncateTitle limits a title to titleMaxLen characters. Limits here and
// in the extractor count runes, not bytes, so CJK text is never cut
// mid-character.
func truncateTitle(s string) string {
	if r := []rune(s); len(r) > titleMaxLen {
		return string(r[:titleMaxLen-3]) + "..."
	}
	return s
}
