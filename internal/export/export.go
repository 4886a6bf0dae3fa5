package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aicb-dev/aicb/internal/parse"
)

// Format is an export output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatMarkdown, FormatJSON:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Exporter renders conversations to text, markdown, or JSON, memoizing
// results in an injected cache.
type Exporter struct {
	cache *Cache
}

func New(cache *Cache) *Exporter {
	if cache == nil {
		cache = NewCache(0)
	}
	return &Exporter{cache: cache}
}

// Export renders one conversation.
func (e *Exporter) Export(conv *parse.Conversation, format Format) (string, error) {
	key := Key{
		ID:          conv.ID,
		UpdateMilli: conv.UpdateTime.UnixMilli(),
		Format:      format,
	}
	if content, ok := e.cache.Get(key, conv.UpdateTime); ok {
		return content, nil
	}

	var content string
	switch format {
	case FormatJSON:
		out, err := asJSON(conv)
		if err != nil {
			return "", err
		}
		content = out
	case FormatText:
		content = asText(conv)
	case FormatMarkdown:
		content = asMarkdown(conv)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}

	e.cache.Put(key, content)
	return content, nil
}

// CacheStats exposes the underlying cache counters.
func (e *Exporter) CacheStats() Stats {
	return e.cache.Stats()
}

// codeIndicators trigger the markdown code-fence heuristic for multi-line
// content that is not already fenced.
var codeIndicators = []string{"import ", "def ", "class ", "function ", "const ", "var ", "let "}

const timeLayout = "2006-01-02 15:04:05"

func asMarkdown(conv *parse.Conversation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", conv.Title)
	fmt.Fprintf(&b, "**Session ID:** %s\n", conv.ID)
	if !conv.CreateTime.IsZero() {
		fmt.Fprintf(&b, "**Created:** %s\n", conv.CreateTime.Format(timeLayout))
	}
	if !conv.UpdateTime.IsZero() && !conv.UpdateTime.Equal(conv.CreateTime) {
		fmt.Fprintf(&b, "**Updated:** %s\n", conv.UpdateTime.Format(timeLayout))
	}
	fmt.Fprintf(&b, "**Messages:** %d\n\n---\n\n", len(conv.Messages))

	for _, msg := range conv.Messages {
		switch msg.Role {
		case parse.RoleUser:
			b.WriteString("## 👤 USER\n\n")
		case parse.RoleAssistant:
			b.WriteString("## 🤖 ASSISTANT\n\n")
		default:
			fmt.Fprintf(&b, "## %s\n\n", strings.ToUpper(string(msg.Role)))
		}

		content := msg.Content
		if looksLikeCode(content) {
			b.WriteString("```\n")
			b.WriteString(content)
			b.WriteString("\n```")
		} else {
			b.WriteString(content)
		}
		b.WriteString("\n\n---\n\n")
	}

	return b.String()
}

// looksLikeCode guesses whether multi-line content should be fenced.
// Content that already carries a fence is left alone.
func looksLikeCode(content string) bool {
	if strings.Contains(content, "```") {
		return false
	}
	if !strings.Contains(content, "\n") {
		return false
	}
	for _, indicator := range codeIndicators {
		if strings.Contains(content, indicator) {
			return true
		}
	}
	return false
}

func asText(conv *parse.Conversation) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Conversation: %s\n", conv.Title)
	fmt.Fprintf(&b, "Session ID: %s\n", conv.ID)
	b.WriteString(strings.Repeat("=", 70))
	b.WriteString("\n\n")

	separator := strings.Repeat("-", 70)
	for _, msg := range conv.Messages {
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(string(msg.Role)))
		b.WriteString(separator)
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}

// jsonConversation is the lossless export shape. Message metadata is
// deliberately dropped: it is raw source plumbing, not conversation
// content. Unknown timestamps serialize as null, never zero.
type jsonConversation struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	CreateTime *float64      `json:"create_time"`
	UpdateTime *float64      `json:"update_time"`
	Messages   []jsonMessage `json:"messages"`
}

type jsonMessage struct {
	ID         string   `json:"id"`
	Role       string   `json:"role"`
	Content    string   `json:"content"`
	CreateTime *float64 `json:"create_time"`
}

func asJSON(conv *parse.Conversation) (string, error) {
	out := jsonConversation{
		ID:         conv.ID,
		Title:      conv.Title,
		CreateTime: unixPtr(parse.UnixFloat(conv.CreateTime)),
		UpdateTime: unixPtr(parse.UnixFloat(conv.UpdateTime)),
		Messages:   make([]jsonMessage, 0, len(conv.Messages)),
	}
	for _, msg := range conv.Messages {
		out.Messages = append(out.Messages, jsonMessage{
			ID:         msg.ID,
			Role:       string(msg.Role),
			Content:    msg.Content,
			CreateTime: unixPtr(parse.UnixFloat(msg.CreateTime)),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal conversation %s: %w", conv.ID, err)
	}
	return string(data), nil
}

func unixPtr(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
