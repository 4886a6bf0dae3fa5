package parse

import "time"

// Role is a normalized message role. Source formats that use other role
// vocabularies ("model", author objects, id prefixes) are mapped onto this
// set by the loaders.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleUnknown   Role = "unknown"
)

// Source identifies the upstream format a conversation was loaded from.
type Source string

const (
	SourceChatGPT Source = "chatgpt"
	SourceClaude  Source = "claude"
	SourceGemini  Source = "gemini"
)

// Label returns the human-readable name used in generated titles.
func (s Source) Label() string {
	switch s {
	case SourceChatGPT:
		return "ChatGPT"
	case SourceClaude:
		return "Claude"
	case SourceGemini:
		return "Gemini"
	}
	return "Session"
}

// Message is one normalized turn. CreateTime is the zero time when the
// source carried no usable timestamp; callers that need a sort key fall
// back to the zero time explicitly at the sort site.
type Message struct {
	ID         string
	Role       Role
	Content    string
	CreateTime time.Time
	// Raw is the original source record, kept for re-export and for
	// title generation, which re-extracts content with stricter rules.
	Raw map[string]any
}

// Conversation is one normalized chat session. For Claude sources ID always
// equals the source filename stem, because `claude --resume` addresses
// sessions by that identifier. Loaders never produce a conversation with
// zero messages.
type Conversation struct {
	ID         string
	Title      string
	Messages   []Message
	CreateTime time.Time
	UpdateTime time.Time
	Metadata   map[string]string
}

func (c *Conversation) Source() Source {
	if c.Metadata != nil {
		return Source(c.Metadata["source"])
	}
	return ""
}

// FilePath returns the file the conversation was loaded from.
func (c *Conversation) FilePath() string {
	if c.Metadata != nil {
		return c.Metadata["file"]
	}
	return ""
}
