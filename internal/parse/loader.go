package parse

import (
	"os"
	"path/filepath"
	"strings"
)

// Format selects a loader, or asks for detection from the path shape.
type Format string

const (
	FormatAuto    Format = "auto"
	FormatChatGPT Format = "chatgpt"
	FormatClaude  Format = "claude"
	FormatGemini  Format = "gemini"
)

// DetectFormat guesses the source format from the path: directories belong
// to Claude projects unless they sit under a .gemini config root, .jsonl
// files are Claude sessions, checkpoint JSON files are Gemini, and anything
// else is treated as a ChatGPT export.
func DetectFormat(path string) Format {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		if strings.Contains(filepath.ToSlash(path), ".gemini") {
			return FormatGemini
		}
		return FormatClaude
	}
	if filepath.Ext(path) == ".jsonl" {
		return FormatClaude
	}
	if strings.HasPrefix(filepath.Base(path), "checkpoint-") {
		return FormatGemini
	}
	return FormatChatGPT
}

// LoadConversations routes a path to the right loader.
func LoadConversations(path string, format Format) ([]*Conversation, error) {
	if format == "" || format == FormatAuto {
		format = DetectFormat(path)
	}
	switch format {
	case FormatClaude:
		return LoadClaudeConversations(path)
	case FormatGemini:
		return LoadGeminiConversations(path)
	default:
		return LoadChatGPTConversations(path)
	}
}
