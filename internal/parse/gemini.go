package parse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// LoadGeminiConversations loads a Gemini session tree: a directory of
// session subdirectories each holding checkpoint-*.json files, or a single
// checkpoint file.
func LoadGeminiConversations(path string) ([]*Conversation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		conv, err := LoadGeminiConversation(path)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, nil
		}
		return []*Conversation{conv}, nil
	}

	sessions, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var convs []*Conversation
	for _, session := range sessions {
		if !session.IsDir() {
			continue
		}
		checkpoints, err := filepath.Glob(filepath.Join(path, session.Name(), "checkpoint-*.json"))
		if err != nil {
			continue
		}
		for _, file := range checkpoints {
			conv, err := LoadGeminiConversation(file)
			if err != nil {
				slog.Warn("skipping gemini checkpoint", "file", file, "error", err)
				continue
			}
			if conv != nil {
				convs = append(convs, conv)
			}
		}
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].CreateTime.After(convs[j].CreateTime)
	})
	return convs, nil
}

// LoadGeminiConversation parses one checkpoint file: a JSON array of turn
// objects. The session id is the checkpoint's parent directory name, since
// the files inside a session are successive snapshots of the same
// conversation.
func LoadGeminiConversation(filePath string) (*Conversation, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var turns []map[string]any
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	var mtime time.Time
	if info, err := os.Stat(filePath); err == nil {
		mtime = info.ModTime()
	}

	var (
		messages []Message
		firstTS  time.Time
	)
	for _, turn := range turns {
		if ts, _ := turn["timestamp"].(string); ts != "" && firstTS.IsZero() {
			firstTS, _ = ParseTimestamp(ts)
		}
		if msg, ok := parseGeminiTurn(turn); ok {
			messages = append(messages, msg)
		}
	}

	if len(messages) == 0 {
		return nil, nil
	}

	createTime := firstTS
	if createTime.IsZero() {
		createTime = mtime
	}

	return &Conversation{
		ID:         filepath.Base(filepath.Dir(filePath)),
		Title:      GenerateTitle(messages, "", SourceGemini, GeminiTitleRules()),
		Messages:   messages,
		CreateTime: createTime,
		UpdateTime: mtime,
		Metadata: map[string]string{
			"source": string(SourceGemini),
			"file":   filePath,
		},
	}, nil
}

// parseGeminiTurn converts one checkpoint turn. Turns carry either a
// `parts` array of {text} objects or a plain `message` string; roles are
// user/model. Checkpoints rarely timestamp individual turns, so message
// ids are synthesized.
func parseGeminiTurn(turn map[string]any) (Message, bool) {
	role, ok := geminiRole(turn["role"])
	if !ok {
		return Message{}, false
	}

	var parts []ContentPart
	if list, ok := turn["parts"].([]any); ok {
		for _, item := range list {
			part, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if text, _ := part["text"].(string); text != "" {
				parts = append(parts, ContentPart{Kind: PartText, Text: text})
			}
		}
	} else if text, _ := turn["message"].(string); text != "" {
		parts = []ContentPart{{Kind: PartText, Text: text}}
	}
	if len(parts) == 0 {
		return Message{}, false
	}

	var createTime time.Time
	if ts, _ := turn["timestamp"].(string); ts != "" {
		createTime, _ = ParseTimestamp(ts)
	}

	return Message{
		ID:         uuid.NewString(),
		Role:       role,
		Content:    RenderParts(parts, ExtractOptions{Joiner: "\n"}),
		CreateTime: createTime,
		Raw:        turn,
	}, true
}

func geminiRole(v any) (Role, bool) {
	switch v {
	case "user":
		return RoleUser, true
	case "model":
		return RoleAssistant, true
	}
	return RoleUnknown, false
}
