package parse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxLineSize = 10 * 1024 * 1024 // 10MB

// LoadClaudeConversations loads a single .jsonl session file, or every
// .jsonl file inside a project directory. A file that fails to parse is
// logged and skipped so one bad session never sinks the batch.
func LoadClaudeConversations(path string) ([]*Conversation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		conv, err := LoadClaudeConversation(path)
		if err != nil {
			return nil, err
		}
		if conv == nil {
			return nil, nil
		}
		return []*Conversation{conv}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	var convs []*Conversation
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".jsonl" {
			continue
		}
		file := filepath.Join(path, entry.Name())
		conv, err := LoadClaudeConversation(file)
		if err != nil {
			slog.Warn("skipping claude session", "file", file, "error", err)
			continue
		}
		if conv != nil {
			convs = append(convs, conv)
		}
	}

	sort.SliceStable(convs, func(i, j int) bool {
		return convs[i].CreateTime.After(convs[j].CreateTime)
	})
	return convs, nil
}

// LoadClaudeConversation parses one session transcript. It returns
// (nil, nil) when the file holds no user or assistant messages; snapshot and
// summary records alone do not make a conversation. The conversation id is
// always the filename stem; external tools resume sessions by it.
func LoadClaudeConversation(filePath string) (*Conversation, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var mtime time.Time
	if info, err := f.Stat(); err == nil {
		mtime = info.ModTime()
	}

	var (
		messages        []Message
		firstTS, lastTS time.Time
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record map[string]any
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}

		if ts, _ := record["timestamp"].(string); ts != "" {
			if t, ok := ParseTimestamp(ts); ok {
				if firstTS.IsZero() {
					firstTS = t
				}
				lastTS = t
			}
		}

		if msg, ok := parseClaudeMessage(record); ok {
			messages = append(messages, msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", filePath, err)
	}

	if len(messages) == 0 {
		return nil, nil
	}

	projectName := claudeProjectName(filePath)

	metadata := map[string]string{
		"source": string(SourceClaude),
		"file":   filePath,
	}
	if projectName != "" {
		metadata["project"] = projectName
	}

	updateTime := mtime
	if updateTime.IsZero() {
		updateTime = lastTS
	}

	return &Conversation{
		ID:         sessionStem(filePath),
		Title:      GenerateTitle(messages, projectName, SourceClaude, ClaudeTitleRules()),
		Messages:   messages,
		CreateTime: firstTS,
		UpdateTime: updateTime,
		Metadata:   metadata,
	}, nil
}

// parseClaudeMessage converts one raw JSONL record into a normalized
// message. Only user and assistant records with a message payload qualify;
// everything else (summaries, snapshots, meta) is skipped here but kept by
// RawEntries for the aligned render.
func parseClaudeMessage(record map[string]any) (Message, bool) {
	recordType, _ := record["type"].(string)
	if recordType != "user" && recordType != "assistant" {
		return Message{}, false
	}

	inner, ok := record["message"].(map[string]any)
	if !ok || len(inner) == 0 {
		return Message{}, false
	}

	role := RoleUser
	if recordType == "assistant" {
		role = RoleAssistant
	}

	parts := decodeClaudeParts(inner["content"])
	content := RenderParts(parts, ExtractOptions{Joiner: "\n"})

	id, _ := record["uuid"].(string)
	if id == "" {
		id, _ = record["timestamp"].(string)
	}

	var createTime time.Time
	if ts, _ := record["timestamp"].(string); ts != "" {
		createTime, _ = ParseTimestamp(ts)
	}

	return Message{
		ID:         id,
		Role:       role,
		Content:    content,
		CreateTime: createTime,
		Raw:        record,
	}, true
}

// RawEntries loads every decodable JSONL record unfiltered, in file order.
// The aligned dual renderer works on this stream so that non-message
// records keep their place.
func RawEntries(filePath string) ([]map[string]any, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// claudeProjectName pulls the project directory segment following the
// `projects` marker in a session path.
func claudeProjectName(filePath string) string {
	parts := strings.Split(filepath.ToSlash(filePath), "/")
	for i, part := range parts {
		// i+1 must be a directory segment, not the session file itself.
		if part == "projects" && i+1 < len(parts)-1 {
			return parts[i+1]
		}
	}
	return ""
}

func sessionStem(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
