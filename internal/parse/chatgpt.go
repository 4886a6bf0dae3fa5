package parse

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// LoadChatGPTConversations loads a ChatGPT export file: either a bare JSON
// array of conversation objects or an object wrapping that array under a
// `conversations` key.
func LoadChatGPTConversations(filePath string) ([]*Conversation, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filePath, err)
	}

	if wrapper, ok := root.(map[string]any); ok {
		root = wrapper["conversations"]
	}
	list, ok := root.([]any)
	if !ok {
		return nil, fmt.Errorf("parse %s: unexpected top-level shape", filePath)
	}

	var convs []*Conversation
	for _, item := range list {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if conv := parseChatGPTConversation(record, filePath); conv != nil {
			convs = append(convs, conv)
		}
	}
	return convs, nil
}

func parseChatGPTConversation(record map[string]any, filePath string) *Conversation {
	id, _ := record["id"].(string)
	if id == "" {
		return nil
	}

	var messages []Message
	if mapping, ok := record["mapping"].(map[string]any); ok && len(mapping) > 0 {
		messages = messagesFromMapping(mapping)
	} else if flat, ok := record["messages"].([]any); ok {
		for _, m := range flat {
			if msgMap, ok := m.(map[string]any); ok {
				if msg, ok := parseChatGPTMessage(msgMap); ok {
					messages = append(messages, msg)
				}
			}
		}
	}
	if len(messages) == 0 {
		return nil
	}

	title, _ := record["title"].(string)
	if title == "" {
		title = "Untitled"
	}

	return &Conversation{
		ID:         id,
		Title:      title,
		Messages:   messages,
		CreateTime: unixField(record, "create_time"),
		UpdateTime: unixField(record, "update_time"),
		Metadata: map[string]string{
			"source": string(SourceChatGPT),
			"file":   filePath,
		},
	}
}

// messagesFromMapping reconstructs the message list from the export's
// parent/child node graph. The graph is treated as a forest: every node
// without a parent is a root, and every branch is walked, not just the
// current_node path, so abandoned edits are preserved. Traversal is
// iterative with a visited set; malformed exports can contain cycles.
// Tree position is not the authoritative order: the collected messages are
// sorted globally by create time, with missing times sorting first.
func messagesFromMapping(mapping map[string]any) []Message {
	var roots []string
	for nodeID, raw := range mapping {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if parent, _ := node["parent"].(string); parent == "" {
			roots = append(roots, nodeID)
		}
	}
	sort.Strings(roots)

	var messages []Message
	visited := make(map[string]bool, len(mapping))

	for _, rootID := range roots {
		stack := []string{rootID}
		for len(stack) > 0 {
			nodeID := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if nodeID == "" || visited[nodeID] {
				continue
			}
			visited[nodeID] = true

			node, ok := mapping[nodeID].(map[string]any)
			if !ok {
				continue
			}
			if msgMap, ok := node["message"].(map[string]any); ok && len(msgMap) > 0 {
				if msg, ok := parseChatGPTMessage(msgMap); ok {
					messages = append(messages, msg)
				}
			}

			children, _ := node["children"].([]any)
			// Push in reverse so children pop in declared order.
			for i := len(children) - 1; i >= 0; i-- {
				if childID, ok := children[i].(string); ok {
					stack = append(stack, childID)
				}
			}
		}
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreateTime.Before(messages[j].CreateTime)
	})
	return messages
}

func parseChatGPTMessage(msg map[string]any) (Message, bool) {
	id, _ := msg["id"].(string)
	if id == "" {
		return Message{}, false
	}

	parts := decodeChatGPTContent(msg)
	content := RenderParts(parts, ExtractOptions{Joiner: " "})

	return Message{
		ID:         id,
		Role:       chatGPTRole(msg),
		Content:    content,
		CreateTime: unixField(msg, "create_time"),
		Raw:        msg,
	}, true
}

// chatGPTRole recovers a role from the several places exports have put it:
// a top-level role field, the author object, or a role-prefixed node id in
// the oldest exports.
func chatGPTRole(msg map[string]any) Role {
	if role, ok := normalizeRole(msg["role"]); ok {
		return role
	}
	if author, ok := msg["author"].(map[string]any); ok {
		if role, ok := normalizeRole(author["role"]); ok {
			return role
		}
	}
	if id, _ := msg["id"].(string); id != "" {
		switch {
		case strings.HasPrefix(id, "user-"):
			return RoleUser
		case strings.HasPrefix(id, "assistant-"):
			return RoleAssistant
		}
	}
	return RoleUnknown
}

func normalizeRole(v any) (Role, bool) {
	s, _ := v.(string)
	switch s {
	case "user":
		return RoleUser, true
	case "assistant":
		return RoleAssistant, true
	}
	return RoleUnknown, false
}

// unixField reads an epoch-seconds JSON number, tolerating absent or null
// values as the zero time.
func unixField(record map[string]any, key string) time.Time {
	if f, ok := record[key].(float64); ok {
		return TimeFromUnix(f)
	}
	return time.Time{}
}
