package parse

import (
	"fmt"
	"sort"
	"strings"
)

// PartKind tags one entry of the closed content-variant set. Every format
// loader maps its native content shape into []ContentPart once; extraction
// below only ever operates on the normalized list.
type PartKind int

const (
	PartText PartKind = iota
	PartToolUse
	PartToolResult
	PartImage
	PartRaw
)

// ContentPart is one tagged content variant. Only the fields for its Kind
// are populated.
type ContentPart struct {
	Kind      PartKind
	Text      string         // PartText, PartToolResult, PartRaw
	ToolName  string         // PartToolUse
	ToolInput map[string]any // PartToolUse
	ImageURL  string         // PartImage
}

const (
	placeholderEmpty       = "[Empty message]"
	placeholderUnsupported = "[Empty or unsupported message format]"

	toolInputMaxKeys    = 3
	toolInputValueLimit = 100
	toolResultLimit     = 200
)

// ExtractOptions control how a part list renders to text. Joiner mirrors the
// source format: Claude joins parts with newlines, ChatGPT with a single
// space. ForTitle restricts output to plain text parts and rejects lines
// with any of the SkipPrefixes, so tool echo never becomes a title.
type ExtractOptions struct {
	ForTitle     bool
	Joiner       string
	SkipPrefixes []string
}

// RenderParts renders a normalized part list to display text. It never
// returns an empty string outside of title mode: an empty or unrecognized
// part list yields a placeholder instead.
func RenderParts(parts []ContentPart, opts ExtractOptions) string {
	joiner := opts.Joiner
	if joiner == "" {
		joiner = "\n"
	}

	var out []string
	for _, p := range parts {
		switch p.Kind {
		case PartText:
			if p.Text == "" {
				continue
			}
			if opts.ForTitle && isNoiseLine(p.Text, opts.SkipPrefixes) {
				continue
			}
			out = append(out, p.Text)

		case PartToolUse:
			if opts.ForTitle {
				continue
			}
			out = append(out, "[Tool: "+p.ToolName+"]")
			out = append(out, renderToolInput(p.ToolInput)...)

		case PartToolResult:
			if opts.ForTitle {
				continue
			}
			content := p.Text
			if r := []rune(content); len(r) > toolResultLimit {
				content = string(r[:toolResultLimit]) + "..."
			}
			out = append(out, "[Tool Result: "+content+"]")

		case PartImage:
			if opts.ForTitle {
				continue
			}
			url := p.ImageURL
			if url == "" {
				url = "Unknown image"
			}
			out = append(out, "[IMAGE: "+url+"]")

		case PartRaw:
			if opts.ForTitle {
				continue
			}
			if p.Text != "" {
				out = append(out, p.Text)
			}
		}
	}

	if len(out) == 0 {
		if opts.ForTitle {
			return ""
		}
		return placeholderEmpty
	}
	return strings.Join(out, joiner)
}

func renderToolInput(input map[string]any) []string {
	if len(input) == 0 {
		return nil
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > toolInputMaxKeys {
		keys = keys[:toolInputMaxKeys]
	}
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		v := stringify(input[k])
		if r := []rune(v); len(r) > toolInputValueLimit {
			v = string(r[:toolInputValueLimit])
		}
		lines = append(lines, "  "+k+": "+v)
	}
	return lines
}

func isNoiseLine(text string, prefixes []string) bool {
	trimmed := strings.TrimSpace(text)
	for _, p := range prefixes {
		if strings.HasPrefix(text, p) || strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprintf("%v", v)
	}
}

// decodeClaudeParts maps a decoded Claude `message.content` value onto the
// variant set. The field is either a bare string or an array of typed
// blocks (text, tool_use, tool_result, image).
func decodeClaudeParts(content any) []ContentPart {
	switch c := content.(type) {
	case string:
		if c == "" {
			return nil
		}
		return []ContentPart{{Kind: PartText, Text: c}}
	case []any:
		var parts []ContentPart
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch block["type"] {
			case "text":
				if text, _ := block["text"].(string); text != "" {
					parts = append(parts, ContentPart{Kind: PartText, Text: text})
				}
			case "tool_use":
				name, _ := block["name"].(string)
				if name == "" {
					name = "unknown"
				}
				input, _ := block["input"].(map[string]any)
				parts = append(parts, ContentPart{Kind: PartToolUse, ToolName: name, ToolInput: input})
			case "tool_result":
				parts = append(parts, ContentPart{Kind: PartToolResult, Text: toolResultText(block["content"])})
			case "image":
				url := imageURL(block)
				parts = append(parts, ContentPart{Kind: PartImage, ImageURL: url})
			}
		}
		return parts
	}
	return nil
}

// toolResultText flattens the string-or-block-list shape of tool_result
// content into plain text.
func toolResultText(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case []any:
		var parts []string
		for _, item := range c {
			switch v := item.(type) {
			case string:
				parts = append(parts, v)
			case map[string]any:
				if v["type"] == "text" {
					if text, _ := v["text"].(string); text != "" {
						parts = append(parts, text)
					}
				}
			}
		}
		return strings.Join(parts, "\n")
	}
	return ""
}

func imageURL(block map[string]any) string {
	if img, ok := block["image_url"].(map[string]any); ok {
		if url, _ := img["url"].(string); url != "" {
			return url
		}
	}
	if src, ok := block["source"].(map[string]any); ok {
		if url, _ := src["url"].(string); url != "" {
			return url
		}
		if mt, _ := src["media_type"].(string); mt != "" {
			return mt
		}
	}
	return ""
}

// decodeChatGPTContent maps a ChatGPT message record's content onto the
// variant set. The export has grown several shapes over the years: a bare
// string, an object with `parts` or `text`, a flat array of typed items,
// and a `parts` list stored directly on the message.
func decodeChatGPTContent(msg map[string]any) []ContentPart {
	content, ok := msg["content"]
	if !ok || content == nil {
		if parts, ok := msg["parts"].([]any); ok {
			return decodePartsList(parts)
		}
		return nil
	}

	switch c := content.(type) {
	case string:
		if c == "" {
			return nil
		}
		return []ContentPart{{Kind: PartText, Text: c}}

	case map[string]any:
		if parts, ok := c["parts"].([]any); ok {
			return decodePartsList(parts)
		}
		if text, ok := c["text"].(string); ok {
			return []ContentPart{{Kind: PartText, Text: text}}
		}
		return []ContentPart{{Kind: PartRaw, Text: stringify(c)}}

	case []any:
		var parts []ContentPart
		for _, item := range c {
			switch v := item.(type) {
			case string:
				if v != "" {
					parts = append(parts, ContentPart{Kind: PartText, Text: v})
				}
			case map[string]any:
				if v["type"] == "image_url" {
					parts = append(parts, ContentPart{Kind: PartImage, ImageURL: imageURL(v)})
				} else if text, _ := v["text"].(string); text != "" {
					parts = append(parts, ContentPart{Kind: PartText, Text: text})
				}
			}
		}
		return parts
	}

	return []ContentPart{{Kind: PartRaw, Text: stringify(content)}}
}

// decodePartsList handles the `parts` array: mostly strings, occasionally
// multimodal pointer objects.
func decodePartsList(items []any) []ContentPart {
	var parts []ContentPart
	for _, item := range items {
		switch v := item.(type) {
		case nil:
			continue
		case string:
			if v != "" {
				parts = append(parts, ContentPart{Kind: PartText, Text: v})
			}
		case map[string]any:
			if v["content_type"] == "image_asset_pointer" {
				url, _ := v["asset_pointer"].(string)
				parts = append(parts, ContentPart{Kind: PartImage, ImageURL: url})
				continue
			}
			if text, _ := v["text"].(string); text != "" {
				parts = append(parts, ContentPart{Kind: PartText, Text: text})
				continue
			}
			parts = append(parts, ContentPart{Kind: PartRaw, Text: stringify(v)})
		default:
			parts = append(parts, ContentPart{Kind: PartRaw, Text: stringify(v)})
		}
	}
	return parts
}
