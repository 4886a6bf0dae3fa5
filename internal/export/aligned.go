package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aicb-dev/aicb/internal/parse"
)

// DefaultFoldLines is the fold threshold used when the caller does not
// override it.
const DefaultFoldLines = 50

const (
	foldHead = 5
	foldTail = 5
)

// alignedSeparator is the rule between entries in the plaintext document.
const alignedSeparator = "----------------------------------------------------------------------"

// ExportAligned renders raw JSONL entries into two line-synchronized
// documents: a folded pretty-JSON transcript and a narrative plaintext
// transcript. For every entry the two renderings are padded to the same
// line count, so line N of one document describes the same record as line N
// of the other. The split-pane review workflow depends on that contract.
// Between entries the plaintext gets a separator rule and the JSON a blank
// line, keeping global alignment while leaving each JSON chunk a
// self-contained object.
//
// The transform is pure: the same entries and foldLines always produce
// byte-identical output, which the edit workflow relies on to diff a
// regenerated view against a user-edited one.
func ExportAligned(entries []map[string]any, foldLines int) (jsonDoc, textDoc string) {
	if foldLines <= 0 {
		foldLines = DefaultFoldLines
	}

	var jsonLines, textLines []string
	for i, entry := range entries {
		if i > 0 {
			jsonLines = append(jsonLines, "")
			textLines = append(textLines, alignedSeparator)
		}

		jb := jsonEntryLines(entry, foldLines)
		tb := strings.Split(renderEntryDetailed(entry, foldLines), "\n")

		for len(jb) < len(tb) {
			jb = append(jb, "")
		}
		for len(tb) < len(jb) {
			tb = append(tb, "")
		}

		jsonLines = append(jsonLines, jb...)
		textLines = append(textLines, tb...)
	}

	return strings.Join(jsonLines, "\n") + "\n", strings.Join(textLines, "\n") + "\n"
}

func jsonEntryLines(entry map[string]any, foldLines int) []string {
	folded := foldValue(entry, foldLines)
	data, err := json.MarshalIndent(folded, "", "  ")
	if err != nil {
		return []string{fmt.Sprintf("{\"error\": %q}", err.Error())}
	}
	return strings.Split(string(data), "\n")
}

// foldValue returns a deep copy of v with large fields summarized in place:
// token-usage blocks collapse to a one-line string, and any string spanning
// more than foldLines lines keeps only its head and tail around an elision
// marker. The original entry is never mutated.
func foldValue(v any, foldLines int) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			if k == "usage" {
				if usage, ok := child.(map[string]any); ok {
					out[k] = usageSummary(usage)
					continue
				}
			}
			out[k] = foldValue(child, foldLines)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			out[i] = foldValue(child, foldLines)
		}
		return out
	case string:
		return foldString(val, foldLines)
	default:
		return v
	}
}

func usageSummary(usage map[string]any) string {
	keys := make([]string, 0, len(usage))
	for k := range usage {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, usage[k]))
	}
	if len(parts) == 0 {
		return "(usage)"
	}
	return "(usage: " + strings.Join(parts, " ") + ")"
}

// foldString elides the middle of a string spanning more than foldLines
// lines, leaving foldHead head lines, one marker, and foldTail tail lines.
func foldString(s string, foldLines int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= foldLines {
		return s
	}
	folded := make([]string, 0, foldHead+foldTail+1)
	folded = append(folded, lines[:foldHead]...)
	folded = append(folded, foldMarker(len(lines)))
	folded = append(folded, lines[len(lines)-foldTail:]...)
	return strings.Join(folded, "\n")
}

func foldMarker(totalLines int) string {
	return fmt.Sprintf("(%d lines folded)", totalLines-foldHead-foldTail)
}

// renderEntryDetailed renders one raw entry as a human-readable block: role
// header with a short timestamp, then text, tool calls (inputs as
// key: value, multiline values indented), tool results, and any separately
// stored stdout/stderr, each independently fold-limited.
func renderEntryDetailed(entry map[string]any, foldLines int) string {
	entryType, _ := entry["type"].(string)

	switch entryType {
	case "file-history-snapshot":
		return "--- [snapshot] ---"
	case "summary":
		return "--- [summary] ---"
	case "user", "assistant":
	default:
		if entryType == "" {
			entryType = "unknown"
		}
		return fmt.Sprintf("--- [%s] ---", entryType)
	}

	var lines []string

	header := "## 👤 USER"
	if entryType == "assistant" {
		header = "## 🤖 ASSISTANT"
	}
	if ts, _ := entry["timestamp"].(string); ts != "" {
		if t, ok := parse.ParseTimestamp(ts); ok {
			header += " [" + t.UTC().Format("2006-01-02 15:04") + "]"
		}
	}
	lines = append(lines, header)

	if msg, ok := entry["message"].(map[string]any); ok {
		lines = append(lines, renderMessageContent(msg["content"], foldLines)...)
	}

	if result, ok := entry["toolUseResult"].(map[string]any); ok {
		lines = append(lines, renderToolStreams(result, foldLines)...)
	}

	return strings.Join(lines, "\n")
}

func renderMessageContent(content any, foldLines int) []string {
	var lines []string

	switch c := content.(type) {
	case string:
		lines = append(lines, strings.Split(c, "\n")...)

	case []any:
		for _, item := range c {
			block, ok := item.(map[string]any)
			if !ok {
				continue
			}
			switch block["type"] {
			case "text":
				if text, _ := block["text"].(string); text != "" {
					lines = append(lines, strings.Split(text, "\n")...)
				}

			case "tool_use":
				name, _ := block["name"].(string)
				if name == "" {
					name = "unknown"
				}
				lines = append(lines, "[Tool: "+name+"]")
				if input, ok := block["input"].(map[string]any); ok {
					lines = append(lines, renderToolInputLines(input)...)
				}

			case "tool_result":
				prefix := "[Tool Result]"
				if isErr, _ := block["is_error"].(bool); isErr {
					prefix = "[Tool Error]"
				}
				lines = append(lines, prefix)
				if text, ok := block["content"].(string); ok {
					lines = append(lines, indentFolded(text, foldLines)...)
				}
			}
		}
	}

	return lines
}

func renderToolInputLines(input map[string]any) []string {
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		value := fmt.Sprintf("%v", input[k])
		if strings.Contains(value, "\n") {
			lines = append(lines, "  "+k+": |")
			for _, vl := range strings.Split(value, "\n") {
				lines = append(lines, "    "+vl)
			}
		} else {
			lines = append(lines, "  "+k+": "+value)
		}
	}
	return lines
}

// renderToolStreams renders the separately stored stdout/stderr of a tool
// invocation, stdout fold-limited like inline results, stderr capped at
// ten lines.
func renderToolStreams(result map[string]any, foldLines int) []string {
	var lines []string
	if stdout, _ := result["stdout"].(string); stdout != "" {
		lines = append(lines, indentFolded(stdout, foldLines)...)
	}
	if stderr, _ := result["stderr"].(string); stderr != "" {
		lines = append(lines, "  [stderr]")
		errLines := strings.Split(stderr, "\n")
		if len(errLines) > 10 {
			errLines = errLines[:10]
		}
		for _, l := range errLines {
			lines = append(lines, "  "+l)
		}
	}
	return lines
}

// indentFolded applies the fold transform to text and indents every
// resulting line two spaces.
func indentFolded(text string, foldLines int) []string {
	folded := strings.Split(foldString(text, foldLines), "\n")
	out := make([]string, len(folded))
	for i, l := range folded {
		out[i] = "  " + l
	}
	return out
}
