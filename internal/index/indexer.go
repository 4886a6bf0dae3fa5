package index

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aicb-dev/aicb/internal/parse"
	"github.com/aicb-dev/aicb/internal/scan"
)

type Stats struct {
	Scanned int
	Updated int
	Skipped int
	Pruned  int
	Errors  int
}

func (s Stats) String() string {
	return fmt.Sprintf("scanned=%d updated=%d skipped=%d pruned=%d errors=%d",
		s.Scanned, s.Updated, s.Skipped, s.Pruned, s.Errors)
}

// IndexAll scans every configured root and brings the index up to date.
// Conversations whose file mtime and size are unchanged are skipped;
// conversations whose files disappeared are pruned.
func IndexAll(db *DB, claudeRoot, geminiRoot, chatgptPath string) (Stats, error) {
	var stats Stats

	files, err := scan.ScanRoots(claudeRoot, geminiRoot, chatgptPath)
	if err != nil {
		return stats, fmt.Errorf("scan: %w", err)
	}
	stats.Scanned = len(files)

	// track which conversations we see, for pruning
	seenKeys := make(map[string]struct{})

	for _, fi := range files {
		convs, err := parse.LoadConversations(fi.Path, formatFor(fi.Source))
		if err != nil {
			stats.Errors++
			slog.Warn("parse failed", "path", fi.Path, "error", err)
			continue
		}

		for _, conv := range convs {
			key := convKey(fi.Source, conv.ID)
			seenKeys[key] = struct{}{}

			needs, err := needsUpdate(db, key, fi.Mtime, fi.Size)
			if err != nil {
				stats.Errors++
				continue
			}
			if !needs {
				stats.Skipped++
				continue
			}

			if err := indexConversation(db, key, fi, conv); err != nil {
				stats.Errors++
				slog.Warn("index failed", "path", fi.Path, "error", err)
				continue
			}
			stats.Updated++
		}
	}

	// prune conversations whose files no longer exist
	pruned, err := pruneConversations(db, seenKeys)
	if err != nil {
		return stats, fmt.Errorf("prune: %w", err)
	}
	stats.Pruned = pruned

	return stats, nil
}

func formatFor(source string) parse.Format {
	switch source {
	case "claude":
		return parse.FormatClaude
	case "gemini":
		return parse.FormatGemini
	case "chatgpt":
		return parse.FormatChatGPT
	default:
		return parse.FormatAuto
	}
}

// convKey namespaces conversation ids by source, so a ChatGPT export and a
// Claude project can carry the same raw id without colliding.
func convKey(source, id string) string {
	return source + ":" + id
}

func needsUpdate(db *DB, convKey string, mtime, size int64) (bool, error) {
	info, err := db.GetFreshness(convKey)
	if err != nil {
		return false, err
	}
	if info == nil {
		return true, nil // new conversation
	}
	return info.Mtime != mtime || info.Size != size, nil
}

func indexConversation(db *DB, key string, fi scan.FileInfo, conv *parse.Conversation) error {
	// delete old data first
	if err := db.DeleteConversation(key); err != nil {
		return err
	}

	tx, err := db.Raw().Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO conversations (conv_key, source, file_path, project, title, created_at, updated_at, mtime, size)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key,
		fi.Source,
		fi.Path,
		conv.Metadata["project"],
		conv.Title,
		tsString(conv.CreateTime),
		tsString(conv.UpdateTime),
		fi.Mtime,
		fi.Size,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO messages (conv_key, seq, ts, role, text)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, m := range conv.Messages {
		if _, err := stmt.Exec(key, i, tsString(m.CreateTime), string(m.Role), m.Content); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func tsString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func pruneConversations(db *DB, seenKeys map[string]struct{}) (int, error) {
	allKeys, err := db.AllConvKeys()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range allKeys {
		if _, ok := seenKeys[key]; !ok {
			if err := db.DeleteConversation(key); err != nil {
				return pruned, err
			}
			pruned++
		}
	}
	return pruned, nil
}
