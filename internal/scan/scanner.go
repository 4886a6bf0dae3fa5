package scan

import (
	"os"
	"path/filepath"
	"strings"
)

type FileInfo struct {
	Path   string
	Source string // "claude", "gemini", or "chatgpt"
	Mtime  int64
	Size   int64
}

// ScanRoots enumerates indexable conversation files: Claude session .jsonl
// files under claudeRoot, Gemini checkpoint files under geminiRoot, and a
// single ChatGPT export file when chatgptPath is set. Missing roots are
// skipped, not errors.
func ScanRoots(claudeRoot, geminiRoot, chatgptPath string) ([]FileInfo, error) {
	var files []FileInfo

	if claudeRoot != "" {
		cf, err := scanClaude(claudeRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, cf...)
	}

	if geminiRoot != "" {
		gf, err := scanGemini(geminiRoot)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		files = append(files, gf...)
	}

	if chatgptPath != "" {
		if info, err := os.Stat(chatgptPath); err == nil && !info.IsDir() {
			files = append(files, FileInfo{
				Path:   chatgptPath,
				Source: "chatgpt",
				Mtime:  info.ModTime().Unix(),
				Size:   info.Size(),
			})
		}
	}

	return files, nil
}

func scanClaude(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			base := filepath.Base(path)
			if base == "subagents" {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".jsonl" {
			return nil
		}
		if strings.Contains(filepath.Base(path), "sessions-index") {
			return nil
		}
		files = append(files, FileInfo{
			Path:   path,
			Source: "claude",
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
		return nil
	})
	return files, err
}

func scanGemini(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "checkpoint-") || filepath.Ext(base) != ".json" {
			return nil
		}
		files = append(files, FileInfo{
			Path:   path,
			Source: "gemini",
			Mtime:  info.ModTime().Unix(),
			Size:   info.Size(),
		})
		return nil
	})
	return files, err
}
