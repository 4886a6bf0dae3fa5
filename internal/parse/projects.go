package parse

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Project describes one Claude project directory.
type Project struct {
	Name         string
	Path         string
	Sessions     int
	LastModified time.Time
}

var nonProjectChars = regexp.MustCompile(`[^a-zA-Z0-9-]+`)
var dashRuns = regexp.MustCompile(`-+`)

// EncodeProjectPath encodes an absolute directory path the way the Claude
// CLI names its project directories: /home/user/my_project becomes
// -home-user-my-project.
func EncodeProjectPath(path string) string {
	s := strings.TrimPrefix(path, "/")
	s = nonProjectChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return "-" + s
}

// FindProjectForDir locates the project directory under root that covers
// dir, walking up the directory tree until an encoded ancestor matches.
// Returns "" when no project matches.
func FindProjectForDir(root, dir string) string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			existing[e.Name()] = true
		}
	}

	current := filepath.Clean(dir)
	for {
		if encoded := EncodeProjectPath(current); existing[encoded] {
			return filepath.Join(root, encoded)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return ""
		}
		current = parent
	}
}

// ListProjects enumerates the project directories under a Claude root with
// session counts, most recently modified first.
func ListProjects(root string) ([]Project, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var projects []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		sessions, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
		if err != nil {
			continue
		}
		var last time.Time
		for _, s := range sessions {
			if info, err := os.Stat(s); err == nil && info.ModTime().After(last) {
				last = info.ModTime()
			}
		}
		projects = append(projects, Project{
			Name:         entry.Name(),
			Path:         dir,
			Sessions:     len(sessions),
			LastModified: last,
		})
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].LastModified.After(projects[j].LastModified)
	})
	return projects, nil
}
