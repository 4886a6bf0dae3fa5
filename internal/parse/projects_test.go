package parse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeProjectPath(t *testing.T) {
	require.Equal(t, "-home-user-my-project", EncodeProjectPath("/home/user/my_project"))
	require.Equal(t, "-home-user-a-b", EncodeProjectPath("/home/user/a..b"))
	require.Equal(t, "-srv-data", EncodeProjectPath("/srv/data/"))
}

func TestFindProjectForDir(t *testing.T) {
	root := t.TempDir()
	encoded := EncodeProjectPath("/home/user/demo")
	require.NoError(t, os.MkdirAll(filepath.Join(root, encoded), 0o755))

	// exact match and walk-up from a subdirectory
	require.Equal(t, filepath.Join(root, encoded), FindProjectForDir(root, "/home/user/demo"))
	require.Equal(t, filepath.Join(root, encoded), FindProjectForDir(root, "/home/user/demo/internal/deep"))
	require.Equal(t, "", FindProjectForDir(root, "/home/other"))
}

func TestListProjects(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"-p-one", "-p-two"} {
		dir := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "s.jsonl"), []byte("{}\n"), 0o644))
	}

	projects, err := ListProjects(root)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	for _, p := range projects {
		require.Equal(t, 1, p.Sessions)
		require.False(t, p.LastModified.IsZero())
	}
}
