package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(logging.NewTestLogger().Logger)
}

func TestDisplayName(t *testing.T) {
	svc := newTestService()

	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/example/docs.git", "docs"},
		{"https://github.com/example/docs", "docs"},
		{"https://github.com/example/docs/", "docs"},
		{"git@github.com:example/user-guide.git", "user-guide"},
		{"/srv/repos/handbook", "handbook"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.DisplayName(tt.url))
		})
	}
}

func TestResolve_LocalPathUsedInPlace(t *testing.T) {
	svc := newTestService()
	dir := t.TempDir()

	got, err := svc.Resolve(context.Background(), dir, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)
}

func TestResolve_MissingLocalPath(t *testing.T) {
	svc := newTestService()

	_, err := svc.Resolve(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)
}

func TestStructure_DepthLimitAndOrdering(t *testing.T) {
	svc := newTestService()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs", "api"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "index.md"), []byte("# docs"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "api", "deep.md"), []byte("# deep"), 0o644))

	snapshot, err := svc.Structure(root, 2)
	require.NoError(t, err)

	// Directories first, hidden entries omitted, depth capped at 2.
	assert.Equal(t, "assets/\ndocs/\n  api/\n  index.md\nREADME.md\n", snapshot)
	assert.NotContains(t, snapshot, ".git")
	assert.NotContains(t, snapshot, "deep.md")
}

func TestStructure_MissingRoot(t *testing.T) {
	svc := newTestService()

	_, err := svc.Structure(filepath.Join(t.TempDir(), "missing"), 2)
	require.Error(t, err)
}
