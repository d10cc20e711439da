package orchestrator

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"go.uber.org/zap"
)

// SetupResult is the outcome of normalizing and validating the proposed
// working directory against the source tree.
type SetupResult struct {
	Success       bool
	Directory     string // normalized path relative to the repo root
	FullPath      string
	MarkdownCount int
	Error         string
}

// DirectorySetup validates the oracle's directory proposal against the
// actual working copy.
type DirectorySetup struct {
	log *logging.Logger
}

// NewDirectorySetup creates a DirectorySetup.
func NewDirectorySetup(log *logging.Logger) *DirectorySetup {
	return &DirectorySetup{log: log}
}

// Setup normalizes workingDir, resolves it under repoPath, and checks
// that it exists and is a directory. Validation failures are non-fatal:
// they surface in the result, not as an error. A zero markdown census is
// a warning only; the directory is still accepted.
func (s *DirectorySetup) Setup(ctx context.Context, repoPath, workingDir string) SetupResult {
	workingDir = s.normalize(ctx, repoPath, workingDir)
	fullPath := filepath.Join(repoPath, workingDir)

	info, err := os.Stat(fullPath)
	if err != nil {
		return SetupResult{
			Directory: workingDir,
			FullPath:  fullPath,
			Error:     "directory does not exist: " + workingDir,
		}
	}
	if !info.IsDir() {
		return SetupResult{
			Directory: workingDir,
			FullPath:  fullPath,
			Error:     "not a directory: " + workingDir,
		}
	}

	count := s.countMarkdownFiles(ctx, fullPath)

	return SetupResult{
		Success:       true,
		Directory:     workingDir,
		FullPath:      fullPath,
		MarkdownCount: count,
	}
}

// normalize strips a single leading "<repo-name>/" prefix, guarding
// against an oracle echoing the repository name as part of the path.
// Already-normalized input passes through unchanged.
func (s *DirectorySetup) normalize(ctx context.Context, repoPath, workingDir string) string {
	repoName := filepath.Base(repoPath)
	prefix := repoName + "/"
	if strings.HasPrefix(workingDir, prefix) {
		stripped := workingDir[len(prefix):]
		s.log.Info(ctx, "stripped repo name from working directory",
			zap.String("repo_name", repoName),
			zap.String("working_directory", stripped))
		return stripped
	}
	return workingDir
}

// countMarkdownFiles recursively counts *.md files under dir.
func (s *DirectorySetup) countMarkdownFiles(ctx context.Context, dir string) int {
	count := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			count++
		}
		return nil
	})

	if count == 0 {
		s.log.Warn(ctx, "no markdown files found in selected directory",
			zap.String("directory", dir))
		s.log.Info(ctx, "the selected directory may be a non-content directory (e.g. media or assets)")
	}

	return count
}
