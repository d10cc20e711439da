package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"
)

// ErrNotRepository indicates the working copy location exists but is not
// a git repository.
var ErrNotRepository = errors.New("not a git repository")

// Service manages local working copies of content repositories. It
// implements orchestrator.SourceTree.
type Service struct {
	log *logging.Logger
}

// NewService creates a repository service.
func NewService(log *logging.Logger) *Service {
	return &Service{log: log}
}

// Resolve clones url under workDir, or pulls an existing working copy,
// and returns its local path. A local path (no scheme) that already
// exists on disk is used in place without cloning.
func (s *Service) Resolve(ctx context.Context, url, workDir string) (string, error) {
	if isLocalPath(url) {
		url = strings.TrimPrefix(url, "file://")
		if _, err := os.Stat(url); err != nil {
			return "", fmt.Errorf("local repository %s: %w", url, err)
		}
		s.log.Debug(ctx, "using local repository in place", zap.String("path", url))
		return filepath.Clean(url), nil
	}

	localPath := filepath.Join(workDir, s.DisplayName(url))

	if _, err := os.Stat(filepath.Join(localPath, ".git")); err == nil {
		return localPath, s.update(ctx, localPath)
	}

	s.log.Info(ctx, "cloning repository", zap.String("url", url), zap.String("path", localPath))
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	_, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{
		URL:   url,
		Depth: 1,
	})
	if err != nil {
		return "", fmt.Errorf("cloning %s: %w", url, err)
	}

	return localPath, nil
}

// update fast-forwards an existing working copy. An already-up-to-date
// copy is not an error.
func (s *Service) update(ctx context.Context, localPath string) error {
	repo, err := git.PlainOpen(localPath)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrNotRepository, localPath)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("opening worktree: %w", err)
	}

	s.log.Info(ctx, "updating existing working copy", zap.String("path", localPath))
	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pulling %s: %w", localPath, err)
	}

	return nil
}

// Structure renders a depth-limited, indentation-based snapshot of the
// tree rooted at path. Hidden entries and git internals are omitted;
// directories carry a trailing slash. Entries are sorted directories
// first, then lexically, so the snapshot is stable across runs.
func (s *Service) Structure(path string, maxDepth int) (string, error) {
	var b strings.Builder
	if err := s.renderDir(&b, path, 0, maxDepth); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Service) renderDir(b *strings.Builder, dir string, depth, maxDepth int) error {
	if depth >= maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if entry.IsDir() {
			b.WriteString(indent + name + "/\n")
			if err := s.renderDir(b, filepath.Join(dir, name), depth+1, maxDepth); err != nil {
				// A subdirectory that vanished mid-walk is not fatal
				// to the snapshot.
				if errors.Is(err, fs.ErrNotExist) {
					continue
				}
				return err
			}
		} else {
			b.WriteString(indent + name + "\n")
		}
	}

	return nil
}

// DisplayName derives the repository name from its URL: the final path
// segment without a trailing ".git".
func (s *Service) DisplayName(url string) string {
	name := strings.TrimSuffix(url, "/")
	name = strings.TrimSuffix(name, ".git")

	// SSH form: git@host:owner/repo
	if idx := strings.LastIndex(name, ":"); idx >= 0 && !strings.Contains(name[idx:], "/") {
		return name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}

// isLocalPath reports whether url refers to the local filesystem rather
// than a remote.
func isLocalPath(url string) bool {
	if strings.Contains(url, "://") {
		return strings.HasPrefix(url, "file://")
	}
	// git@host:path SSH shorthand
	if strings.Contains(url, "@") && strings.Contains(url, ":") {
		return false
	}
	return true
}
