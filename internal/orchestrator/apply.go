package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"go.uber.org/zap"
)

// ApplyEngine converts generation and TOC outputs into file mutations.
// It runs only in apply mode; preview runs never reach it.
type ApplyEngine struct {
	log *logging.Logger

	// validateTOC rejects replacement manifest content before it
	// overwrites the existing file. Nil disables validation.
	validateTOC func(content string) error
}

// NewApplyEngine creates an ApplyEngine. validateTOC may be nil.
func NewApplyEngine(log *logging.Logger, validateTOC func(string) error) *ApplyEngine {
	return &ApplyEngine{log: log, validateTOC: validateTOC}
}

// ApplyGeneration writes successful generation entries under workingDir.
// All CREATE results are applied before any UPDATE result; within each
// group original decision order is preserved. Entries that failed or
// carry no content are skipped silently: their failure is already
// recorded per-entry.
func (e *ApplyEngine) ApplyGeneration(ctx context.Context, results *GenerationResults, workingDir string) error {
	e.log.Info(ctx, "applying generated content to working copy")

	for _, entry := range results.CreateResults {
		if !entry.Success || entry.Content == "" {
			continue
		}
		if err := e.writeFile(ctx, workingDir, entry.Decision.Filename, entry.Content, "created"); err != nil {
			return err
		}
	}

	for _, entry := range results.UpdateResults {
		if !entry.Success || entry.UpdatedContent == "" {
			continue
		}
		if err := e.writeFile(ctx, workingDir, entry.Decision.Filename, entry.UpdatedContent, "updated"); err != nil {
			return err
		}
	}

	return nil
}

// ApplyTOC replaces the manifest at workingDir wholesale with the
// returned document. The oracle is expected to return the complete
// document, not a diff.
func (e *ApplyEngine) ApplyTOC(ctx context.Context, results *TOCResults, workingDir string) error {
	if results.Content == "" {
		return fmt.Errorf("no TOC content to apply")
	}

	if e.validateTOC != nil {
		if err := e.validateTOC(results.Content); err != nil {
			return fmt.Errorf("replacement TOC is not valid: %w", err)
		}
	}

	if err := e.writeFile(ctx, workingDir, TOCFileName, results.Content, "updated"); err != nil {
		return err
	}

	if len(results.EntriesAdded) > 0 {
		e.log.Info(ctx, "added entries to TOC",
			zap.Int("count", len(results.EntriesAdded)),
			zap.Strings("entries", results.EntriesAdded))
	}

	return nil
}

func (e *ApplyEngine) writeFile(ctx context.Context, workingDir, filename, content, verb string) error {
	path := filepath.Join(workingDir, filename)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", filename, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filename, err)
	}

	e.log.Info(ctx, verb+" file", zap.String("filename", filename))
	return nil
}
