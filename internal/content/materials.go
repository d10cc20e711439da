// Package content provides the content-side processors the pipeline
// consumes: support-material summarization and markdown chunk discovery.
package content

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"go.uber.org/zap"
)

// maxMaterialExcerpt caps how much of a material file is read into a
// prompt or fallback summary.
const maxMaterialExcerpt = 8 * 1024

// Summarizer condenses raw material text. The oracle client satisfies
// this; tests substitute fakes.
type Summarizer interface {
	Summarize(ctx context.Context, source, excerpt string) (string, error)
}

// MaterialProcessor turns support-material files into summaries for the
// oracle. It implements orchestrator.MaterialProcessor.
type MaterialProcessor struct {
	log        *logging.Logger
	summarizer Summarizer
}

// NewMaterialProcessor creates a material processor. summarizer may be
// nil, in which case raw excerpts stand in for summaries.
func NewMaterialProcessor(log *logging.Logger, summarizer Summarizer) *MaterialProcessor {
	return &MaterialProcessor{log: log, summarizer: summarizer}
}

// Process reads each material file and produces a summary per file.
// Relative paths are tried as given and then under repoPath. A file that
// cannot be read, or a summarizer failure, degrades to a warning plus a
// raw excerpt; materials never fail Phase 1 on their own.
func (p *MaterialProcessor) Process(ctx context.Context, paths []string, repoPath string) ([]orchestrator.MaterialSummary, error) {
	summaries := make([]orchestrator.MaterialSummary, 0, len(paths))

	for _, path := range paths {
		excerpt, err := p.readExcerpt(path, repoPath)
		if err != nil {
			p.log.Warn(ctx, "skipping unreadable support material",
				zap.String("path", path), zap.Error(err))
			continue
		}

		summary := excerpt
		if p.summarizer != nil {
			s, err := p.summarizer.Summarize(ctx, path, excerpt)
			if err != nil {
				p.log.Warn(ctx, "material summarization failed, using raw excerpt",
					zap.String("path", path), zap.Error(err))
			} else {
				summary = s
			}
		}

		summaries = append(summaries, orchestrator.MaterialSummary{
			Source:  path,
			Summary: summary,
		})
	}

	return summaries, nil
}

func (p *MaterialProcessor) readExcerpt(path, repoPath string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil && !filepath.IsAbs(path) && repoPath != "" {
		data, err = os.ReadFile(filepath.Join(repoPath, path))
	}
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(data))
	if len(text) > maxMaterialExcerpt {
		text = text[:maxMaterialExcerpt]
	}
	return text, nil
}

var _ orchestrator.MaterialProcessor = (*MaterialProcessor)(nil)
