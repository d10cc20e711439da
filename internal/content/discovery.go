package content

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyrsmithlabs/contentd/internal/logging"
	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"go.uber.org/zap"
)

// maxChunkExcerpt caps the content carried by a single discovered chunk.
const maxChunkExcerpt = 4 * 1024

// Discovery finds existing markdown content under the working directory
// and splits it into heading-delimited chunks. It implements
// orchestrator.ChunkDiscoverer.
type Discovery struct {
	log *logging.Logger
}

// NewDiscovery creates a chunk discoverer.
func NewDiscovery(log *logging.Logger) *Discovery {
	return &Discovery{log: log}
}

// Discover walks dir for *.md files and chunks each one. File paths in
// the returned chunks are relative to dir.
func (d *Discovery) Discover(ctx context.Context, dir string, brief orchestrator.Brief) ([]orchestrator.Chunk, error) {
	var chunks []orchestrator.Chunk

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		fileChunks := chunkMarkdown(rel, string(data))
		chunks = append(chunks, fileChunks...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info(ctx, "discovered content chunks",
		zap.String("directory", dir),
		zap.Int("chunks", len(chunks)))

	return chunks, nil
}

// chunkMarkdown splits a document at top- and second-level headings. A
// document without headings becomes a single chunk.
func chunkMarkdown(file, text string) []orchestrator.Chunk {
	lines := strings.Split(text, "\n")

	var chunks []orchestrator.Chunk
	var heading string
	var body []string

	flush := func() {
		content := strings.TrimSpace(strings.Join(body, "\n"))
		if content == "" && heading == "" {
			return
		}
		if len(content) > maxChunkExcerpt {
			content = content[:maxChunkExcerpt]
		}
		chunks = append(chunks, orchestrator.Chunk{
			File:    file,
			Heading: heading,
			Content: content,
		})
		body = body[:0]
	}

	for _, line := range lines {
		if isHeading(line) {
			flush()
			heading = strings.TrimSpace(strings.TrimLeft(line, "# "))
			continue
		}
		body = append(body, line)
	}
	flush()

	return chunks
}

func isHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "# ") || strings.HasPrefix(trimmed, "## ")
}

var _ orchestrator.ChunkDiscoverer = (*Discovery)(nil)
