// Package toc loads and validates the TOC.yml navigation manifest.
package toc

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyrsmithlabs/contentd/internal/orchestrator"
	"gopkg.in/yaml.v3"
)

// Source reads the existing manifest and validates replacement content.
// It implements orchestrator.TOCSource.
type Source struct{}

// NewSource creates a manifest source.
func NewSource() *Source {
	return &Source{}
}

// Load returns the manifest content at dir, or "" if no manifest exists
// yet. A missing manifest is normal for a directory that has never been
// indexed.
func (s *Source) Load(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, orchestrator.TOCFileName))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", orchestrator.TOCFileName, err)
	}
	return string(data), nil
}

// Validate rejects replacement content that is empty or not parseable
// YAML. The oracle must return the complete document, so anything that
// fails here would corrupt the manifest on apply.
func (s *Source) Validate(content string) error {
	if content == "" {
		return fmt.Errorf("manifest content is empty")
	}

	var doc interface{}
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return fmt.Errorf("manifest is not valid YAML: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("manifest parses to an empty document")
	}

	return nil
}

// EntryCount reports the number of top-level entries in a manifest
// document, for summary reporting. Unparseable content counts as zero.
func (s *Source) EntryCount(content string) int {
	var entries []interface{}
	if err := yaml.Unmarshal([]byte(content), &entries); err != nil {
		return 0
	}
	return len(entries)
}

var _ orchestrator.TOCSource = (*Source)(nil)
