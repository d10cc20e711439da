package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithFile_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.Run.Phases)
	assert.Equal(t, 3, cfg.Repo.MaxDepth)
	assert.Equal(t, "anthropic", cfg.Oracle.Provider)
	assert.False(t, cfg.Run.Apply)
}

func TestLoadWithFile_YAMLValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
repo:
  url: https://github.com/example/docs.git
  max_depth: 5
run:
  phases: "23"
  apply: true
  content_goal: "document the ingestion API"
  materials:
    - notes/meeting.md
oracle:
  provider: openai
  api_key: sk-test
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/example/docs.git", cfg.Repo.URL)
	assert.Equal(t, 5, cfg.Repo.MaxDepth)
	assert.Equal(t, "23", cfg.Run.Phases)
	assert.True(t, cfg.Run.Apply)
	assert.Equal(t, []string{"notes/meeting.md"}, cfg.Run.Materials)
	assert.Equal(t, "openai", cfg.Oracle.Provider)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey.Value())
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadWithFile_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
run:
  phases: "2"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONTENTD_RUN_PHASES", "all")
	t.Setenv("CONTENTD_ORACLE_API_KEY", "from-env")

	cfg, err := LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.Run.Phases)
	assert.Equal(t, "from-env", cfg.Oracle.APIKey.Value())
}

func TestLoadWithFile_InvalidProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
oracle:
  provider: gemini
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle.provider")
}

func TestLoadWithFile_OversizedFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	big := make([]byte, maxConfigFileSize+1)
	for i := range big {
		big[i] = '#'
	}
	require.NoError(t, os.WriteFile(path, big, 0o600))

	_, err := LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum size")
}

func TestDefault_Valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}
