// Package config provides configuration loading for contentd.
package config

import (
	"fmt"
	"time"
)

// Config is the full contentd configuration.
type Config struct {
	Repo    RepoConfig    `koanf:"repo"`
	Run     RunConfig     `koanf:"run"`
	Oracle  OracleConfig  `koanf:"oracle"`
	Logging LoggingConfig `koanf:"logging"`
}

// RepoConfig holds source-tree settings.
type RepoConfig struct {
	// URL is the clone URL of the content repository.
	URL string `koanf:"url"`

	// WorkDir is where working copies are cloned.
	WorkDir string `koanf:"work_dir"`

	// MaxDepth limits the structure snapshot sent to the oracle.
	MaxDepth int `koanf:"max_depth"`
}

// RunConfig holds per-run workflow settings.
type RunConfig struct {
	// Phases selects which pipeline phases run: "all", a single digit,
	// or a digit sequence ("234"). The maximum digit is the target.
	Phases string `koanf:"phases"`

	// AutoConfirm accepts oracle proposals without interactive review.
	AutoConfirm bool `koanf:"auto_confirm"`

	// Apply writes generated content and TOC changes to the working
	// copy. When false the run is a preview.
	Apply bool `koanf:"apply"`

	// SkipTOC disables Phase 4 entirely.
	SkipTOC bool `koanf:"skip_toc"`

	// ContentGoal describes what the produced content should achieve.
	ContentGoal string `koanf:"content_goal"`

	// ServiceArea scopes the content to a product or service area.
	ServiceArea string `koanf:"service_area"`

	// Materials are paths to support material files.
	Materials []string `koanf:"materials"`
}

// OracleConfig holds advisory-oracle (LLM) client settings.
type OracleConfig struct {
	Provider   string   `koanf:"provider"` // "anthropic" or "openai"
	Model      string   `koanf:"model"`
	APIKey     Secret   `koanf:"api_key"`
	BaseURL    string   `koanf:"base_url"`
	Timeout    Duration `koanf:"timeout"`
	RateLimit  float64  `koanf:"rate_limit"` // requests per second
	Burst      int      `koanf:"burst"`
	MaxRetries int      `koanf:"max_retries"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// applyDefaults fills in zero values after unmarshal.
func applyDefaults(cfg *Config) {
	if cfg.Repo.WorkDir == "" {
		cfg.Repo.WorkDir = "./work"
	}
	if cfg.Repo.MaxDepth == 0 {
		cfg.Repo.MaxDepth = 3
	}

	if cfg.Run.Phases == "" {
		cfg.Run.Phases = "all"
	}

	if cfg.Oracle.Provider == "" {
		cfg.Oracle.Provider = "anthropic"
	}
	if cfg.Oracle.Timeout == 0 {
		cfg.Oracle.Timeout = Duration(120 * time.Second)
	}
	if cfg.Oracle.RateLimit == 0 {
		cfg.Oracle.RateLimit = 1
	}
	if cfg.Oracle.Burst == 0 {
		cfg.Oracle.Burst = 2
	}
	if cfg.Oracle.MaxRetries == 0 {
		cfg.Oracle.MaxRetries = 3
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Repo.MaxDepth < 1 {
		return fmt.Errorf("repo.max_depth must be >= 1, got %d", c.Repo.MaxDepth)
	}

	if c.Run.Phases == "" {
		return fmt.Errorf("run.phases cannot be empty")
	}

	switch c.Oracle.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("oracle.provider must be 'anthropic' or 'openai', got %q", c.Oracle.Provider)
	}

	if c.Oracle.Timeout.Duration() <= 0 {
		return fmt.Errorf("oracle.timeout must be > 0")
	}
	if c.Oracle.RateLimit <= 0 {
		return fmt.Errorf("oracle.rate_limit must be > 0")
	}

	return nil
}
