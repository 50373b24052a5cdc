// Package config loads and persists the quiver configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/quiverhq/quiver/internal/embed"
	"github.com/quiverhq/quiver/internal/search"
)

// Config is the complete quiver configuration.
type Config struct {
	Search     SearchConfig     `yaml:"search"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Library    LibraryConfig    `yaml:"library"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SearchConfig carries the ranking constants. The defaults are tuned as
// a set; change them together or not at all.
type SearchConfig struct {
	KeywordWeight       float64 `yaml:"keyword_weight"`
	SemanticWeight      float64 `yaml:"semantic_weight"`
	RRFConstant         int     `yaml:"rrf_constant"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	ExactMatchBoost     float64 `yaml:"exact_match_boost"`
	MaxResults          int     `yaml:"max_results"`
}

// EmbeddingsConfig selects the embedding provider.
type EmbeddingsConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Host     string `yaml:"host"`
}

// LibraryConfig locates the chunk store.
type LibraryConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// WatchDir, when set, is re-imported automatically in serve mode.
	WatchDir string `yaml:"watch_dir"`
}

// LoggingConfig configures the log output.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration quiver ships with.
func Default() *Config {
	home := homeDir()
	engineDefaults := search.DefaultConfig()

	return &Config{
		Search: SearchConfig{
			KeywordWeight:       engineDefaults.KeywordWeight,
			SemanticWeight:      engineDefaults.SemanticWeight,
			RRFConstant:         engineDefaults.RRFConstant,
			SimilarityThreshold: engineDefaults.SimilarityThreshold,
			ExactMatchBoost:     engineDefaults.ExactMatchBoost,
			MaxResults:          engineDefaults.MaxResults,
		},
		Embeddings: EmbeddingsConfig{
			Provider: string(embed.ProviderOllama),
			Model:    embed.DefaultOllamaModel,
			Host:     embed.DefaultOllamaHost,
		},
		Library: LibraryConfig{
			Path: filepath.Join(home, ".quiver", "library.db"),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(home, ".quiver", "quiver.log"),
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(homeDir(), ".quiver", "config.yaml")
}

// Load reads the config at path, filling omitted fields with defaults.
// A missing file yields the defaults without error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the engine cannot honor.
func (c *Config) Validate() error {
	s := c.Search
	// The engine treats a zero weight as "unset" and fills the default,
	// so a configured zero would be silently ignored. Reject it here.
	if s.KeywordWeight <= 0 || s.SemanticWeight <= 0 {
		return errors.New("search weights must be positive")
	}
	if s.RRFConstant <= 0 {
		return errors.New("rrf_constant must be positive")
	}
	if s.SimilarityThreshold < 0 || s.SimilarityThreshold >= 1 {
		return errors.New("similarity_threshold must be in [0, 1)")
	}
	if s.ExactMatchBoost < 1 {
		return errors.New("exact_match_boost must be at least 1")
	}
	if s.MaxResults <= 0 {
		return errors.New("max_results must be positive")
	}
	return nil
}

// EngineConfig converts the search section to the engine's config type.
func (c *Config) EngineConfig() search.Config {
	return search.Config{
		KeywordWeight:       c.Search.KeywordWeight,
		SemanticWeight:      c.Search.SemanticWeight,
		RRFConstant:         c.Search.RRFConstant,
		SimilarityThreshold: c.Search.SimilarityThreshold,
		ExactMatchBoost:     c.Search.ExactMatchBoost,
		MaxResults:          c.Search.MaxResults,
	}
}

// LockPath derives the import lock location from the library path.
func (c *Config) LockPath() string {
	return c.Library.Path + ".lock"
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
