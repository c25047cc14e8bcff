// Package config loads and persists mend configuration from .mend/config.json.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete mend configuration
type Config struct {
	Version  int    `json:"version" mapstructure:"version"`
	RepoRoot string `json:"repoRoot" mapstructure:"repoRoot"`

	Retrieval  RetrievalConfig  `json:"retrieval" mapstructure:"retrieval"`
	Synthesis  SynthesisConfig  `json:"synthesis" mapstructure:"synthesis"`
	Validation ValidationConfig `json:"validation" mapstructure:"validation"`
	Cache      CacheConfig      `json:"cache" mapstructure:"cache"`
	Logging    LoggingConfig    `json:"logging" mapstructure:"logging"`
}

// RetrievalConfig bounds the context retrieval engine
type RetrievalConfig struct {
	MaxSnippets      int `json:"maxSnippets" mapstructure:"maxSnippets"`
	MaxSnippetLines  int `json:"maxSnippetLines" mapstructure:"maxSnippetLines"`
	VocabSize        int `json:"vocabSize" mapstructure:"vocabSize"`
	MaxHistoryFiles  int `json:"maxHistoryFiles" mapstructure:"maxHistoryFiles"`
	CommitsPerFile   int `json:"commitsPerFile" mapstructure:"commitsPerFile"`
	CommitScanDepth  int `json:"commitScanDepth" mapstructure:"commitScanDepth"`
	RelatedCommits   int `json:"relatedCommits" mapstructure:"relatedCommits"`
}

// SynthesisConfig controls unified-diff emission
type SynthesisConfig struct {
	ContextLines  int `json:"contextLines" mapstructure:"contextLines"`
	DefaultIndent int `json:"defaultIndent" mapstructure:"defaultIndent"`
}

// ValidationConfig controls hunk checking and fuzzy relocation
type ValidationConfig struct {
	MatchThreshold    float64 `json:"matchThreshold" mapstructure:"matchThreshold"`
	RelocateThreshold float64 `json:"relocateThreshold" mapstructure:"relocateThreshold"`
	SearchWindow      int     `json:"searchWindow" mapstructure:"searchWindow"`
}

// CacheConfig contains context cache configuration
type CacheConfig struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	TtlSeconds int  `json:"ttlSeconds" mapstructure:"ttlSeconds"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		RepoRoot: ".",
		Retrieval: RetrievalConfig{
			MaxSnippets:     5,
			MaxSnippetLines: 50,
			VocabSize:       1000,
			MaxHistoryFiles: 3,
			CommitsPerFile:  5,
			CommitScanDepth: 100,
			RelatedCommits:  5,
		},
		Synthesis: SynthesisConfig{
			ContextLines:  3,
			DefaultIndent: 4,
		},
		Validation: ValidationConfig{
			MatchThreshold:    0.8,
			RelocateThreshold: 0.7,
			SearchWindow:      20,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TtlSeconds: 3600,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load loads configuration from .mend/config.json under repoRoot.
// A missing config file yields the defaults.
func Load(repoRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(repoRoot, ".mend"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills zero values with defaults so a sparse config file
// never disables a bound.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Retrieval.MaxSnippets == 0 {
		c.Retrieval.MaxSnippets = d.Retrieval.MaxSnippets
	}
	if c.Retrieval.MaxSnippetLines == 0 {
		c.Retrieval.MaxSnippetLines = d.Retrieval.MaxSnippetLines
	}
	if c.Retrieval.VocabSize == 0 {
		c.Retrieval.VocabSize = d.Retrieval.VocabSize
	}
	if c.Retrieval.MaxHistoryFiles == 0 {
		c.Retrieval.MaxHistoryFiles = d.Retrieval.MaxHistoryFiles
	}
	if c.Retrieval.CommitsPerFile == 0 {
		c.Retrieval.CommitsPerFile = d.Retrieval.CommitsPerFile
	}
	if c.Retrieval.CommitScanDepth == 0 {
		c.Retrieval.CommitScanDepth = d.Retrieval.CommitScanDepth
	}
	if c.Retrieval.RelatedCommits == 0 {
		c.Retrieval.RelatedCommits = d.Retrieval.RelatedCommits
	}
	if c.Synthesis.ContextLines == 0 {
		c.Synthesis.ContextLines = d.Synthesis.ContextLines
	}
	if c.Synthesis.DefaultIndent == 0 {
		c.Synthesis.DefaultIndent = d.Synthesis.DefaultIndent
	}
	if c.Validation.MatchThreshold == 0 {
		c.Validation.MatchThreshold = d.Validation.MatchThreshold
	}
	if c.Validation.RelocateThreshold == 0 {
		c.Validation.RelocateThreshold = d.Validation.RelocateThreshold
	}
	if c.Validation.SearchWindow == 0 {
		c.Validation.SearchWindow = d.Validation.SearchWindow
	}
	if c.Cache.TtlSeconds == 0 {
		c.Cache.TtlSeconds = d.Cache.TtlSeconds
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
}

// Save writes the configuration to .mend/config.json
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".mend")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != 1 {
		return &ConfigError{Field: "version", Message: "unsupported config version"}
	}
	if c.Validation.MatchThreshold <= 0 || c.Validation.MatchThreshold > 1 {
		return &ConfigError{Field: "validation.matchThreshold", Message: "must be in (0, 1]"}
	}
	if c.Validation.RelocateThreshold <= 0 || c.Validation.RelocateThreshold > 1 {
		return &ConfigError{Field: "validation.relocateThreshold", Message: "must be in (0, 1]"}
	}
	if c.Validation.SearchWindow < 0 {
		return &ConfigError{Field: "validation.searchWindow", Message: "must be non-negative"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
