// Package config loads critic settings from config file, environment,
// and defaults via viper. Precedence: flags > env (CRITIC_*) > config
// file (~/.critic.yaml) > defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds the validated runtime configuration.
type Settings struct {
	DataDir string `mapstructure:"data-dir"`

	// Model selection for the external services.
	ScoringModel   string `mapstructure:"scoring-model"`
	EmbeddingModel string `mapstructure:"embedding-model"`

	// Seeding behavior.
	CommitCount    int `mapstructure:"commit-count"`     // commits fetched per seed run
	MaxCommitCount int `mapstructure:"max-commit-count"` // hard cap
	BatchSize      int `mapstructure:"batch-size"`       // in-flight scoring/embedding calls
}

// Load reads settings from the given config file (empty = search default
// locations), environment, and defaults.
func Load(configFile string) (*Settings, error) {
	v := viper.New()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".critic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix("CRITIC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	v.SetDefault("data-dir", filepath.Join(home, ".critic"))
	v.SetDefault("scoring-model", "claude-3-5-haiku-20241022")
	v.SetDefault("embedding-model", "text-embedding-3-small")
	v.SetDefault("commit-count", 20)
	v.SetDefault("max-commit-count", 100)
	v.SetDefault("batch-size", 5)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; anything else is a real error.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if s.CommitCount < 1 {
		return nil, fmt.Errorf("commit-count must be at least 1 (got %d)", s.CommitCount)
	}
	if s.CommitCount > s.MaxCommitCount {
		s.CommitCount = s.MaxCommitCount
	}
	if s.BatchSize < 1 {
		s.BatchSize = 1
	}

	return &s, nil
}

// DBPath returns the location of the memory database.
func (s *Settings) DBPath() string {
	return filepath.Join(s.DataDir, "memory.db")
}

// CacheDir returns the directory used for cloned repositories.
func (s *Settings) CacheDir() string {
	return filepath.Join(s.DataDir, "cache", "repos")
}

// EnsureDirs creates the data directories if they do not exist.
func (s *Settings) EnsureDirs() error {
	for _, dir := range []string{s.DataDir, s.CacheDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
