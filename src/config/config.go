// Package config provides configuration management for the duckci agents.
//
// Credentials and endpoints come from the environment; the pipeline itself
// (targets, profiles, caches, artifact names, review-bot rules) is described
// by a duckci.yaml manifest checked into the repository under build.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the environment-derived application configuration.
type Config struct {
	// GitHubToken authenticates calls to the hosting platform (posting
	// review comments, reading pull request diffs, commit statuses).
	GitHubToken string

	// ReviewerAPIKey is the credential for the external AI reviewer backend.
	ReviewerAPIKey string

	// RedpandaBrokers lists event stream broker addresses. Empty means local
	// mode with the in-memory broker.
	RedpandaBrokers []string

	// PostgresDSN, when set, enables the Postgres cache and run store
	// backends.
	PostgresDSN string

	// CacheDir is the root directory for the filesystem cache backend.
	CacheDir string

	// ArtifactDir is the root directory for published artifact collections.
	ArtifactDir string
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		GitHubToken:    os.Getenv("GITHUB_TOKEN"),
		ReviewerAPIKey: os.Getenv("REVIEWER_API_KEY"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		CacheDir:       os.Getenv("DUCKCI_CACHE_DIR"),
		ArtifactDir:    os.Getenv("DUCKCI_ARTIFACT_DIR"),
	}

	if brokers := os.Getenv("REDPANDA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.RedpandaBrokers = append(cfg.RedpandaBrokers, b)
			}
		}
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = ".duckci/cache"
	}
	if cfg.ArtifactDir == "" {
		cfg.ArtifactDir = ".duckci/artifacts"
	}

	return cfg, nil
}

// MustLoadFromEnv loads configuration from environment variables and panics
// on error. Useful for initialization in main() where configuration errors
// should be fatal.
func MustLoadFromEnv() *Config {
	cfg, err := LoadFromEnv()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
