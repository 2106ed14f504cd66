// Package config resolves runtime settings from an optional .env file and
// EXAMCOACH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the CLI.
type Config struct {
	// DBPath is the SQLite file. Empty means the store's default path.
	DBPath string
	// CatalogDir holds objectives.json, questions.json and the rest.
	CatalogDir string
	// PolicyPath optionally overrides the latest catalog policy.
	PolicyPath string
	// LogMode is "dev", "prod" or "quiet".
	LogMode string
	// LogHashSalt salts hashed identifiers in logs.
	LogHashSalt string
	// DefaultSeed seeds exam generation when no --seed is given.
	DefaultSeed string
	// QueueLimit caps the review queue; 0 means no cap.
	QueueLimit int
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		CatalogDir:  "catalog",
		LogMode:     "quiet",
		DefaultSeed: "examcoach",
		QueueLimit:  20,
	}
}

// Load reads .env files (missing files are ignored) and then environment
// variables over Default.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := Default()

	if v := os.Getenv("EXAMCOACH_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("EXAMCOACH_CATALOG"); v != "" {
		cfg.CatalogDir = v
	}
	if v := os.Getenv("EXAMCOACH_POLICY"); v != "" {
		cfg.PolicyPath = v
	}
	if v := os.Getenv("EXAMCOACH_LOG_MODE"); v != "" {
		cfg.LogMode = v
	}
	if v := os.Getenv("EXAMCOACH_LOG_SALT"); v != "" {
		cfg.LogHashSalt = v
	}
	if v := os.Getenv("EXAMCOACH_SEED"); v != "" {
		cfg.DefaultSeed = v
	}
	if v := os.Getenv("EXAMCOACH_QUEUE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("EXAMCOACH_QUEUE_LIMIT=%q is not an integer: %w", v, err)
		}
		cfg.QueueLimit = n
	}
	return cfg, nil
}

// Validate checks that the catalog directory exists and settings are sane.
func (c Config) Validate() error {
	if c.CatalogDir == "" {
		return fmt.Errorf("catalog directory is required")
	}
	info, err := os.Stat(c.CatalogDir)
	if err != nil {
		return fmt.Errorf("catalog directory %s: %w", c.CatalogDir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("catalog path %s is not a directory", c.CatalogDir)
	}
	if c.PolicyPath != "" {
		if _, err := os.Stat(c.PolicyPath); err != nil {
			return fmt.Errorf("policy file %s: %w", c.PolicyPath, err)
		}
	}
	if c.QueueLimit < 0 {
		return fmt.Errorf("queue limit must not be negative, got %d", c.QueueLimit)
	}
	return nil
}

// AbsCatalogDir returns CatalogDir as an absolute path.
func (c Config) AbsCatalogDir() (string, error) {
	return filepath.Abs(c.CatalogDir)
}
