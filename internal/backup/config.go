// Package backup copies configured source directories into timestamped
// snapshots under a destination directory.
package backup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigFile is the JSON config path used when none is given.
const DefaultConfigFile = "backup_config.json"

// Config is the persisted backup configuration.
type Config struct {
	Sources         []string `json:"backup_sources"`
	Destination     string   `json:"backup_destination"`
	ExcludePatterns []string `json:"exclude_patterns"`
}

// defaultConfig returns the configuration written on first use.
func defaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		Sources: []string{
			filepath.Join(home, "Documents"),
			filepath.Join(home, "Desktop"),
		},
		Destination: filepath.Join(home, "Backups"),
		ExcludePatterns: []string{
			"*.tmp",
			"*.log",
			"__pycache__",
			".git",
		},
	}
}

// LoadConfig reads the config at path, creating it with defaults when it
// does not exist.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read backup config: %w", err)
		}
		cfg := defaultConfig()
		if err := cfg.Save(path); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse backup config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode backup config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write backup config: %w", err)
	}
	return nil
}

// Excluded reports whether path matches any exclude pattern. A *-prefixed
// pattern matches as a path suffix; anything else matches as a substring.
func (c *Config) Excluded(path string) bool {
	for _, pattern := range c.ExcludePatterns {
		if strings.HasPrefix(pattern, "*") {
			if strings.HasSuffix(path, pattern[1:]) {
				return true
			}
		} else if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}
