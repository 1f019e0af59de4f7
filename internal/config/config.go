package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the flat CTR configuration
type Config struct {
	Version      string `json:"version"`
	DatabasePath string `json:"database_path,omitempty"` // overrides ~/.ctr/ctr.db
	CrewName     string `json:"crew_name,omitempty"`     // default crew name for new reports
	CrewNumber   string `json:"crew_number,omitempty"`
}

// LoadConfig reads .ctr/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".ctr", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	ctrDir := filepath.Join(dir, ".ctr")
	if err := os.MkdirAll(ctrDir, 0755); err != nil {
		return fmt.Errorf("failed to create .ctr dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(ctrDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
