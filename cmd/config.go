package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the name of the per-directory configuration file.
const ConfigFile = "codex.yaml"

// Config carries the persistent CLI settings. Flags override anything
// read from codex.yaml.
type Config struct {
	// Store is the storage root directory.
	Store string `yaml:"store"`

	// Backend selects the storage backend: "file" or "badger".
	Backend string `yaml:"backend"`

	// RemoteURL is the optional seed endpoint used at bootstrap.
	RemoteURL string `yaml:"remote_url"`

	// SeedRepo is the optional git repository of seed nodes.
	SeedRepo string `yaml:"seed_repo"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Store:   "./fractal-storage",
		Backend: "file",
	}
}

// LoadConfig reads codex.yaml from dir, falling back to defaults when
// the file does not exist.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Store == "" {
		cfg.Store = DefaultConfig().Store
	}
	if cfg.Backend == "" {
		cfg.Backend = DefaultConfig().Backend
	}
	return cfg, nil
}

// SaveConfig writes the configuration to codex.yaml in dir.
func SaveConfig(dir string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644)
}
