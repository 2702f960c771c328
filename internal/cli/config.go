package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk CLI configuration.
type FileConfig struct {
	// Server is the base URL of the dayplan server.
	Server string `yaml:"server"`

	// List is the identifier of the default task list.
	List string `yaml:"list"`

	// Timezone is the IANA zone used for recurrence patterns created
	// from the command line (e.g. "Europe/Oslo"). Empty means the
	// system local zone.
	Timezone string `yaml:"timezone"`
}

// DefaultFileConfig returns an in-memory default configuration.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Server: "http://127.0.0.1:8080",
	}
}

// DefaultConfigPath is where the CLI config lives unless overridden.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine config directory: %w", err)
	}
	return filepath.Join(dir, "dayplan", "config.yaml"), nil
}

// LoadFileConfig reads the YAML config at path. A missing file yields the
// defaults without error.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultFileConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultFileConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveFileConfig writes cfg to path, creating parent directories as needed.
// The file is written with 0600 permissions.
func SaveFileConfig(path string, cfg *FileConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
