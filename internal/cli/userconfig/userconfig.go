// Package userconfig reads and writes the CLI's settings file at
// ~/.config/remotecfg/config.json.
package userconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// UserConfig is what the CLI remembers between runs. Tokens live in the
// keyring, never here.
type UserConfig struct {
	APIURL     string `json:"api_url"`
	ConsoleURL string `json:"console_url,omitempty"`
	Username   string `json:"username,omitempty"`
}

// Path returns the settings file location
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".config", "remotecfg", "config.json"), nil
}

// Load returns the saved settings, or zero settings before the first login
func Load() (*UserConfig, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := &UserConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg readable by the owner only
func Save(cfg *UserConfig) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode user config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// SetLogin records the API and username of a successful login. An empty
// consoleURL keeps the stored one.
func SetLogin(apiURL, username, consoleURL string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.APIURL = apiURL
	cfg.Username = username
	if consoleURL != "" {
		cfg.ConsoleURL = consoleURL
	}
	return Save(cfg)
}
