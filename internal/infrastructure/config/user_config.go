package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig holds per-user CLI defaults, kept in ~/.empire/preferences.yaml
// apart from the server config so switching villages never touches it.
type UserConfig struct {
	DefaultPlayerID  *int   `yaml:"default_player_id,omitempty"`
	DefaultVillageID string `yaml:"default_village_id,omitempty"`
}

// UserConfigHandler reads and writes one preferences file
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler opens ~/.empire/preferences.yaml
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".empire", "preferences.yaml"))
}

// NewUserConfigHandlerAt opens a preferences file at an explicit path,
// creating its directory.
func NewUserConfigHandlerAt(configPath string) (*UserConfigHandler, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}
	return &UserConfigHandler{configPath: configPath}, nil
}

// Load returns the stored preferences; a missing file yields empty preferences
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	data, err := os.ReadFile(h.configPath)
	if errors.Is(err, os.ErrNotExist) {
		return &UserConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config %s: %w", h.configPath, err)
	}
	return &cfg, nil
}

// Save replaces the preferences file. The write goes through a temp file
// in the same directory so a crash never leaves a truncated file.
func (h *UserConfigHandler) Save(cfg *UserConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(h.configPath), ".preferences-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write user config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}
	return os.Rename(tmp.Name(), h.configPath)
}

// update loads, applies fn and saves
func (h *UserConfigHandler) update(fn func(*UserConfig)) error {
	cfg, err := h.Load()
	if err != nil {
		return err
	}
	fn(cfg)
	return h.Save(cfg)
}

// SetDefaultPlayer records the player used when --player-id is omitted
func (h *UserConfigHandler) SetDefaultPlayer(playerID int) error {
	return h.update(func(c *UserConfig) { c.DefaultPlayerID = &playerID })
}

// SetDefaultVillage records the village used when --village is omitted
func (h *UserConfigHandler) SetDefaultVillage(villageID string) error {
	return h.update(func(c *UserConfig) { c.DefaultVillageID = villageID })
}

// ClearDefaults removes the default player and village
func (h *UserConfigHandler) ClearDefaults() error {
	return h.Save(&UserConfig{})
}

// GetConfigPath returns the path to the preferences file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
