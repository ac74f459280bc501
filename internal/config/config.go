package config

import (
	"encoding/json"
	"os"
	"sync"
)

// InstallMode selects how plugin assets are materialized.
type InstallMode string

const (
	// ModeLink installs assets as symlinks into the source tree, so source
	// updates propagate without reinstalling.
	ModeLink InstallMode = "link"
	// ModeCopy installs assets as recursive copies.
	ModeCopy InstallMode = "copy"
)

// AutoUpdateMode defines the update-check behavior.
type AutoUpdateMode string

const (
	// AutoUpdateNotify shows available updates and asks before applying.
	AutoUpdateNotify AutoUpdateMode = "notify"
	// AutoUpdateAuto applies updates without asking.
	AutoUpdateAuto AutoUpdateMode = "auto"
	// AutoUpdateDisabled disables the update check.
	AutoUpdateDisabled AutoUpdateMode = "disabled"
)

// Defaults holds install-time defaults.
type Defaults struct {
	Mode        InstallMode `json:"mode"`        // "link" or "copy"
	Marketplace string      `json:"marketplace"` // marketplace for bare plugin names
}

// Config is plugfarm's own configuration file structure.
type Config struct {
	Locale     string         `json:"locale"` // "auto" or BCP 47 tag
	Defaults   Defaults       `json:"defaults"`
	AutoUpdate AutoUpdateMode `json:"autoUpdate"`
}

var (
	cfg     *Config
	cfgOnce sync.Once
	cfgMu   sync.RWMutex
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Locale: "auto",
		Defaults: Defaults{
			Mode:        ModeLink,
			Marketplace: DefaultMarketplace,
		},
		AutoUpdate: AutoUpdateNotify,
	}
}

// Load loads the configuration from file, falling back to defaults when the
// file is absent.
func Load() (*Config, error) {
	cfgMu.RLock()
	defer cfgMu.RUnlock()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return NewConfig(), nil
		}
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config.Locale == "" {
		config.Locale = "auto"
	}
	if config.Defaults.Mode == "" {
		config.Defaults.Mode = ModeLink
	}
	if config.Defaults.Marketplace == "" {
		config.Defaults.Marketplace = DefaultMarketplace
	}
	if config.AutoUpdate == "" {
		config.AutoUpdate = AutoUpdateNotify
	}

	return &config, nil
}

// Save saves the configuration to file.
func Save(config *Config) error {
	cfgMu.Lock()
	defer cfgMu.Unlock()

	if err := EnsureDir(PlugfarmDir()); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(ConfigPath(), data, 0o644)
}

// Get returns the current configuration (singleton).
func Get() *Config {
	cfgOnce.Do(func() {
		var err error
		cfg, err = Load()
		if err != nil {
			cfg = NewConfig()
		}
	})
	return cfg
}

// GetLocale returns the configured locale.
func GetLocale() string {
	return Get().Locale
}

// SetLocale sets the locale and saves.
func SetLocale(locale string) error {
	config := Get()
	config.Locale = locale
	return Save(config)
}

// GetInstallMode returns the default install mode.
func GetInstallMode() InstallMode {
	return Get().Defaults.Mode
}

// SetInstallMode sets the default install mode and saves.
func SetInstallMode(mode InstallMode) error {
	config := Get()
	config.Defaults.Mode = mode
	return Save(config)
}

// GetDefaultMarketplace returns the marketplace bare names resolve against.
func GetDefaultMarketplace() string {
	return Get().Defaults.Marketplace
}

// SetDefaultMarketplace sets the default marketplace and saves.
func SetDefaultMarketplace(name string) error {
	config := Get()
	config.Defaults.Marketplace = name
	return Save(config)
}

// SetAutoUpdateMode sets the auto-update mode and saves.
func SetAutoUpdateMode(mode AutoUpdateMode) error {
	config := Get()
	config.AutoUpdate = mode
	return Save(config)
}
