// Package config manages application configuration.
package config

import (
	"fmt"
	"time"
)

// Store backends.
const (
	BackendAuto   = "auto"   // remote when configured, local otherwise
	BackendRemote = "remote" // remote with local fallback
	BackendLocal  = "local"  // local only
)

// Config represents the application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Reader  ReaderConfig  `yaml:"reader"`
	Admin   AdminConfig   `yaml:"admin"`
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig selects and configures the chapter store.
type StoreConfig struct {
	Backend string       `yaml:"backend"`
	Remote  RemoteConfig `yaml:"remote"`
	Local   LocalConfig  `yaml:"local"`
}

// RemoteConfig describes the remote chapter table.
type RemoteConfig struct {
	URL            string `yaml:"url"`
	APIKey         string `yaml:"api_key"`
	Table          string `yaml:"table"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LocalConfig describes the on-device fallback database.
type LocalConfig struct {
	Path string `yaml:"path,omitempty"` // empty = chapters.db next to the config file
}

// ReaderConfig contains rendering options.
type ReaderConfig struct {
	Format string `yaml:"format"`
	Width  int    `yaml:"width"`
	Color  string `yaml:"color"` // auto, always, never
}

// AdminConfig configures the editing gate.
type AdminConfig struct {
	PIN string `yaml:"pin"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendAuto,
			Remote: RemoteConfig{
				URL:            "${SUPABASE_URL}",
				APIKey:         "${SUPABASE_ANON_KEY}",
				Table:          "chapters",
				TimeoutSeconds: 30,
			},
		},
		Reader: ReaderConfig{
			Format: "text",
			Width:  72,
			Color:  "auto",
		},
		Admin: AdminConfig{
			PIN: "1234",
		},
		Logging: LoggingConfig{
			Level: "normal",
			Mode:  "append",
		},
	}
}

// RemoteConfigured reports whether remote credentials are present.
func (c *Config) RemoteConfigured() bool {
	return c.Store.Remote.URL != "" && c.Store.Remote.APIKey != ""
}

// Timeout returns the remote request timeout.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Validate checks enumerated values and ranges.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendAuto, BackendRemote, BackendLocal:
	default:
		return fmt.Errorf("invalid store backend: %s (supported: auto, remote, local)", c.Store.Backend)
	}
	if c.Store.Backend == BackendRemote && !c.RemoteConfigured() {
		return fmt.Errorf("store backend 'remote' requires store.remote.url and store.remote.api_key")
	}
	switch c.Reader.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid reader color mode: %s (supported: auto, always, never)", c.Reader.Color)
	}
	if c.Reader.Width < 0 {
		return fmt.Errorf("reader width must not be negative: %d", c.Reader.Width)
	}
	return c.Logging.Validate()
}
