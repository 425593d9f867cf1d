// Package config provides configuration management for the core: a
// Config struct composed of sub-configs, loaded from YAML with
// environment-variable overrides.
package config

// Config is the main configuration structure.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Identity    *IdentityConfig `yaml:"identity" json:"identity"`
	Relay       *RelayConfig    `yaml:"relay" json:"relay"`
	Store       *StoreConfig    `yaml:"store" json:"store"`
	Logging     *LoggingConfig  `yaml:"logging" json:"logging"`
	Directory   *DirectoryConfig `yaml:"directory" json:"directory"`
}

// IdentityConfig describes where the signing seed is sourced from.
type IdentityConfig struct {
	// KeySourceEnv names the environment variable holding the
	// hex-encoded identity seed (see identity.FromHex).
	KeySourceEnv string `yaml:"key_source_env" json:"key_source_env"`
}

// RelayConfig configures the relay session.
type RelayConfig struct {
	URL          string `yaml:"url" json:"url"`
	Device       string `yaml:"device" json:"device"` // "desktop" or "mobile"
	QueueSize    int    `yaml:"queue_size" json:"queue_size"`
	MaxBackoffMs int    `yaml:"max_backoff_ms" json:"max_backoff_ms"`
}

// StoreConfig configures the local store backend.
type StoreConfig struct {
	// Driver selects the implementation: "memory" or "postgres".
	Driver string `yaml:"driver" json:"driver"`
	DSN    string `yaml:"dsn" json:"dsn"`
}

// LoggingConfig configures gnslog.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"` // debug, info, warn, error
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// DirectoryConfig configures the consumed handle-directory HTTP surface.
type DirectoryConfig struct {
	BaseURL    string `yaml:"base_url" json:"base_url"`
	TimeoutSec int    `yaml:"timeout_sec" json:"timeout_sec"`
}
