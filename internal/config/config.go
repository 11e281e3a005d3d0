// ABOUTME: Configuration loading for the astrdesk client
// ABOUTME: TOML with ${VAR} env expansion, duration parsing, and validation

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the complete astrdesk client configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Auth    AuthConfig    `toml:"auth"`
	Archive ArchiveConfig `toml:"archive"`
	Logging LoggingConfig `toml:"logging"`
}

// ServerConfig holds the backend address and timeouts.
type ServerConfig struct {
	URL string `toml:"url"`

	RequestTimeout    time.Duration `toml:"-"`
	StreamReadTimeout time.Duration `toml:"-"`

	// Raw string values for TOML unmarshaling
	RequestTimeoutRaw    string `toml:"request_timeout"`
	StreamReadTimeoutRaw string `toml:"stream_read_timeout"`
}

// AuthConfig holds login credentials.
type AuthConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// ArchiveConfig controls the local transcript archive.
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DefaultPath returns the config file path.
// Priority: ASTRDESK_CONFIG env var > XDG_CONFIG_HOME/astrdesk/config.toml > ~/.config/astrdesk/config.toml
func DefaultPath() string {
	if envPath := os.Getenv("ASTRDESK_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "astrdesk", "config.toml")
}

// Load reads config from the given path, expanding environment
// variables and parsing duration strings.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	if cfg.Server.RequestTimeoutRaw != "" {
		cfg.Server.RequestTimeout, err = time.ParseDuration(cfg.Server.RequestTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing request_timeout %q: %w", cfg.Server.RequestTimeoutRaw, err)
		}
	}

	if cfg.Server.StreamReadTimeoutRaw != "" {
		cfg.Server.StreamReadTimeout, err = time.ParseDuration(cfg.Server.StreamReadTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing stream_read_timeout %q: %w", cfg.Server.StreamReadTimeoutRaw, err)
		}
	}

	return nil
}

// Validate checks that required config fields are present and valid.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("server.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url must use http or https scheme")
	}
	if c.Archive.Enabled && c.Archive.Path == "" {
		return fmt.Errorf("archive.path is required when archive is enabled")
	}
	return nil
}
