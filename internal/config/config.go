package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything booktracker reads at startup.
type Config struct {
	BaseURL         string
	CredentialStore string
	CredentialsPath string
	LogFile         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/booktracker/config.toml"
	defaultBaseURL         = "http://localhost:3000"
	defaultCredentialStore = "keyring"
	defaultCredentialsPath = "~/.local/share/booktracker/credentials.toml"
	defaultLogFile         = "~/.local/state/booktracker/booktracker.log"
	defaultLogLevel        = "info"
)

// Environment variables that override file values.
const (
	EnvBaseURL         = "BOOKTRACKER_BASE_URL"
	EnvCredentialStore = "BOOKTRACKER_CREDENTIAL_STORE"
	EnvLogLevel        = "BOOKTRACKER_LOG_LEVEL"
)

var (
	validStores = []string{"keyring", "file", "memory"}
	validLevels = []string{"debug", "info", "warn", "error"}
)

// Default returns the built-in configuration with paths expanded.
func Default() Config {
	return Config{
		BaseURL:         defaultBaseURL,
		CredentialStore: defaultCredentialStore,
		CredentialsPath: mustExpand(defaultCredentialsPath),
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

// Load reads the config file at path (empty uses the default location) and
// overlays environment variables. It does not validate: callers apply their
// own overrides first and then call Validate. A missing file
// yields the defaults. A .env file in the working directory is loaded into
// the environment first when present; variables already set win.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		if err := cfg.readFrom(file); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) readFrom(r io.Reader) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL         string `toml:"base_url"`
		CredentialStore string `toml:"credential_store"`
		CredentialsPath string `toml:"credentials_path"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(raw.CredentialStore); v != "" {
		c.CredentialStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.CredentialsPath); v != "" {
		c.CredentialsPath = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCredentialStore)); v != "" {
		c.CredentialStore = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
}

// Validate rejects unknown backends and log levels.
func (c Config) Validate() error {
	if !contains(validStores, c.CredentialStore) {
		return fmt.Errorf("invalid credential_store %q (want one of %s)", c.CredentialStore, strings.Join(validStores, ", "))
	}
	if !contains(validLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (want one of %s)", c.LogLevel, strings.Join(validLevels, ", "))
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
