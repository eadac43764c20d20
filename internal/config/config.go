// Package config loads the client's YAML configuration and environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/currency"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the file is read.
const (
	EnvAPIURL    = "BUDGETWISE_API_URL"
	EnvStatePath = "BUDGETWISE_STATE_PATH"
	EnvLogLevel  = "BUDGETWISE_LOG_LEVEL"
)

const appDir = "budgetwise"

// Config is the top-level config.yaml.
type Config struct {
	API      APIConfig      `yaml:"api"`
	State    StateConfig    `yaml:"state"`
	Activity ActivityConfig `yaml:"activity"`
	Display  DisplayConfig  `yaml:"display"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig locates the BudgetWise server.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StateConfig locates the local state database (session token, chat log).
type StateConfig struct {
	Path string `yaml:"path"`
}

// ActivityConfig locates the local activity log.
type ActivityConfig struct {
	Path string `yaml:"path"`
}

// DisplayConfig controls output formatting.
type DisplayConfig struct {
	Currency string `yaml:"currency"` // ISO 4217 code
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

// Dir returns the directory holding config and state,
// $XDG_CONFIG_HOME/budgetwise on Linux.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config dir: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns a Config whose files live under dir.
func Default(dir string) *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 30 * time.Second,
		},
		State:    StateConfig{Path: filepath.Join(dir, "state.db")},
		Activity: ActivityConfig{Path: filepath.Join(dir, "activity.csv")},
		Display:  DisplayConfig{Currency: "INR"},
		Log:      LogConfig{Level: "warn", Format: "console"},
	}
}

// Load reads a config file from disk. Unset fields keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default(filepath.Dir(path))
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML, creating the directory if needed.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Resolve loads path (or the defaults when it does not exist), reads an
// optional .env from the working directory, applies environment overrides
// and validates the result.
func Resolve(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Default(filepath.Dir(path)), nil
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() {
	c.API.BaseURL = getEnv(EnvAPIURL, c.API.BaseURL)
	c.State.Path = getEnv(EnvStatePath, c.State.Path)
	c.Log.Level = getEnv(EnvLogLevel, c.Log.Level)
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.API.BaseURL == "" {
		problems = append(problems, "api.base_url is required")
	} else if u, err := url.Parse(c.API.BaseURL); err != nil {
		problems = append(problems, fmt.Sprintf("invalid api.base_url '%s': %v", c.API.BaseURL, err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		problems = append(problems, fmt.Sprintf("invalid api.base_url scheme '%s': must be 'http' or 'https'", u.Scheme))
	}

	if c.API.Timeout < 0 {
		problems = append(problems, "api.timeout must not be negative")
	}
	if c.State.Path == "" {
		problems = append(problems, "state.path is required")
	}
	if c.Activity.Path == "" {
		problems = append(problems, "activity.path is required")
	}
	if _, err := currency.ParseISO(c.Display.Currency); err != nil {
		problems = append(problems, fmt.Sprintf("invalid display.currency '%s'", c.Display.Currency))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid log.level '%s': must be one of debug, info, warn, error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log.format '%s': must be console or json", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
