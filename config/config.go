package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// Environment variables that override the feed location after the file is read.
const (
	EnvAPIHost    = "API_HOST"
	EnvAPIPort    = "API_PORT"
	EnvAPIBaseURL = "SIGN_API_BASE_URL"
)

// Config is the top-level configuration.
type Config struct {
	Feed   FeedConfig   `toml:"feed"`
	Stops  StopsConfig  `toml:"stops"`
	Status StatusConfig `toml:"status"`
	Log    LogConfig    `toml:"log"`
}

// FeedConfig locates the prediction service and sets the refresh timing.
type FeedConfig struct {
	BaseURL           string `toml:"base_url" validate:"omitempty,url"`
	Host              string `toml:"host" validate:"required_without=BaseURL"`
	Port              int    `toml:"port" validate:"gte=1,lte=65535"`
	TimeoutMS         int    `toml:"timeout_ms" validate:"gt=0"`
	RefreshIntervalMS int    `toml:"refresh_interval_ms" validate:"gt=0"`
}

// StopsConfig names the two stops shown on the sign's sides.
type StopsConfig struct {
	A      string `toml:"a" validate:"required"`
	B      string `toml:"b" validate:"required"`
	ALabel string `toml:"a_label"`
	BLabel string `toml:"b_label"`
}

// StatusConfig enables the local status endpoint when Listen is set.
type StatusConfig struct {
	Listen string `toml:"listen" validate:"omitempty,hostname_port"`
}

// LogConfig controls where the sign writes its log.
type LogConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR"`
}

// Default returns the configuration used when no file is present: the local
// development endpoint and the two stops the sign was built for.
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Host:              "127.0.0.1",
			Port:              8080,
			TimeoutMS:         2000,
			RefreshIntervalMS: 3000,
		},
		Stops: StopsConfig{
			A:      "4407",
			B:      "7117",
			ALabel: "Forbes Ave",
			BLabel: "Fifth Ave",
		},
		Log: LogConfig{Level: "info"},
	}
}

// DefaultPath returns the default config file path using XDG conventions.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(dir, "transit-sign", "config.toml")
}

// DefaultLogPath returns the log file used when log.file is unset.
func DefaultLogPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = filepath.Join(os.Getenv("HOME"), ".cache")
	}
	return filepath.Join(dir, "transit-sign", "sign.log")
}

// Load reads path over the defaults. When optional is true a missing file is
// not an error and the defaults are used as is. Environment overrides are
// applied last, then the result is validated.
func Load(path string, optional bool) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !optional || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.Log.File = expandPath(cfg.Log.File)
	if cfg.Log.File == "" {
		cfg.Log.File = DefaultLogPath()
	}
	if cfg.Stops.ALabel == "" {
		cfg.Stops.ALabel = cfg.Stops.A
	}
	if cfg.Stops.BLabel == "" {
		cfg.Stops.BLabel = cfg.Stops.B
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads the config file at path, which must exist.
func LoadFrom(path string) (*Config, error) {
	return Load(path, false)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIHost); ok && v != "" {
		c.Feed.Host = v
	}
	if v, ok := lookup(EnvAPIPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be a port number: %w", EnvAPIPort, err)
		}
		c.Feed.Port = port
	}
	if v, ok := lookup(EnvAPIBaseURL); ok && v != "" {
		c.Feed.BaseURL = v
	}
	return nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Stops.A == c.Stops.B {
		return fmt.Errorf("invalid config: stops.a and stops.b must differ (both %q)", c.Stops.A)
	}
	return nil
}

// BaseURL returns the prediction service root. An explicit base_url wins
// over host and port.
func (c *Config) BaseURL() string {
	if c.Feed.BaseURL != "" {
		return strings.TrimRight(c.Feed.BaseURL, "/")
	}
	return "http://" + net.JoinHostPort(c.Feed.Host, strconv.Itoa(c.Feed.Port))
}

// RefreshInterval returns the refresh cadence.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Feed.RefreshIntervalMS) * time.Millisecond
}

// FetchTimeout returns the per-fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Feed.TimeoutMS) * time.Millisecond
}

// expandPath expands ~ to $HOME and then expands all environment variables.
func expandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		path = "$HOME" + path[1:]
	}
	return os.ExpandEnv(path)
}
