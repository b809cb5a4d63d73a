package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/nycstandup/showcatalog/internal/browser"
	"github.com/nycstandup/showcatalog/internal/fetch"
	"github.com/nycstandup/showcatalog/internal/venue"
)

//go:embed sample_config.toml
var sampleConfig string

// Fetch contains direct transport settings.
type Fetch struct {
	TimeoutSeconds  int      `toml:"timeout_seconds"`
	MinBodyBytes    int      `toml:"min_body_bytes"`
	MaxBodyBytes    int64    `toml:"max_body_bytes"`
	UserAgent       string   `toml:"user_agent"`
	CourtesyDelayMS int      `toml:"courtesy_delay_ms"` // pause between direct venues
	BlockSignatures []string `toml:"block_signatures"`
}

// Browser contains rendered transport settings.
type Browser struct {
	Country                  string  `toml:"country"`
	Headless                 bool    `toml:"headless"`
	UseProxy                 bool    `toml:"use_proxy"`
	ProxyURL                 string  `toml:"proxy_url"`
	NavigationTimeoutSeconds int     `toml:"navigation_timeout_seconds"`
	SettleSeconds            float64 `toml:"settle_seconds"` // for venues that set none
	ExecPath                 string  `toml:"exec_path"`
}

// Retention controls how long catalog rows are kept.
type Retention struct {
	Days          int  `toml:"days"`
	PurgeAfterRun bool `toml:"purge_after_run"`
}

// API contains the read API listener settings.
type API struct {
	Bind string `toml:"bind"`
}

// Run contains scrape run policy.
type Run struct {
	// KeepCatalogOnEmpty skips the replace when no venue produced a record.
	KeepCatalogOnEmpty bool `toml:"keep_catalog_on_empty"`
}

// Config encapsulates all configuration values for showcatalog.
//
// Configuration sections:
//   - top level: database, lock file, venue timezone, log level
//   - Fetch: direct HTTP transport
//   - Browser: headless browser transport
//   - Retention: purge policy
//   - API: read API bind address
//   - Run: scrape run policy
//   - Venues: overrides and additions to the built-in venue registry
type Config struct {
	DBPath    string           `toml:"db_path"`
	LockPath  string           `toml:"lock_path"`
	Timezone  string           `toml:"timezone"`
	LogLevel  string           `toml:"log_level"`
	Fetch     Fetch            `toml:"fetch"`
	Browser   Browser          `toml:"browser"`
	Retention Retention        `toml:"retention"`
	API       API              `toml:"api"`
	Run       Run              `toml:"run"`
	Venues    []venue.Override `toml:"venues"`

	location *time.Location
	registry *venue.Registry
}

// Environment variables that override file values.
const (
	EnvDBPath   = "SHOWCATALOG_DB_PATH"
	EnvAPIBind  = "SHOWCATALOG_API_BIND"
	EnvTimezone = "SHOWCATALOG_TIMEZONE"
	EnvLogLevel = "SHOWCATALOG_LOG_LEVEL"
)

const defaultConfigPath = "~/.config/showcatalog/config.toml"

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. A missing file
// yields the defaults. The returned path is the file that was (or would be)
// read, and the bool reports whether it existed.
func Load(path string) (*Config, string, bool, error) {
	if err := loadDotEnv(); err != nil {
		return nil, "", false, err
	}

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat .env: %w", err)
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvDBPath); ok && strings.TrimSpace(v) != "" {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv(EnvAPIBind); ok && strings.TrimSpace(v) != "" {
		c.API.Bind = v
	}
	if v, ok := os.LookupEnv(EnvTimezone); ok && strings.TrimSpace(v) != "" {
		c.Timezone = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		c.LogLevel = v
	}
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// CreateSample writes the annotated sample configuration to path. An
// existing file is never overwritten.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(expanded, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("config file %s already exists", expanded)
		}
		return fmt.Errorf("create config file: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	return f.Close()
}

// Location returns the venue timezone.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// Registry returns the venue registry with configured overrides applied.
func (c *Config) Registry() *venue.Registry {
	return c.registry
}

// CourtesyDelay is the pause between consecutive direct venues.
func (c *Config) CourtesyDelay() time.Duration {
	return time.Duration(c.Fetch.CourtesyDelayMS) * time.Millisecond
}

// DefaultSettle is the settle delay for rendered venues that set none.
func (c *Config) DefaultSettle() time.Duration {
	return time.Duration(c.Browser.SettleSeconds * float64(time.Second))
}

// FetchConfig translates the fetch and browser sections for the fetcher.
func (c *Config) FetchConfig() fetch.Config {
	return fetch.Config{
		UserAgent:         c.Fetch.UserAgent,
		Timeout:           time.Duration(c.Fetch.TimeoutSeconds) * time.Second,
		NavigationTimeout: time.Duration(c.Browser.NavigationTimeoutSeconds) * time.Second,
		MinBodyBytes:      c.Fetch.MinBodyBytes,
		MaxBodyBytes:      c.Fetch.MaxBodyBytes,
		BlockSignatures:   c.Fetch.BlockSignatures,
		Browser: browser.Options{
			Country:   c.Browser.Country,
			Headless:  c.Browser.Headless,
			UseProxy:  c.Browser.UseProxy,
			ProxyURL:  c.Browser.ProxyURL,
			ExecPath:  c.Browser.ExecPath,
			UserAgent: c.Fetch.UserAgent,
		},
	}
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
