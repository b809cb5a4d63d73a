package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/nycstandup/showcatalog/internal/config"
	"github.com/nycstandup/showcatalog/internal/extract"
	"github.com/nycstandup/showcatalog/internal/fetch"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{config.EnvDBPath, config.EnvAPIBind, config.EnvTimezone, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
	chdir(t, t.TempDir())
	return home
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if resolved != filepath.Join(home, ".config", "showcatalog", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}

	if cfg.DBPath != filepath.Join(home, ".local", "share", "showcatalog", "shows.db") {
		t.Fatalf("unexpected db path %q", cfg.DBPath)
	}
	if cfg.Location().String() != "America/New_York" {
		t.Fatalf("unexpected location %v", cfg.Location())
	}
	if cfg.CourtesyDelay() != time.Second {
		t.Fatalf("unexpected courtesy delay %v", cfg.CourtesyDelay())
	}
	if !cfg.Run.KeepCatalogOnEmpty {
		t.Fatal("expected keep_catalog_on_empty by default")
	}
	if cfg.API.Bind != "127.0.0.1:3001" {
		t.Fatalf("unexpected api bind %q", cfg.API.Bind)
	}
	if got := len(cfg.Registry().Enabled()); got != 6 {
		t.Fatalf("expected 6 built-in venues, got %d", got)
	}

	fc := cfg.FetchConfig()
	if fc.Timeout != fetch.DefaultTimeout || fc.MinBodyBytes != fetch.DefaultMinBodyBytes {
		t.Fatalf("unexpected fetch config %+v", fc)
	}
	if !fc.Browser.Headless || fc.Browser.Country != "us" {
		t.Fatalf("unexpected browser options %+v", fc.Browser)
	}
}

func TestLoadFileAndVenueOverrides(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
db_path = "~/catalog.db"
timezone = "America/Chicago"

[fetch]
timeout_seconds = 5
courtesy_delay_ms = 250
block_signatures = ["captcha", "  ", "attention required"]

[browser]
country = "GB"
settle_seconds = 2.5

[retention]
days = 99999
purge_after_run = true

[run]
keep_catalog_on_empty = false

[[venues]]
id = "broadway"
disabled = true

[[venues]]
id = "eastville"
name = "Eastville Comedy Club"
url = "https://www.eastvillecomedy.com/"
neighborhood = "East Village"
transport = "rendered"
strategy = "dom-heuristic"

[venues.extract]
href_pattern = "/events/"
default_show_time = "8:00 PM"
`)

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if filepath.Base(cfg.DBPath) != "catalog.db" || !filepath.IsAbs(cfg.DBPath) {
		t.Fatalf("db path not expanded: %q", cfg.DBPath)
	}
	if cfg.Location().String() != "America/Chicago" {
		t.Fatalf("unexpected location %v", cfg.Location())
	}
	if cfg.CourtesyDelay() != 250*time.Millisecond {
		t.Fatalf("unexpected courtesy delay %v", cfg.CourtesyDelay())
	}
	if got := cfg.Fetch.BlockSignatures; len(got) != 2 || got[1] != "attention required" {
		t.Fatalf("unexpected block signatures %q", got)
	}
	if cfg.Browser.Country != "gb" {
		t.Fatalf("country not lowercased: %q", cfg.Browser.Country)
	}
	if cfg.DefaultSettle() != 2500*time.Millisecond {
		t.Fatalf("unexpected settle %v", cfg.DefaultSettle())
	}
	if cfg.Retention.Days != 3650 || !cfg.Retention.PurgeAfterRun {
		t.Fatalf("unexpected retention %+v", cfg.Retention)
	}
	if cfg.Run.KeepCatalogOnEmpty {
		t.Fatal("expected keep_catalog_on_empty to be overridden")
	}

	reg := cfg.Registry()
	if _, ok := reg.Get("eastville"); !ok {
		t.Fatal("expected added venue in registry")
	}
	for _, s := range reg.Enabled() {
		if s.ID == "broadway" {
			t.Fatal("expected broadway disabled")
		}
	}
	added, _ := reg.Get("eastville")
	if added.Strategy != extract.DomHeuristic || added.Extract.DefaultShowTime != "8:00 PM" {
		t.Fatalf("unexpected added venue %+v", added)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
timezone = "America/Chicago"
[api]
bind = "127.0.0.1:9000"
`)
	dbPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv(config.EnvDBPath, dbPath)
	t.Setenv(config.EnvAPIBind, "0.0.0.0:8080")
	t.Setenv(config.EnvTimezone, "UTC")

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DBPath != dbPath {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, dbPath)
	}
	if cfg.API.Bind != "0.0.0.0:8080" {
		t.Fatalf("api bind = %q", cfg.API.Bind)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("location = %v", cfg.Location())
	}
}

func TestDotEnvFile(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".env", []byte("SHOWCATALOG_API_BIND=127.0.0.1:4242\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(config.EnvAPIBind) })
	os.Unsetenv(config.EnvAPIBind)

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Bind != "127.0.0.1:4242" {
		t.Fatalf("api bind = %q, want value from .env", cfg.API.Bind)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"bad timezone", `timezone = "Mars/Olympus"`, "timezone"},
		{"bad log level", `log_level = "loud"`, "log_level"},
		{"proxy without url", "[browser]\nuse_proxy = true", "proxy_url"},
		{"bad bind", "[api]\nbind = \"3001\"", "api.bind"},
		{"unknown key", `colour = "blue"`, "parse config"},
		{"bad venue", "[[venues]]\nid = \"nycc\"\ntransport = \"teleport\"", "venues"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			_, _, _, err := config.Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateSample(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	if err := config.CreateSample(path); err == nil {
		t.Fatal("expected error when sample already exists")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var parsed map[string]any
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
