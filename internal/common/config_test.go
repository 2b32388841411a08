package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig_DefaultsValidate(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Scan.Preset != "hidden-value" {
		t.Errorf("Scan.Preset default = %q, want hidden-value", cfg.Scan.Preset)
	}
	if cfg.Scan.Cap != 10 {
		t.Errorf("Scan.Cap default = %d, want 10", cfg.Scan.Cap)
	}
	if cfg.Storage.WatchlistFile != "data/my_portfolio.csv" {
		t.Errorf("Storage.WatchlistFile default = %q", cfg.Storage.WatchlistFile)
	}
}

func TestLoadConfig_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.toml")

	os.WriteFile(base, []byte(`
environment = "production"

[scan]
cap = 25
sort_by = "discount"

[clients.eodhd]
min_interval = "1s"
`), 0644)
	os.WriteFile(override, []byte(`
[scan]
cap = 5
`), 0644)

	cfg, err := LoadConfig(base, filepath.Join(dir, "missing.toml"), override)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Scan.Cap != 5 {
		t.Errorf("Scan.Cap = %d, want 5 (later file wins)", cfg.Scan.Cap)
	}
	if cfg.Scan.SortBy != "discount" {
		t.Errorf("Scan.SortBy = %q, want discount", cfg.Scan.SortBy)
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if got := cfg.Clients.EODHD.GetMinInterval(); got != time.Second {
		t.Errorf("EODHD min interval = %v, want 1s", got)
	}
	if cfg.Scan.Preset != "hidden-value" {
		t.Error("unset fields keep defaults")
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("[scan\ncap = "), 0644)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"cap zero", func(c *Config) { c.Scan.Cap = 0 }, "Cap"},
		{"headline limit too high", func(c *Config) { c.Scan.HeadlineLimit = 50 }, "HeadlineLimit"},
		{"unknown sort", func(c *Config) { c.Scan.SortBy = "volume" }, "SortBy"},
		{"bad duration", func(c *Config) { c.Clients.EODHD.MinInterval = "soon" }, "MinInterval"},
		{"bad base url", func(c *Config) { c.Clients.Finviz.BaseURL = "not a url" }, "BaseURL"},
		{"schedule without cron", func(c *Config) { c.Schedule.Enabled = true; c.Schedule.Cron = "" }, "Cron"},
		{"missing watchlist file", func(c *Config) { c.Storage.WatchlistFile = "" }, "WatchlistFile"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Level"},
		{"bad log file format", func(c *Config) { c.Logging.FileFormat = "text" }, "FileFormat"},
		{"gemini without model", func(c *Config) { c.Clients.Gemini.Model = "" }, "Model"},
		{"bad gemini timeout", func(c *Config) { c.Clients.Gemini.Timeout = "later" }, "Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VALUESCOUT_ENV", "prod")
	t.Setenv("VALUESCOUT_LOG_LEVEL", "DEBUG")
	t.Setenv("VALUESCOUT_PRESET", "deep-value")
	t.Setenv("VALUESCOUT_CAP", "3")
	t.Setenv("VALUESCOUT_WATCHLIST_FILE", "/tmp/wl.csv")
	t.Setenv("VALUESCOUT_HISTORY_PATH", "/tmp/history")
	t.Setenv("VALUESCOUT_EODHD_MIN_INTERVAL", "2s")

	cfg := NewDefaultConfig()
	applyEnvOverrides(cfg)

	if !cfg.IsProduction() {
		t.Error("VALUESCOUT_ENV not applied")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Scan.Preset != "deep-value" || cfg.Scan.Cap != 3 {
		t.Errorf("scan overrides not applied: %+v", cfg.Scan)
	}
	if cfg.Storage.WatchlistFile != "/tmp/wl.csv" || cfg.Storage.HistoryPath != "/tmp/history" {
		t.Errorf("storage overrides not applied: %+v", cfg.Storage)
	}
	if cfg.Clients.EODHD.GetMinInterval() != 2*time.Second {
		t.Error("EODHD min interval override not applied")
	}
}

func TestConfig_DurationFallbacks(t *testing.T) {
	e := EODHDConfig{Timeout: "bogus", MinInterval: "-1s"}
	if e.GetTimeout() != 30*time.Second {
		t.Errorf("EODHD timeout fallback = %v", e.GetTimeout())
	}
	if e.GetMinInterval() != 150*time.Millisecond {
		t.Errorf("EODHD min interval fallback = %v", e.GetMinInterval())
	}

	f := FinvizConfig{MinInterval: "0s"}
	if f.GetMinInterval() != 0 {
		t.Errorf("Finviz zero interval should be honoured, got %v", f.GetMinInterval())
	}
	if f.GetTimeout() != 30*time.Second {
		t.Errorf("Finviz timeout fallback = %v", f.GetTimeout())
	}

	g := GeminiConfig{Timeout: "0s", MinInterval: "bogus"}
	if g.GetTimeout() != 10*time.Second {
		t.Errorf("Gemini timeout fallback = %v", g.GetTimeout())
	}
	if g.GetMinInterval() != 250*time.Millisecond {
		t.Errorf("Gemini min interval fallback = %v", g.GetMinInterval())
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("EODHD_API_KEY", "")
	t.Setenv("VALUESCOUT_EODHD_API_KEY", "")

	if _, err := ResolveAPIKey("eodhd_api_key", ""); err == nil {
		t.Error("expected error when key is missing everywhere")
	}

	key, err := ResolveAPIKey("eodhd_api_key", "from-config")
	if err != nil || key != "from-config" {
		t.Errorf("fallback: key = %q, err = %v", key, err)
	}

	t.Setenv("VALUESCOUT_EODHD_API_KEY", "from-env")
	key, _ = ResolveAPIKey("eodhd_api_key", "from-config")
	if key != "from-env" {
		t.Errorf("env should win over config, got %q", key)
	}

	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("VALUESCOUT_GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")
	key, _ = ResolveAPIKey("gemini_api_key", "")
	if key != "google-key" {
		t.Errorf("GOOGLE_API_KEY should resolve the Gemini key, got %q", key)
	}
}
