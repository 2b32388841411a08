// Package common provides shared utilities for ValueScout
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for ValueScout
type Config struct {
	Environment string         `toml:"environment"`
	Scan        ScanConfig     `toml:"scan"`
	Schedule    ScheduleConfig `toml:"schedule"`
	Storage     StorageConfig  `toml:"storage"`
	Clients     ClientsConfig  `toml:"clients"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ScanConfig holds defaults applied to every scan unless overridden per call
type ScanConfig struct {
	Preset        string `toml:"preset" validate:"required"`
	Cap           int    `toml:"cap" validate:"min=1,max=100"`
	HeadlineLimit int    `toml:"headline_limit" validate:"min=1,max=20"`
	SortBy        string `toml:"sort_by" validate:"omitempty,oneof=pb pe discount upside sentiment ticker none"`
	Exchange      string `toml:"exchange" validate:"required"` // EODHD exchange suffix appended to bare tickers (e.g. "US")
}

// ScheduleConfig holds the recurring scan configuration
type ScheduleConfig struct {
	Enabled bool   `toml:"enabled"`
	Cron    string `toml:"cron" validate:"required_if=Enabled true"` // 5-field cron expression, e.g. "30 16 * * 1-5"
	Preset  string `toml:"preset"`
}

// StorageConfig holds the file locations used for persistence.
type StorageConfig struct {
	WatchlistFile string `toml:"watchlist_file" validate:"required"` // CSV: Ticker,Date Added,Price Added
	HistoryPath   string `toml:"history_path" validate:"required"`   // BadgerHold directory for scan history
	ExportDir     string `toml:"export_dir"`
	Versions      int    `toml:"versions" validate:"min=0,max=20"` // watchlist backups kept as <file>.v1..vN
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	EODHD  EODHDConfig  `toml:"eodhd"`
	Finviz FinvizConfig `toml:"finviz"`
	Gemini GeminiConfig `toml:"gemini"`
}

// EODHDConfig holds EODHD API configuration
type EODHDConfig struct {
	BaseURL     string `toml:"base_url" validate:"required,url"`
	APIKey      string `toml:"api_key"`
	MinInterval string `toml:"min_interval" validate:"duration"` // minimum gap between successive requests
	Timeout     string `toml:"timeout" validate:"duration"`
}

// GetTimeout parses and returns the timeout duration
func (c *EODHDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetMinInterval parses and returns the pacing interval
func (c *EODHDConfig) GetMinInterval() time.Duration {
	d, err := time.ParseDuration(c.MinInterval)
	if err != nil || d < 0 {
		return 150 * time.Millisecond
	}
	return d
}

// FinvizConfig holds screener scraping configuration
type FinvizConfig struct {
	BaseURL     string `toml:"base_url" validate:"required,url"`
	UserAgent   string `toml:"user_agent"`
	MaxPages    int    `toml:"max_pages" validate:"min=1"`
	MinInterval string `toml:"min_interval" validate:"duration"`
	Timeout     string `toml:"timeout" validate:"duration"`
}

// GetTimeout parses and returns the timeout duration
func (c *FinvizConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetMinInterval parses and returns the pacing interval between page requests
func (c *FinvizConfig) GetMinInterval() time.Duration {
	d, err := time.ParseDuration(c.MinInterval)
	if err != nil || d < 0 {
		return 500 * time.Millisecond
	}
	return d
}

// GeminiConfig holds the optional headline-scoring model. Without an API key
// headlines are scored locally.
type GeminiConfig struct {
	APIKey      string `toml:"api_key"`
	Model       string `toml:"model" validate:"required"`
	BaseURL     string `toml:"base_url" validate:"omitempty,url"`
	MinInterval string `toml:"min_interval" validate:"duration"`
	Timeout     string `toml:"timeout" validate:"duration"`
}

// GetTimeout parses and returns the per-headline request timeout
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetMinInterval parses and returns the pacing interval between requests
func (c *GeminiConfig) GetMinInterval() time.Duration {
	d, err := time.ParseDuration(c.MinInterval)
	if err != nil || d < 0 {
		return 250 * time.Millisecond
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Outputs    []string `toml:"outputs" validate:"dive,oneof=console file"`
	FilePath   string   `toml:"file_path"`
	FileFormat string   `toml:"file_format" validate:"omitempty,oneof=json logfmt"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Scan: ScanConfig{
			Preset:        "hidden-value",
			Cap:           10,
			HeadlineLimit: 5,
			SortBy:        "pb",
			Exchange:      "US",
		},
		Schedule: ScheduleConfig{
			Cron:   "30 16 * * 1-5",
			Preset: "hidden-value",
		},
		Storage: StorageConfig{
			WatchlistFile: "data/my_portfolio.csv",
			HistoryPath:   "data/history",
			ExportDir:     "data/exports",
			Versions:      3,
		},
		Clients: ClientsConfig{
			EODHD: EODHDConfig{
				BaseURL:     "https://eodhd.com/api",
				MinInterval: "150ms",
				Timeout:     "30s",
			},
			Finviz: FinvizConfig{
				BaseURL:     "https://finviz.com",
				UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				MaxPages:    5,
				MinInterval: "500ms",
				Timeout:     "30s",
			},
			Gemini: GeminiConfig{
				Model:       "gemini-2.5-flash",
				MinInterval: "250ms",
				Timeout:     "10s",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Outputs:    []string{"console"},
			FilePath:   "./logs/valuescout.log",
			FileFormat: "logfmt",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("VALUESCOUT_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("VALUESCOUT_LOG_LEVEL"); level != "" {
		config.Logging.Level = strings.ToLower(level)
	}

	if preset := os.Getenv("VALUESCOUT_PRESET"); preset != "" {
		config.Scan.Preset = preset
	}

	if v := os.Getenv("VALUESCOUT_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scan.Cap = n
		}
	}

	if v := os.Getenv("VALUESCOUT_WATCHLIST_FILE"); v != "" {
		config.Storage.WatchlistFile = v
	}

	if v := os.Getenv("VALUESCOUT_HISTORY_PATH"); v != "" {
		config.Storage.HistoryPath = v
	}

	if v := os.Getenv("VALUESCOUT_EODHD_MIN_INTERVAL"); v != "" {
		config.Clients.EODHD.MinInterval = v
	}
}

// validate is shared; validator caches struct metadata internally.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("duration", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.ParseDuration(s)
		return err == nil
	})
	return v
}

// Validate checks field constraints declared on the config structs.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// IsProduction reports whether the environment is production. Production
// refuses to start without market-data credentials.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// ResolveAPIKey resolves an API key from environment or fallback
func ResolveAPIKey(name string, fallback string) (string, error) {
	keyToEnvMapping := map[string][]string{
		"eodhd_api_key":  {"EODHD_API_KEY", "VALUESCOUT_EODHD_API_KEY"},
		"gemini_api_key": {"GEMINI_API_KEY", "GOOGLE_API_KEY", "VALUESCOUT_GEMINI_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue, nil
			}
		}
	}

	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("API key '%s' not found in environment or config", name)
}
