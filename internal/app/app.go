// Package app wires configuration, clients, storage and services together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/valuescout/internal/clients/eodhd"
	"github.com/bobmcallan/valuescout/internal/clients/finviz"
	"github.com/bobmcallan/valuescout/internal/clients/gemini"
	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/sentiment"
	"github.com/bobmcallan/valuescout/internal/services/compare"
	"github.com/bobmcallan/valuescout/internal/services/enrich"
	"github.com/bobmcallan/valuescout/internal/services/screener"
	"github.com/bobmcallan/valuescout/internal/services/watchlist"
	"github.com/bobmcallan/valuescout/internal/storage"
)

// App holds all initialized services, clients, and storage.
// It is the shared core behind every CLI subcommand.
type App struct {
	Config           *common.Config
	Logger           *common.Logger
	Storage          *storage.Manager
	ScreenerService  interfaces.ScreenerService
	WatchlistService interfaces.WatchlistService
	CompareService   interfaces.CompareService
	StartupTime      time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// ResolveConfigPath picks the config file: explicit path, VALUESCOUT_CONFIG,
// valuescout.toml next to the binary, then config/valuescout.toml.
func ResolveConfigPath(configPath string) string {
	if configPath == "" {
		configPath = os.Getenv("VALUESCOUT_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(getBinaryDir(), "valuescout.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/valuescout.toml" // fallback for development
		}
	}
	return configPath
}

// NewApp loads configuration and initializes every component.
// configPath may be empty, in which case ResolveConfigPath decides.
func NewApp(configPath string) (*App, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(ResolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLoggerFromConfig(config.Logging)
	return NewAppWithConfig(config, logger)
}

// ErrMissingCredentials is returned in production when no market-data key
// resolves.
var ErrMissingCredentials = errors.New("EODHD API key is required in production")

// NewAppWithConfig builds the app from an already loaded config.
func NewAppWithConfig(config *common.Config, logger *common.Logger) (*App, error) {
	start := time.Now()

	eodhdKey, err := common.ResolveAPIKey("eodhd_api_key", config.Clients.EODHD.APIKey)
	if err != nil {
		if config.IsProduction() {
			return nil, ErrMissingCredentials
		}
		logger.Warn().Msg("EODHD API key not configured - enrichment will report missing data")
	}

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	provider := eodhd.NewClient(eodhdKey,
		eodhd.WithBaseURL(config.Clients.EODHD.BaseURL),
		eodhd.WithLogger(logger),
		eodhd.WithMinInterval(config.Clients.EODHD.GetMinInterval()),
		eodhd.WithTimeout(config.Clients.EODHD.GetTimeout()),
		eodhd.WithExchange(config.Scan.Exchange),
	)

	source := finviz.NewClient(
		finviz.WithBaseURL(config.Clients.Finviz.BaseURL),
		finviz.WithLogger(logger),
		finviz.WithMinInterval(config.Clients.Finviz.GetMinInterval()),
		finviz.WithTimeout(config.Clients.Finviz.GetTimeout()),
		finviz.WithUserAgent(config.Clients.Finviz.UserAgent),
		finviz.WithMaxPages(config.Clients.Finviz.MaxPages),
	)

	pipeline := enrich.NewPipeline(provider, newEstimator(context.Background(), config.Clients.Gemini, logger), logger,
		enrich.WithHeadlineLimit(config.Scan.HeadlineLimit),
	)

	a := &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		ScreenerService:  screener.NewService(source, pipeline, storageManager, config.Scan, logger),
		WatchlistService: watchlist.NewService(storageManager, provider, logger),
		CompareService:   compare.NewService(pipeline, provider, logger),
		StartupTime:      start,
	}

	logger.Debug().Dur("startup", time.Since(start)).Msg("App initialized")
	return a, nil
}

// newEstimator scores headlines with VADER, or with Gemini backed by VADER
// when a Gemini key resolves.
func newEstimator(ctx context.Context, cfg common.GeminiConfig, logger *common.Logger) interfaces.PolarityEstimator {
	vader := sentiment.NewVader()

	apiKey, err := common.ResolveAPIKey("gemini_api_key", cfg.APIKey)
	if err != nil {
		logger.Debug().Msg("Gemini API key not configured - scoring headlines locally")
		return vader
	}

	opts := []gemini.ClientOption{
		gemini.WithModel(cfg.Model),
		gemini.WithTimeout(cfg.GetTimeout()),
		gemini.WithMinInterval(cfg.GetMinInterval()),
		gemini.WithLogger(logger),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.BaseURL))
	}
	client, err := gemini.NewClient(ctx, apiKey, opts...)
	if err != nil {
		logger.Warn().Err(err).Msg("Gemini client unavailable - scoring headlines locally")
		return vader
	}

	logger.Info().Str("model", client.Model()).Msg("Scoring headlines with Gemini")
	return sentiment.NewModelEstimator(client, vader, logger)
}

// Close releases storage.
func (a *App) Close() error {
	return a.Storage.Close()
}
