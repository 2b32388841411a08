package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/valuescout/internal/models"
)

// Enricher turns screener candidates into enriched records
type Enricher interface {
	// Enrich processes the first limit candidates in order and returns exactly
	// min(len(candidates), limit) records. It never fails.
	Enrich(ctx context.Context, candidates []*models.Candidate, limit int) []*models.EnrichedRecord
}

// ScreenerService runs scans and keeps their history
type ScreenerService interface {
	Scan(ctx context.Context, options ScanOptions) (*models.ScanRecord, error)
	Presets() []models.Preset
	GetScan(ctx context.Context, id string) (*models.ScanRecord, error)
	ListScans(ctx context.Context, options ScanListOptions) ([]*models.ScanRecord, error)
	DeleteScan(ctx context.Context, id string) error
}

// ScanOptions configures one scan
type ScanOptions struct {
	Preset  string           // named preset; empty uses the configured default
	Filters models.FilterSet // overrides applied on top of the preset
	Cap     int              // max candidates to enrich; <= 0 uses the configured default
	SortBy  string           // presentation sort key; empty uses the configured default
	MaxAge  time.Duration    // reuse a recorded scan with the same parameters when younger than this
}

// WatchlistService manages the saved-stock table
type WatchlistService interface {
	GetWatchlist(ctx context.Context) (*models.Watchlist, error)
	AddItem(ctx context.Context, ticker string, price float64) (*models.Watchlist, bool, error)
	AddRecords(ctx context.Context, records []*models.EnrichedRecord) (*models.Watchlist, int, error)
	RemoveItem(ctx context.Context, ticker string) (*models.Watchlist, error)
	Portfolio(ctx context.Context) ([]*models.PortfolioRow, error)
}

// CompareService scores two tickers against each other
type CompareService interface {
	Compare(ctx context.Context, tickerA, tickerB string) (*models.Comparison, error)
	RenderPriceChart(ctx context.Context, tickerA, tickerB string) ([]byte, error)
}
