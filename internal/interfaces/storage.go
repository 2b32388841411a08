package interfaces

import (
	"context"

	"github.com/bobmcallan/valuescout/internal/models"
)

// StorageManager coordinates the persistence backends
type StorageManager interface {
	WatchlistStorage() WatchlistStorage
	ScanHistoryStorage() ScanHistoryStorage
	Close() error
}

// WatchlistStorage persists the ticker-keyed watchlist table
type WatchlistStorage interface {
	// Load reads the full table. A missing file is an empty watchlist.
	Load(ctx context.Context) (*models.Watchlist, error)

	// Save replaces the stored table with watchlist.
	Save(ctx context.Context, watchlist *models.Watchlist) error

	// Location describes where the table lives (a file path for the CSV store).
	Location() string
}

// ScanHistoryStorage records screener runs
type ScanHistoryStorage interface {
	SaveScan(ctx context.Context, record *models.ScanRecord) error
	GetScan(ctx context.Context, id string) (*models.ScanRecord, error)
	ListScans(ctx context.Context, options ScanListOptions) ([]*models.ScanRecord, error)
	DeleteScan(ctx context.Context, id string) error
}

// ScanListOptions filters scan history listings
type ScanListOptions struct {
	Preset    string
	FilterKey string
	Limit     int
}
