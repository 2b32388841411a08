package storage

import (
	"fmt"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/storage/badger"
)

// Manager implements interfaces.StorageManager over the CSV watchlist and
// the BadgerHold scan history.
type Manager struct {
	watchlist *CSVWatchlistStorage
	history   *badger.Store
	scans     interfaces.ScanHistoryStorage
	exportDir string
	logger    *common.Logger
}

// NewManager opens both storage areas described by config.Storage.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	historyStore, err := badger.NewStore(logger, config.Storage.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	logger.Info().
		Str("watchlist", config.Storage.WatchlistFile).
		Str("history", config.Storage.HistoryPath).
		Msg("Storage manager initialized")

	return &Manager{
		watchlist: NewCSVWatchlistStorage(config.Storage.WatchlistFile, config.Storage.Versions, logger),
		history:   historyStore,
		scans:     badger.NewScanHistoryStorage(historyStore, logger),
		exportDir: config.Storage.ExportDir,
		logger:    logger,
	}, nil
}

func (m *Manager) WatchlistStorage() interfaces.WatchlistStorage {
	return m.watchlist
}

func (m *Manager) ScanHistoryStorage() interfaces.ScanHistoryStorage {
	return m.scans
}

// ExportDir is where scan exports go when no explicit path is given.
func (m *Manager) ExportDir() string {
	return m.exportDir
}

func (m *Manager) Close() error {
	if err := m.history.Close(); err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}
	return nil
}

var _ interfaces.StorageManager = (*Manager)(nil)
