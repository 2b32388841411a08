package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	config := common.NewDefaultConfig()
	config.Storage.WatchlistFile = filepath.Join(dir, "my_portfolio.csv")
	config.Storage.HistoryPath = filepath.Join(dir, "history")
	config.Storage.ExportDir = filepath.Join(dir, "exports")

	mgr, err := NewManager(common.NewSilentLogger(), config)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestManager_WiresBothAreas(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	assert.Equal(t, "my_portfolio.csv", filepath.Base(mgr.WatchlistStorage().Location()))
	assert.Equal(t, "exports", filepath.Base(mgr.ExportDir()))

	wl := &models.Watchlist{Entries: []models.WatchlistEntry{{Ticker: "AAA", PriceAdded: 10}}}
	require.NoError(t, mgr.WatchlistStorage().Save(ctx, wl))
	loaded, err := mgr.WatchlistStorage().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"AAA"}, loaded.Tickers())

	rec := &models.ScanRecord{Preset: "hidden-value", Filters: models.FilterSet{"P/B": "Under 1"}}
	require.NoError(t, mgr.ScanHistoryStorage().SaveScan(ctx, rec))
	scans, err := mgr.ScanHistoryStorage().ListScans(ctx, interfaces.ScanListOptions{})
	require.NoError(t, err)
	require.Len(t, scans, 1)
	assert.Equal(t, rec.ID, scans[0].ID)
}
