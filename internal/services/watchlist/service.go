// Package watchlist provides watchlist management and the portfolio view
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

// ErrTickerNotFound is returned when removing a ticker that is not saved.
var ErrTickerNotFound = errors.New("ticker not in watchlist")

// Compile-time interface check
var _ interfaces.WatchlistService = (*Service)(nil)

// Service implements WatchlistService
type Service struct {
	storage  interfaces.StorageManager
	provider interfaces.MarketDataProvider
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new watchlist service. provider may be nil, in which
// case prices are never looked up.
func NewService(storage interfaces.StorageManager, provider interfaces.MarketDataProvider, logger *common.Logger) *Service {
	return &Service{
		storage:  storage,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// GetWatchlist loads the saved watchlist
func (s *Service) GetWatchlist(ctx context.Context) (*models.Watchlist, error) {
	wl, err := s.storage.WatchlistStorage().Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist: %w", err)
	}
	return wl, nil
}

// AddItem saves ticker at price with today's date. A non-positive price is
// looked up from the provider. Adding a ticker that is already saved leaves
// the existing row untouched and reports added=false.
func (s *Service) AddItem(ctx context.Context, ticker string, price float64) (*models.Watchlist, bool, error) {
	ticker = models.NormalizeTicker(ticker)
	if ticker == "" {
		return nil, false, fmt.Errorf("ticker is required")
	}

	wl, err := s.GetWatchlist(ctx)
	if err != nil {
		return nil, false, err
	}
	if _, idx := wl.FindByTicker(ticker); idx >= 0 {
		s.logger.Debug().Str("ticker", ticker).Msg("Ticker already in watchlist")
		return wl, false, nil
	}

	if price <= 0 {
		price = s.livePrice(ctx, ticker)
	}
	wl.Entries = append(wl.Entries, s.newEntry(ticker, price))

	if err := s.storage.WatchlistStorage().Save(ctx, wl); err != nil {
		return nil, false, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Float64("price", price).Msg("Watchlist item added")
	return wl, true, nil
}

// AddRecords saves every scan result not already in the watchlist, at its
// enriched price, and returns how many were added.
func (s *Service) AddRecords(ctx context.Context, records []*models.EnrichedRecord) (*models.Watchlist, int, error) {
	wl, err := s.GetWatchlist(ctx)
	if err != nil {
		return nil, 0, err
	}

	added := 0
	for _, r := range records {
		if r == nil {
			continue
		}
		ticker := models.NormalizeTicker(r.Ticker)
		if ticker == "" {
			continue
		}
		if _, idx := wl.FindByTicker(ticker); idx >= 0 {
			continue
		}
		wl.Entries = append(wl.Entries, s.newEntry(ticker, r.CurrentPrice))
		added++
	}

	if added == 0 {
		return wl, 0, nil
	}
	if err := s.storage.WatchlistStorage().Save(ctx, wl); err != nil {
		return nil, 0, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Info().Int("added", added).Msg("Scan results added to watchlist")
	return wl, added, nil
}

// RemoveItem removes a ticker from the watchlist
func (s *Service) RemoveItem(ctx context.Context, ticker string) (*models.Watchlist, error) {
	wl, err := s.GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}

	ticker = models.NormalizeTicker(ticker)
	_, idx := wl.FindByTicker(ticker)
	if idx < 0 {
		return wl, fmt.Errorf("%w: '%s'", ErrTickerNotFound, ticker)
	}

	wl.Entries = append(wl.Entries[:idx], wl.Entries[idx+1:]...)

	if err := s.storage.WatchlistStorage().Save(ctx, wl); err != nil {
		return nil, fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Msg("Watchlist item removed")
	return wl, nil
}

// Portfolio prices every saved ticker and computes its return since it was
// added. A ticker whose live price cannot be fetched, or whose stored price
// is 0, reports a 0% return.
func (s *Service) Portfolio(ctx context.Context) ([]*models.PortfolioRow, error) {
	wl, err := s.GetWatchlist(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]*models.PortfolioRow, 0, len(wl.Entries))
	live := 0
	for _, entry := range wl.Entries {
		added := float64(entry.PriceAdded)
		current := s.livePrice(ctx, entry.Ticker)

		row := &models.PortfolioRow{WatchlistEntry: entry, CurrentPrice: current, Live: current > 0}
		if row.Live {
			live++
		} else {
			row.CurrentPrice = added
		}
		if added <= 0 {
			// Nothing to measure against; treat the entry as bought today.
			added = row.CurrentPrice
		}
		row.ReturnPct = ReturnPct(added, row.CurrentPrice)
		rows = append(rows, row)
	}

	s.logger.Info().Int("tickers", len(rows)).Int("priced", live).Msg("Portfolio refreshed")
	return rows, nil
}

// ReturnPct is (current - added) / added * 100, or 0 when added is not positive.
func ReturnPct(added, current float64) float64 {
	if added <= 0 {
		return 0
	}
	return (current - added) / added * 100
}

func (s *Service) newEntry(ticker string, price float64) models.WatchlistEntry {
	return models.WatchlistEntry{
		Ticker:     ticker,
		DateAdded:  models.NewCalendarDate(s.now()),
		PriceAdded: models.StoredPrice(price),
	}
}

// livePrice returns the provider's last price, or 0 when unavailable.
func (s *Service) livePrice(ctx context.Context, ticker string) float64 {
	if s.provider == nil || ctx.Err() != nil {
		return 0
	}
	quote, err := s.provider.GetRealTimeQuote(ctx, ticker)
	if err != nil {
		s.logger.Warn().Str("ticker", ticker).Err(err).Msg("Live price unavailable")
		return 0
	}
	return quote.Close.PositiveOr(0)
}
