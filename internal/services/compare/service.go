// Package compare scores two tickers head to head
package compare

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

// Factor names, in scoring order.
const (
	FactorPE        = "P/E"
	FactorPB        = "P/B"
	FactorDiscount  = "Discount From High %"
	FactorUpside    = "Upside %"
	FactorSentiment = "Sentiment"
)

// chartLookback is the price history span shown on the comparison chart.
const chartLookback = 365 * 24 * time.Hour

// Compile-time interface check
var _ interfaces.CompareService = (*Service)(nil)

// Service implements CompareService
type Service struct {
	enricher interfaces.Enricher
	provider interfaces.MarketDataProvider
	logger   *common.Logger
	now      func() time.Time
}

// NewService creates a new compare service
func NewService(enricher interfaces.Enricher, provider interfaces.MarketDataProvider, logger *common.Logger) *Service {
	return &Service{
		enricher: enricher,
		provider: provider,
		logger:   logger,
		now:      time.Now,
	}
}

// Compare enriches both tickers and awards one point per factor won.
func (s *Service) Compare(ctx context.Context, tickerA, tickerB string) (*models.Comparison, error) {
	a, b, err := normalizePair(tickerA, tickerB)
	if err != nil {
		return nil, err
	}

	records := s.enricher.Enrich(ctx, []*models.Candidate{{Ticker: a}, {Ticker: b}}, 2)
	if len(records) != 2 || records[0] == nil || records[1] == nil {
		return nil, fmt.Errorf("failed to enrich %s and %s", a, b)
	}

	cmp := Score(records[0], records[1])
	s.logger.Info().
		Str("a", a).Int("score_a", cmp.ScoreA).
		Str("b", b).Int("score_b", cmp.ScoreB).
		Str("winner", cmp.Winner).
		Msg("Comparison complete")
	return cmp, nil
}

// Score compares two enriched records. Lower positive P/E and P/B win, and
// a positive ratio beats a missing one. Larger discount, upside and
// sentiment win. Equal values score nothing.
func Score(a, b *models.EnrichedRecord) *models.Comparison {
	cmp := &models.Comparison{A: a, B: b}

	add := func(f models.FactorResult, aWins, bWins bool) {
		switch {
		case aWins:
			f.Winner = a.Ticker
			cmp.ScoreA++
		case bWins:
			f.Winner = b.Ticker
			cmp.ScoreB++
		}
		cmp.Factors = append(cmp.Factors, f)
	}

	ratio := func(name string, av, bv models.OptionalFloat) {
		ap, aok := av.Positive()
		bp, bok := bv.Positive()
		add(models.FactorResult{Factor: name, A: ap, B: bp},
			aok && (!bok || ap < bp),
			bok && (!aok || bp < ap))
	}
	higher := func(name string, av, bv float64) {
		add(models.FactorResult{Factor: name, A: av, B: bv}, av > bv, bv > av)
	}

	ratio(FactorPE, a.PE, b.PE)
	ratio(FactorPB, a.PB, b.PB)
	higher(FactorDiscount, a.DiscountFromHighPct, b.DiscountFromHighPct)
	higher(FactorUpside, a.UpsidePct, b.UpsidePct)
	higher(FactorSentiment, a.SentimentScore, b.SentimentScore)

	switch {
	case cmp.ScoreA > cmp.ScoreB:
		cmp.Winner = a.Ticker
	case cmp.ScoreB > cmp.ScoreA:
		cmp.Winner = b.Ticker
	default:
		cmp.Winner = models.TieLabel
	}
	return cmp
}

// RenderPriceChart renders a PNG of both tickers' closes over the last year,
// rebased to 100 so different price levels share one axis.
func (s *Service) RenderPriceChart(ctx context.Context, tickerA, tickerB string) ([]byte, error) {
	a, b, err := normalizePair(tickerA, tickerB)
	if err != nil {
		return nil, err
	}

	to := s.now()
	from := to.Add(-chartLookback)

	var series []PriceSeries
	for _, ticker := range []string{a, b} {
		eod, err := s.provider.GetEOD(ctx, ticker, interfaces.WithDateRange(from, to), interfaces.WithPeriod("d"))
		if err != nil {
			return nil, fmt.Errorf("failed to get price history for %s: %w", ticker, err)
		}
		series = append(series, toSeries(ticker, eod.Data))
	}

	return RenderPriceChart(series)
}

// toSeries orders bars oldest first and keeps those with a positive close.
func toSeries(ticker string, bars []models.EODBar) PriceSeries {
	sorted := make([]models.EODBar, 0, len(bars))
	for _, bar := range bars {
		if bar.Close > 0 && !bar.Date.IsZero() {
			sorted = append(sorted, bar)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	ps := PriceSeries{Ticker: ticker}
	for _, bar := range sorted {
		ps.Dates = append(ps.Dates, bar.Date)
		ps.Closes = append(ps.Closes, bar.Close)
	}
	return ps
}

func normalizePair(tickerA, tickerB string) (string, string, error) {
	a, b := models.NormalizeTicker(tickerA), models.NormalizeTicker(tickerB)
	if a == "" || b == "" {
		return "", "", fmt.Errorf("two tickers are required")
	}
	if a == b {
		return "", "", fmt.Errorf("cannot compare %s with itself", a)
	}
	return a, b, nil
}
