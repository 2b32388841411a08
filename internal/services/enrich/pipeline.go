// Package enrich turns screener candidates into enriched records
package enrich

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
	"github.com/bobmcallan/valuescout/internal/sentiment"
)

// DefaultHeadlineLimit is how many headlines feed the sentiment average.
const DefaultHeadlineLimit = 5

// Pipeline enriches candidates one at a time, in input order. Request pacing
// is the provider client's concern; the pipeline simply calls it in sequence.
type Pipeline struct {
	provider      interfaces.MarketDataProvider
	estimator     interfaces.PolarityEstimator
	headlineLimit int
	logger        *common.Logger
}

// Option configures the pipeline
type Option func(*Pipeline)

// WithHeadlineLimit sets how many headlines are scored per ticker
func WithHeadlineLimit(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.headlineLimit = n
		}
	}
}

// NewPipeline creates an enrichment pipeline
func NewPipeline(provider interfaces.MarketDataProvider, estimator interfaces.PolarityEstimator, logger *common.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	p := &Pipeline{
		provider:      provider,
		estimator:     estimator,
		headlineLimit: DefaultHeadlineLimit,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enrich processes the first limit candidates and returns exactly
// min(len(candidates), limit) records in the same order. A limit below 1 is
// treated as 1. Provider failures and panics are logged and leave the
// affected record with defaulted fields.
func (p *Pipeline) Enrich(ctx context.Context, candidates []*models.Candidate, limit int) []*models.EnrichedRecord {
	if limit < 1 {
		limit = 1
	}
	n := min(len(candidates), limit)

	logger := common.ContextLogger(ctx, p.logger)
	start := time.Now()
	records := make([]*models.EnrichedRecord, 0, n)
	fetched := 0
	for _, c := range candidates[:n] {
		rec := p.enrichOne(ctx, logger, c)
		if rec.Fetched {
			fetched++
		}
		records = append(records, rec)
	}

	logger.Info().
		Int("candidates", len(candidates)).
		Int("enriched", len(records)).
		Int("fetched", fetched).
		Str("elapsed", time.Since(start).Round(time.Millisecond).String()).
		Msg("Enrichment complete")

	return records
}

// enrichOne never fails: a nil candidate, a provider error or a panic all
// produce a defaulted record.
func (p *Pipeline) enrichOne(ctx context.Context, logger *common.Logger, c *models.Candidate) (rec *models.EnrichedRecord) {
	if c == nil {
		c = &models.Candidate{}
	}
	rec = newRecord(*c)
	if rec.Ticker == "" {
		return rec
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Warn().Str("ticker", c.Ticker).Str("panic", fmt.Sprint(r)).Msg("Enrichment panicked, using defaults")
			rec = newRecord(*c)
		}
	}()

	snap, err := p.provider.GetSnapshot(ctx, rec.Ticker, p.headlineLimit)
	if err != nil || snap == nil {
		logger.Warn().Str("ticker", rec.Ticker).Err(err).Msg("Market data unavailable, using screener fields")
		return rec
	}

	apply(ctx, rec, snap, p.headlineLimit, p.estimator)
	return rec
}

// newRecord builds the fully defaulted record for a candidate. A sector the
// screener supplied is kept; only a missing one becomes UnknownSector.
func newRecord(c models.Candidate) *models.EnrichedRecord {
	c.Ticker = models.NormalizeTicker(c.Ticker)
	rec := &models.EnrichedRecord{
		Candidate:    c,
		CurrentPrice: c.Price.PositiveOr(0),
	}
	rec.Sector = resolveSector("", c.Sector)
	rec.SentimentNote = models.SentimentNoteFor(0, 0)
	return rec
}

// apply merges a provider snapshot into rec and computes derived fields.
func apply(ctx context.Context, rec *models.EnrichedRecord, snap *models.Snapshot, headlineLimit int, est interfaces.PolarityEstimator) {
	rec.Fetched = true

	if price, ok := snap.CurrentPrice.Positive(); ok {
		rec.CurrentPrice = price
	}
	rec.FiftyTwoWeekHigh = snap.FiftyTwoWeekHigh.PositiveOr(0)
	rec.AnalystTargetPrice = snap.AnalystTargetPrice.PositiveOr(0)
	rec.Sector = resolveSector(snap.Sector, rec.Candidate.Sector)

	if rec.Company == "" {
		rec.Company = snap.Name
	}
	if !rec.PE.Valid {
		rec.PE = snap.PE
	}
	if !rec.PB.Valid {
		rec.PB = snap.PB
	}
	if !rec.MarketCap.Valid {
		rec.MarketCap = snap.MarketCap
	}

	rec.DiscountFromHighPct = DiscountFromHighPct(rec.FiftyTwoWeekHigh, rec.CurrentPrice)
	rec.UpsidePct = UpsidePct(rec.AnalystTargetPrice, rec.CurrentPrice)

	rec.SentimentScore, rec.HeadlineCount = sentiment.HeadlineScore(ctx, snap.News, headlineLimit, est)
	rec.SentimentNote = models.SentimentNoteFor(rec.SentimentScore, rec.HeadlineCount)
}

// resolveSector prefers the provider's sector, then the screener's, then
// UnknownSector.
func resolveSector(provider, screener string) string {
	if s := strings.TrimSpace(provider); s != "" {
		return s
	}
	if s := strings.TrimSpace(screener); s != "" {
		return s
	}
	return models.UnknownSector
}

// DiscountFromHighPct is how far current sits below the 52-week high, in
// percent. It is 0 unless both inputs are positive and finite, and negative
// when current trades above the recorded high.
func DiscountFromHighPct(high, current float64) float64 {
	if !usable(high) || !usable(current) {
		return 0
	}
	return (high - current) / high * 100
}

// UpsidePct is the analyst target's distance above current, in percent. It
// is 0 unless both inputs are positive and finite.
func UpsidePct(target, current float64) float64 {
	if !usable(target) || !usable(current) {
		return 0
	}
	return (target - current) / current * 100
}

func usable(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

var _ interfaces.Enricher = (*Pipeline)(nil)
