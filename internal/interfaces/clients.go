// Package interfaces defines service contracts for ValueScout
package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/valuescout/internal/models"
)

// CandidateSource is the third-party screener
type CandidateSource interface {
	// Screen returns tickers matching the named filters, in screener order.
	// An empty result is not an error.
	Screen(ctx context.Context, filters models.FilterSet) ([]*models.Candidate, error)
}

// MarketDataProvider supplies per-ticker supplementary data
type MarketDataProvider interface {
	// GetSnapshot fetches price, 52-week high, analyst target, fundamentals and
	// recent headlines. Partial data is returned without error; an error means
	// nothing at all could be fetched.
	GetSnapshot(ctx context.Context, ticker string, headlineLimit int) (*models.Snapshot, error)

	// GetRealTimeQuote retrieves the live price only
	GetRealTimeQuote(ctx context.Context, ticker string) (*models.RealTimeQuote, error)

	// GetEOD retrieves end-of-day price history
	GetEOD(ctx context.Context, ticker string, opts ...EODOption) (*models.EODResponse, error)
}

// PolarityEstimator scores a headline in [-1, 1]. It never fails; an
// estimator that cannot score returns 0.
type PolarityEstimator interface {
	Polarity(ctx context.Context, text string) float64
}

// HeadlineScorer is a remote model that scores a headline in [-1, 1]
type HeadlineScorer interface {
	HeadlinePolarity(ctx context.Context, headline string) (float64, error)
}

// EODOption configures EOD data requests
type EODOption func(*EODParams)

// EODParams holds EOD query parameters
type EODParams struct {
	From   time.Time
	To     time.Time
	Period string // d=daily, w=weekly, m=monthly
	Order  string // a=ascending, d=descending
}

// WithDateRange sets the date range for EOD query
func WithDateRange(from, to time.Time) EODOption {
	return func(p *EODParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period for EOD query
func WithPeriod(period string) EODOption {
	return func(p *EODParams) {
		p.Period = period
	}
}
