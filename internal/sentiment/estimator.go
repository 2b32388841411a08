// Package sentiment scores news headlines
package sentiment

import (
	"context"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

// Vader scores text with the VADER rule-based model. The compound score is
// already normalised to [-1, 1].
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

// NewVader builds the analyzer and its lexicon
func NewVader() *Vader {
	return &Vader{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

// Polarity scores text in [-1, 1]
func (v *Vader) Polarity(_ context.Context, text string) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return clamp(v.analyzer.PolarityScores(text).Compound)
}

// ModelEstimator asks a remote model first and falls back to a local
// estimator when the model errors.
type ModelEstimator struct {
	scorer   interfaces.HeadlineScorer
	fallback interfaces.PolarityEstimator
	logger   *common.Logger
}

// NewModelEstimator creates an estimator backed by scorer. A nil fallback
// scores failed headlines as 0.
func NewModelEstimator(scorer interfaces.HeadlineScorer, fallback interfaces.PolarityEstimator, logger *common.Logger) *ModelEstimator {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &ModelEstimator{scorer: scorer, fallback: fallback, logger: logger}
}

// Polarity scores text in [-1, 1]
func (m *ModelEstimator) Polarity(ctx context.Context, text string) float64 {
	p, err := m.scorer.HeadlinePolarity(ctx, text)
	if err == nil {
		return clamp(p)
	}

	common.ContextLogger(ctx, m.logger).Warn().Err(err).Msg("Headline model failed, scoring locally")
	if m.fallback == nil {
		return 0
	}
	return clamp(m.fallback.Polarity(ctx, text))
}

// HeadlineScore averages the polarity of up to limit headlines in order.
// Provider-supplied polarity is used when present, otherwise est scores the
// title. Headlines with an empty title are skipped. The returned count is the
// number of headlines that contributed; the score is 0 when count is 0.
func HeadlineScore(ctx context.Context, news []*models.NewsItem, limit int, est interfaces.PolarityEstimator) (float64, int) {
	var sum float64
	count := 0
	for _, item := range news {
		if limit > 0 && count >= limit {
			break
		}
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		if p, ok := providerPolarity(item); ok {
			sum += p
		} else if est != nil {
			sum += clamp(est.Polarity(ctx, item.Title))
		}
		count++
	}
	if count == 0 {
		return 0, 0
	}
	return clamp(sum / float64(count)), count
}

func providerPolarity(item *models.NewsItem) (float64, bool) {
	if !item.Polarity.Valid {
		return 0, false
	}
	return clamp(item.Polarity.Value), true
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}

var (
	_ interfaces.PolarityEstimator = (*Vader)(nil)
	_ interfaces.PolarityEstimator = (*ModelEstimator)(nil)
)
