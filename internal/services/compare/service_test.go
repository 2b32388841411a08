package compare

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

type mockEnricher struct {
	records map[string]*models.EnrichedRecord
	limit   int
}

func (m *mockEnricher) Enrich(_ context.Context, candidates []*models.Candidate, limit int) []*models.EnrichedRecord {
	m.limit = limit
	out := make([]*models.EnrichedRecord, 0, len(candidates))
	for _, c := range candidates {
		if r, ok := m.records[c.Ticker]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, &models.EnrichedRecord{Candidate: *c})
	}
	return out
}

type mockProvider struct {
	bars    map[string][]models.EODBar
	lastOpt interfaces.EODParams
}

func (m *mockProvider) GetSnapshot(context.Context, string, int) (*models.Snapshot, error) {
	return nil, errors.New("not used")
}

func (m *mockProvider) GetRealTimeQuote(context.Context, string) (*models.RealTimeQuote, error) {
	return nil, errors.New("not used")
}

func (m *mockProvider) GetEOD(_ context.Context, ticker string, opts ...interfaces.EODOption) (*models.EODResponse, error) {
	for _, o := range opts {
		o(&m.lastOpt)
	}
	bars, ok := m.bars[ticker]
	if !ok {
		return nil, errors.New("no history")
	}
	return &models.EODResponse{Ticker: ticker, Data: bars}, nil
}

func record(ticker string, pe, pb models.OptionalFloat, discount, upside, sentiment float64) *models.EnrichedRecord {
	return &models.EnrichedRecord{
		Candidate:           models.Candidate{Ticker: ticker, PE: pe, PB: pb},
		DiscountFromHighPct: discount,
		UpsidePct:           upside,
		SentimentScore:      sentiment,
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name           string
		a, b           *models.EnrichedRecord
		scoreA, scoreB int
		winner         string
	}{
		{
			name:   "A sweeps",
			a:      record("AAA", models.Float(8), models.Float(0.5), 40, 30, 0.4),
			b:      record("BBB", models.Float(12), models.Float(0.9), 10, 5, 0.1),
			scoreA: 5, scoreB: 0, winner: "AAA",
		},
		{
			name:   "split with tie",
			a:      record("AAA", models.Float(8), models.Float(0.9), 10, 30, 0),
			b:      record("BBB", models.Float(12), models.Float(0.5), 40, 5, 0),
			scoreA: 2, scoreB: 2, winner: models.TieLabel,
		},
		{
			name:   "positive ratio beats missing or negative",
			a:      record("AAA", models.Float(-4), models.Missing(), 0, 0, 0),
			b:      record("BBB", models.Float(30), models.Float(3), 0, 0, 0),
			scoreA: 0, scoreB: 2, winner: "BBB",
		},
		{
			name:   "nothing known",
			a:      record("AAA", models.Missing(), models.Missing(), 0, 0, 0),
			b:      record("BBB", models.Missing(), models.Missing(), 0, 0, 0),
			scoreA: 0, scoreB: 0, winner: models.TieLabel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp := Score(tt.a, tt.b)
			assert.Equal(t, tt.scoreA, cmp.ScoreA)
			assert.Equal(t, tt.scoreB, cmp.ScoreB)
			assert.Equal(t, tt.winner, cmp.Winner)
			assert.Len(t, cmp.Factors, 5)
		})
	}
}

func TestScore_FactorWinners(t *testing.T) {
	cmp := Score(
		record("AAA", models.Float(8), models.Float(0.9), 10, 30, 0.2),
		record("BBB", models.Float(12), models.Float(0.5), 10, 5, 0.2),
	)
	winners := map[string]string{}
	for _, f := range cmp.Factors {
		winners[f.Factor] = f.Winner
	}
	assert.Equal(t, map[string]string{
		FactorPE:        "AAA",
		FactorPB:        "BBB",
		FactorDiscount:  "",
		FactorUpside:    "AAA",
		FactorSentiment: "",
	}, winners)
}

func TestCompare(t *testing.T) {
	enricher := &mockEnricher{records: map[string]*models.EnrichedRecord{
		"AAA": record("AAA", models.Float(8), models.Float(0.5), 40, 30, 0.4),
		"BBB": record("BBB", models.Float(12), models.Float(0.9), 10, 5, 0.1),
	}}
	svc := NewService(enricher, &mockProvider{}, common.NewSilentLogger())

	cmp, err := svc.Compare(context.Background(), "aaa", " bbb")
	require.NoError(t, err)
	assert.Equal(t, 2, enricher.limit)
	assert.Equal(t, "AAA", cmp.Winner)
	assert.Equal(t, "AAA", cmp.A.Ticker)
	assert.Equal(t, "BBB", cmp.B.Ticker)

	_, err = svc.Compare(context.Background(), "AAA", "aaa")
	assert.Error(t, err)
	_, err = svc.Compare(context.Background(), "AAA", "")
	assert.Error(t, err)
}

func bars(start time.Time, closes ...float64) []models.EODBar {
	out := make([]models.EODBar, len(closes))
	// Provider order is most recent first.
	for i, c := range closes {
		out[len(closes)-1-i] = models.EODBar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func TestRenderPriceChart(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	provider := &mockProvider{bars: map[string][]models.EODBar{
		"AAA": bars(start, 10, 11, 12, 11.5),
		"BBB": bars(start, 200, 190, 210, 220),
	}}
	svc := NewService(&mockEnricher{}, provider, common.NewSilentLogger())
	svc.now = func() time.Time { return start.Add(chartLookback) }

	png, err := svc.RenderPriceChart(context.Background(), "AAA", "BBB")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "PNG signature")
	assert.Equal(t, start, provider.lastOpt.From)
	assert.Equal(t, "d", provider.lastOpt.Period)
}

func TestRenderPriceChart_MissingHistory(t *testing.T) {
	svc := NewService(&mockEnricher{}, &mockProvider{}, common.NewSilentLogger())
	_, err := svc.RenderPriceChart(context.Background(), "AAA", "BBB")
	assert.Error(t, err)
}

func TestToSeries(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	in := bars(start, 10, 0, 20)
	ps := toSeries("AAA", in)
	assert.Equal(t, []float64{10, 20}, ps.Closes, "oldest first, zero closes dropped")
	assert.Equal(t, []float64{100, 200}, ps.Rebased())
}

func TestRenderPriceChart_TooFewPoints(t *testing.T) {
	_, err := RenderPriceChart([]PriceSeries{{Ticker: "AAA", Closes: []float64{1}}})
	assert.Error(t, err)

	_, err = RenderPriceChart(nil)
	assert.Error(t, err)
}
