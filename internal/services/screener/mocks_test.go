package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

type mockSource struct {
	candidates []*models.Candidate
	err        error
	calls      int
	lastFilter models.FilterSet
}

func (m *mockSource) Screen(_ context.Context, filters models.FilterSet) ([]*models.Candidate, error) {
	m.calls++
	m.lastFilter = filters
	return m.candidates, m.err
}

// mockEnricher echoes candidates with a fixed P/B-derived price so order
// can be observed after sorting.
type mockEnricher struct {
	lastLimit  int
	lastLogger *common.Logger
}

func (m *mockEnricher) Enrich(ctx context.Context, candidates []*models.Candidate, limit int) []*models.EnrichedRecord {
	m.lastLimit = limit
	m.lastLogger, _ = common.LoggerFromContext(ctx)
	if limit < 1 {
		limit = 1
	}
	if limit > len(candidates) {
		limit = len(candidates)
	}
	out := make([]*models.EnrichedRecord, limit)
	for i := 0; i < limit; i++ {
		out[i] = &models.EnrichedRecord{Candidate: *candidates[i], Fetched: true}
	}
	return out
}

type mockHistory struct {
	records map[string]*models.ScanRecord
	saveErr error
	nextID  int
}

func newMockHistory() *mockHistory {
	return &mockHistory{records: make(map[string]*models.ScanRecord)}
}

func (m *mockHistory) SaveScan(_ context.Context, record *models.ScanRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.nextID++
	if record.ID == "" {
		record.ID = fmt.Sprintf("scan-%d", m.nextID)
	}
	record.FilterKey = record.Filters.Key()
	record.ResultCount = len(record.Results)
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *mockHistory) GetScan(_ context.Context, id string) (*models.ScanRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, errors.New("scan not found")
	}
	cp := *r
	return &cp, nil
}

func (m *mockHistory) ListScans(_ context.Context, options interfaces.ScanListOptions) ([]*models.ScanRecord, error) {
	var out []*models.ScanRecord
	for _, r := range m.records {
		if options.FilterKey != "" && r.FilterKey != options.FilterKey {
			continue
		}
		if options.Preset != "" && r.Preset != options.Preset {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockHistory) DeleteScan(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

type mockStorage struct {
	history *mockHistory
}

func (m *mockStorage) WatchlistStorage() interfaces.WatchlistStorage     { return nil }
func (m *mockStorage) ScanHistoryStorage() interfaces.ScanHistoryStorage { return m.history }
func (m *mockStorage) Close() error                                      { return nil }
