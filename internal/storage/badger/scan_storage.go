package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

// MaxScanRecords bounds the history; older scans are pruned on save.
const MaxScanRecords = 50

const defaultListLimit = 20

// ErrScanNotFound is returned when no scan has the requested ID.
var ErrScanNotFound = errors.New("scan not found")

type scanHistoryStorage struct {
	store  *Store
	logger *common.Logger
}

// NewScanHistoryStorage creates a ScanHistoryStorage backed by BadgerHold.
func NewScanHistoryStorage(store *Store, logger *common.Logger) *scanHistoryStorage {
	return &scanHistoryStorage{store: store, logger: logger}
}

func (s *scanHistoryStorage) SaveScan(_ context.Context, record *models.ScanRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.FilterKey = record.Filters.Key()
	record.ResultCount = len(record.Results)

	if err := s.store.db.Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save scan record: %w", err)
	}
	s.logger.Debug().Str("id", record.ID).Str("preset", record.Preset).Int("results", record.ResultCount).Msg("Scan record saved")

	s.pruneOldRecords()

	return nil
}

func (s *scanHistoryStorage) pruneOldRecords() {
	var records []models.ScanRecord
	if err := s.store.db.Find(&records, nil); err != nil || len(records) <= MaxScanRecords {
		return
	}

	sortNewestFirst(records)

	for _, old := range records[MaxScanRecords:] {
		if err := s.store.db.Delete(old.ID, models.ScanRecord{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Warn().Str("id", old.ID).Err(err).Msg("Failed to prune scan record")
		}
	}
	s.logger.Debug().Int("pruned", len(records)-MaxScanRecords).Msg("Pruned old scan records")
}

func (s *scanHistoryStorage) GetScan(_ context.Context, id string) (*models.ScanRecord, error) {
	var record models.ScanRecord
	if err := s.store.db.Get(id, &record); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrScanNotFound, id)
		}
		return nil, fmt.Errorf("failed to get scan record '%s': %w", id, err)
	}
	return &record, nil
}

func (s *scanHistoryStorage) ListScans(_ context.Context, options interfaces.ScanListOptions) ([]*models.ScanRecord, error) {
	var records []models.ScanRecord

	var query *badgerhold.Query
	if options.FilterKey != "" {
		query = badgerhold.Where("FilterKey").Eq(options.FilterKey).Index("FilterKey")
		if options.Preset != "" {
			query = query.And("Preset").Eq(options.Preset)
		}
	} else if options.Preset != "" {
		query = badgerhold.Where("Preset").Eq(options.Preset)
	}

	if err := s.store.db.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list scan records: %w", err)
	}

	sortNewestFirst(records)

	limit := options.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}

	result := make([]*models.ScanRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

func (s *scanHistoryStorage) DeleteScan(_ context.Context, id string) error {
	err := s.store.db.Delete(id, models.ScanRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete scan record '%s': %w", id, err)
	}
	s.logger.Debug().Str("id", id).Msg("Scan record deleted")
	return nil
}

func sortNewestFirst(records []models.ScanRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

var _ interfaces.ScanHistoryStorage = (*scanHistoryStorage)(nil)
