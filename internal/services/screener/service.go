// Package screener runs scans: screen, enrich, sort and record.
package screener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

var (
	// ErrNoCandidates means the screener was unreachable or matched nothing.
	ErrNoCandidates = errors.New("no candidates found")

	// ErrUnknownPreset is returned for a preset name with no definition.
	ErrUnknownPreset = errors.New("unknown preset")

	// ErrInvalidSortKey is returned for a sort key SortRecords does not know.
	ErrInvalidSortKey = errors.New("invalid sort key")
)

// Compile-time interface check
var _ interfaces.ScreenerService = (*Service)(nil)

// Service implements ScreenerService
type Service struct {
	source   interfaces.CandidateSource
	enricher interfaces.Enricher
	storage  interfaces.StorageManager
	defaults common.ScanConfig
	logger   *common.Logger
}

// NewService creates a new screener service
func NewService(source interfaces.CandidateSource, enricher interfaces.Enricher, storage interfaces.StorageManager, defaults common.ScanConfig, logger *common.Logger) *Service {
	return &Service{
		source:   source,
		enricher: enricher,
		storage:  storage,
		defaults: defaults,
		logger:   logger,
	}
}

// Presets returns the available strategy presets.
func (s *Service) Presets() []models.Preset {
	return AllPresets()
}

// Scan screens with the resolved filters, enriches up to the cap and sorts
// the result for display. The record is saved to history; a failed save is
// logged but the scan still succeeds. A context without a logger gets one
// with a fresh correlation id, shared by every line the scan writes.
func (s *Service) Scan(ctx context.Context, options interfaces.ScanOptions) (*models.ScanRecord, error) {
	logger, ok := common.LoggerFromContext(ctx)
	if !ok {
		logger = s.logger.WithCorrelationId(uuid.NewString())
		ctx = common.WithLogger(ctx, logger)
	}

	presetName, filters, err := s.resolveFilters(options)
	if err != nil {
		return nil, err
	}

	limit := options.Cap
	if limit <= 0 {
		limit = s.defaults.Cap
	}
	if limit < 1 {
		limit = 1
	}

	sortBy := options.SortBy
	if sortBy == "" {
		sortBy = s.defaults.SortBy
	}
	if !ValidSortKey(sortBy) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidSortKey, sortBy)
	}

	if options.MaxAge > 0 {
		if cached := s.recentScan(ctx, filters, limit, options.MaxAge); cached != nil {
			SortRecords(cached.Results, sortBy)
			cached.SortBy = sortBy
			cached.Cached = true
			logger.Info().Str("id", cached.ID).Str("preset", cached.Preset).Msg("Serving recorded scan")
			return cached, nil
		}
	}

	start := time.Now()
	candidates, err := s.source.Screen(ctx, filters)
	if err != nil {
		logger.Warn().Str("preset", presetName).Err(err).Msg("Screener request failed")
		return nil, fmt.Errorf("%w: %w", ErrNoCandidates, err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	results := s.enricher.Enrich(ctx, candidates, limit)
	SortRecords(results, sortBy)

	record := &models.ScanRecord{
		Preset:   presetName,
		Filters:  filters,
		Cap:      limit,
		SortBy:   sortBy,
		Screened: len(candidates),
		Results:  results,
	}

	if err := s.storage.ScanHistoryStorage().SaveScan(ctx, record); err != nil {
		logger.Warn().Err(err).Msg("Failed to record scan")
	}

	logger.Info().
		Str("preset", presetName).
		Int("screened", len(candidates)).
		Int("enriched", len(results)).
		Dur("elapsed", time.Since(start)).
		Msg("Scan complete")

	return record, nil
}

// resolveFilters merges user filters over the named (or default) preset.
// A scan with only user filters and no preset is allowed when Preset is "-"
// or "custom".
func (s *Service) resolveFilters(options interfaces.ScanOptions) (string, models.FilterSet, error) {
	name := strings.TrimSpace(options.Preset)
	switch strings.ToLower(name) {
	case "-", "custom":
		if len(options.Filters) == 0 {
			return "", nil, fmt.Errorf("custom scan requires at least one filter")
		}
		return "", models.FilterSet{}.Merge(options.Filters), nil
	case "":
		name = s.defaults.Preset
		if name == "" {
			name = DefaultPreset
		}
	}

	preset, ok := LookupPreset(name)
	if !ok {
		return "", nil, fmt.Errorf("%w: '%s' (available: %s)", ErrUnknownPreset, name, strings.Join(PresetNames(), ", "))
	}
	return preset.Name, preset.Filters.Merge(options.Filters), nil
}

// recentScan returns the newest recorded scan with the same filters and cap
// that is younger than maxAge, or nil.
func (s *Service) recentScan(ctx context.Context, filters models.FilterSet, limit int, maxAge time.Duration) *models.ScanRecord {
	records, err := s.storage.ScanHistoryStorage().ListScans(ctx, interfaces.ScanListOptions{FilterKey: filters.Key()})
	if err != nil {
		common.ContextLogger(ctx, s.logger).Warn().Err(err).Msg("Failed to read scan history")
		return nil
	}
	cutoff := time.Now().Add(-maxAge)
	for _, r := range records {
		if r.CreatedAt.Before(cutoff) {
			break // newest first
		}
		if r.Cap == limit {
			return r
		}
	}
	return nil
}

// GetScan returns a recorded scan by ID.
func (s *Service) GetScan(ctx context.Context, id string) (*models.ScanRecord, error) {
	record, err := s.storage.ScanHistoryStorage().GetScan(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan: %w", err)
	}
	return record, nil
}

// ListScans returns recorded scans, newest first.
func (s *Service) ListScans(ctx context.Context, options interfaces.ScanListOptions) ([]*models.ScanRecord, error) {
	records, err := s.storage.ScanHistoryStorage().ListScans(ctx, options)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	return records, nil
}

// DeleteScan removes a recorded scan. An unknown ID is not an error.
func (s *Service) DeleteScan(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("scan id is required")
	}
	if err := s.storage.ScanHistoryStorage().DeleteScan(ctx, id); err != nil {
		return fmt.Errorf("failed to delete scan: %w", err)
	}
	s.logger.Info().Str("id", id).Msg("Scan deleted")
	return nil
}
