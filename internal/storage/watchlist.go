package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

// ErrWatchlistHeader is returned when the file's first row is not the
// watchlist header. Such a file is never overwritten.
var ErrWatchlistHeader = errors.New("unexpected watchlist header")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWatchlistStorage keeps the watchlist as a three-column CSV file:
// Ticker,Date Added,Price Added. The column schema is fixed so files written
// by earlier tools keep loading.
type CSVWatchlistStorage struct {
	path     string
	versions int
	logger   *common.Logger
	mu       sync.Mutex
}

// NewCSVWatchlistStorage creates a watchlist store for path. The file is
// created on first save.
func NewCSVWatchlistStorage(path string, versions int, logger *common.Logger) *CSVWatchlistStorage {
	if versions < 0 {
		versions = 0
	}
	return &CSVWatchlistStorage{path: path, versions: versions, logger: logger}
}

// Location returns the CSV file path.
func (s *CSVWatchlistStorage) Location() string {
	return s.path
}

// Load reads the watchlist. A missing or empty file is an empty watchlist.
// Rows with a blank ticker are skipped and duplicate tickers keep the first
// occurrence. An unparseable price reads as 0 and an unparseable date as
// the zero date. A file whose first row is not exactly the header fails
// with ErrWatchlistHeader.
func (s *CSVWatchlistStorage) Load(_ context.Context) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &models.Watchlist{}, nil
		}
		return nil, fmt.Errorf("failed to read watchlist %s: %w", s.path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return &models.Watchlist{}, nil
	}
	if err := checkWatchlistHeader(data); err != nil {
		return nil, fmt.Errorf("watchlist %s: %w", s.path, err)
	}

	var rows []*models.WatchlistEntry
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist %s: %w", s.path, err)
	}

	wl := &models.Watchlist{Entries: make([]models.WatchlistEntry, 0, len(rows))}
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		ticker := models.NormalizeTicker(row.Ticker)
		if ticker == "" || seen[ticker] {
			continue
		}
		seen[ticker] = true
		row.Ticker = ticker
		wl.Entries = append(wl.Entries, *row)
	}

	if dropped := len(rows) - len(wl.Entries); dropped > 0 {
		s.logger.Warn().Str("path", s.path).Int("dropped", dropped).Msg("Watchlist contained blank or duplicate rows")
	}

	return wl, nil
}

func checkWatchlistHeader(data []byte) error {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWatchlistHeader, err)
	}
	if len(header) != len(models.WatchlistHeader) {
		return fmt.Errorf("%w: got %q", ErrWatchlistHeader, header)
	}
	for i, name := range models.WatchlistHeader {
		if header[i] != name {
			return fmt.Errorf("%w: got %q, want %q", ErrWatchlistHeader, header, models.WatchlistHeader)
		}
	}
	return nil
}

// Save replaces the file contents with watchlist, atomically.
func (s *CSVWatchlistStorage) Save(_ context.Context, watchlist *models.Watchlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.WatchlistEntry
	if watchlist != nil {
		entries = watchlist.Entries
	}

	var data []byte
	if len(entries) == 0 {
		data = []byte(strings.Join(models.WatchlistHeader, ",") + "\n")
	} else {
		out, err := gocsv.MarshalBytes(&entries)
		if err != nil {
			return fmt.Errorf("failed to encode watchlist: %w", err)
		}
		data = out
	}

	if err := writeAtomic(s.path, data, s.versions); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}

	s.logger.Debug().Str("path", s.path).Int("entries", len(entries)).Msg("Watchlist saved")
	return nil
}

var _ interfaces.WatchlistStorage = (*CSVWatchlistStorage)(nil)
