package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/valuescout/internal/models"
)

func TestExportPath(t *testing.T) {
	created := time.Date(2024, 6, 1, 16, 30, 5, 0, time.UTC)

	got := ExportPath("out", &models.ScanRecord{Preset: "Hidden-Value", CreatedAt: created})
	assert.Equal(t, filepath.Join("out", "hidden-value-20240601-163005.csv"), got)

	got = ExportPath("out", &models.ScanRecord{CreatedAt: created})
	assert.Equal(t, filepath.Join("out", "custom-20240601-163005.csv"), got)
}

func TestExportScan(t *testing.T) {
	dir := t.TempDir()
	scan := &models.ScanRecord{
		Preset:    "hidden-value",
		CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Results: []*models.EnrichedRecord{
			{
				Candidate:           models.Candidate{Ticker: "AAA", Company: "Alpha Inc", Sector: "Technology", PB: models.Float(0.8)},
				CurrentPrice:        12.345,
				DiscountFromHighPct: 40,
				SentimentNote:       models.SentimentNoteUnknown,
			},
			nil,
			{Candidate: models.Candidate{Ticker: "BBB", Sector: models.UnknownSector}},
		},
	}

	path, err := ExportScan(dir, "", scan)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hidden-value-20240601-000000.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3, "header plus two rows; nil records skipped")

	assert.True(t, strings.HasPrefix(lines[0], "Ticker,Company,Sector,Price,P/E,P/B,Market Cap,"))
	assert.Contains(t, lines[1], "AAA,Alpha Inc,Technology,12.35,,0.8,")
	assert.Contains(t, lines[1], models.SentimentNoteUnknown)
	assert.True(t, strings.HasPrefix(lines[2], "BBB,,Unknown,"))
}

func TestExportScan_EmptyWritesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	got, err := ExportScan("", path, &models.ScanRecord{})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Ticker,Company,"))
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestExportScan_NilScan(t *testing.T) {
	_, err := ExportScan(t.TempDir(), "", nil)
	assert.Error(t, err)
}
