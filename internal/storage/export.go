package storage

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/bobmcallan/valuescout/internal/models"
)

// ExportRow is one line of a scan export, columns in display order.
type ExportRow struct {
	Ticker       string               `csv:"Ticker"`
	Company      string               `csv:"Company"`
	Sector       string               `csv:"Sector"`
	Price        float64              `csv:"Price"`
	PE           models.OptionalFloat `csv:"P/E"`
	PB           models.OptionalFloat `csv:"P/B"`
	MarketCap    models.OptionalFloat `csv:"Market Cap"`
	High52       float64              `csv:"52W High"`
	DiscountPct  float64              `csv:"Discount From High %"`
	Target       float64              `csv:"Analyst Target"`
	UpsidePct    float64              `csv:"Upside %"`
	Sentiment    float64              `csv:"Sentiment"`
	Headlines    int                  `csv:"Headlines"`
	SentimentTag string               `csv:"Sentiment Note"`
}

// ExportRows flattens enriched records into export rows, in order.
func ExportRows(records []*models.EnrichedRecord) []*ExportRow {
	rows := make([]*ExportRow, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		rows = append(rows, &ExportRow{
			Ticker:       r.Ticker,
			Company:      r.Company,
			Sector:       r.Sector,
			Price:        round2(r.CurrentPrice),
			PE:           r.PE,
			PB:           r.PB,
			MarketCap:    r.MarketCap,
			High52:       round2(r.FiftyTwoWeekHigh),
			DiscountPct:  round2(r.DiscountFromHighPct),
			Target:       round2(r.AnalystTargetPrice),
			UpsidePct:    round2(r.UpsidePct),
			Sentiment:    round2(r.SentimentScore),
			Headlines:    r.HeadlineCount,
			SentimentTag: r.SentimentNote,
		})
	}
	return rows
}

// ExportPath returns <dir>/<preset>-<yyyymmdd-hhmmss>.csv for a scan.
func ExportPath(dir string, scan *models.ScanRecord) string {
	name := "custom"
	if scan.Preset != "" {
		name = sanitizeKey(strings.ToLower(scan.Preset))
	}
	created := scan.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%s.csv", name, created.Format("20060102-150405")))
}

// ExportScan writes the scan's results to path as CSV and returns the path.
// An empty path derives one from dir with ExportPath.
func ExportScan(dir, path string, scan *models.ScanRecord) (string, error) {
	if scan == nil {
		return "", fmt.Errorf("no scan to export")
	}
	if path == "" {
		path = ExportPath(dir, scan)
	}

	rows := ExportRows(scan.Results)
	var data []byte
	if len(rows) == 0 {
		header, err := gocsv.MarshalString(&[]*ExportRow{{}})
		if err != nil {
			return "", fmt.Errorf("failed to encode export header: %w", err)
		}
		data = []byte(strings.SplitN(header, "\n", 2)[0] + "\n")
	} else {
		out, err := gocsv.MarshalBytes(&rows)
		if err != nil {
			return "", fmt.Errorf("failed to encode scan export: %w", err)
		}
		data = out
	}

	if err := writeAtomic(path, data, 0); err != nil {
		return "", fmt.Errorf("failed to export scan: %w", err)
	}
	return path, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
