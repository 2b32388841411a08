package main

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/models"
)

// Delegate to common format helpers
func formatMoney(v float64) string     { return common.FormatMoney(v) }
func formatSignedPct(v float64) string { return common.FormatSignedPct(v) }

// formatPrice renders a price, or "-" when it is unknown.
func formatPrice(v float64) string {
	if v <= 0 {
		return "-"
	}
	return formatMoney(v)
}

// formatPct renders a derived percentage, or "-" when it was not computable.
func formatPct(v float64) string {
	if v == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", v)
}

func formatOptionalRatio(o models.OptionalFloat) string {
	v, ok := o.Positive()
	return common.FormatRatio(v, ok)
}

// formatScan renders a scan as a markdown table in its recorded order.
func formatScan(rec *models.ScanRecord) string {
	var sb strings.Builder

	title := rec.Preset
	if title == "" {
		title = "custom"
	}
	sb.WriteString(fmt.Sprintf("# Scan: %s\n\n", title))
	sb.WriteString(fmt.Sprintf("**ID:** %s\n", rec.ID))
	sb.WriteString(fmt.Sprintf("**Date:** %s\n", rec.CreatedAt.Format("2006-01-02 15:04")))
	sb.WriteString(fmt.Sprintf("**Filters:** %s\n", formatFilters(rec.Filters)))
	sb.WriteString(fmt.Sprintf("**Screened:** %d, **Enriched:** %d (cap %d)\n", rec.Screened, len(rec.Results), rec.Cap))
	if rec.SortBy != "" {
		sb.WriteString(fmt.Sprintf("**Sorted by:** %s\n", rec.SortBy))
	}
	if rec.Cached {
		sb.WriteString("**Source:** recorded scan (not refetched)\n")
	}
	sb.WriteString("\n")

	if len(rec.Results) == 0 {
		sb.WriteString("No results.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | Company | Sector | Price | P/E | P/B | Mkt Cap | 52W High | Off High | Target | Upside | Sentiment | Note |\n")
	sb.WriteString("|--------|---------|--------|-------|-----|-----|---------|----------|----------|--------|--------|-----------|------|\n")
	for _, r := range rec.Results {
		if r == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %s | %.2f (%d) | %s |\n",
			r.Ticker,
			cell(r.Company),
			cell(r.Sector),
			formatPrice(r.CurrentPrice),
			formatOptionalRatio(r.PE),
			formatOptionalRatio(r.PB),
			common.FormatMarketCap(r.MarketCap.Or(0)),
			formatPrice(r.FiftyTwoWeekHigh),
			formatPct(r.DiscountFromHighPct),
			formatPrice(r.AnalystTargetPrice),
			formatPct(r.UpsidePct),
			r.SentimentScore, r.HeadlineCount,
			r.SentimentNote,
		))
	}
	return sb.String()
}

// formatHistory lists recorded scans, newest first.
func formatHistory(records []*models.ScanRecord) string {
	if len(records) == 0 {
		return "No recorded scans.\n"
	}

	var sb strings.Builder
	sb.WriteString("# Scan History\n\n")
	sb.WriteString("| ID | Date | Preset | Filters | Results |\n")
	sb.WriteString("|----|------|--------|---------|---------|\n")
	for _, r := range records {
		preset := r.Preset
		if preset == "" {
			preset = "custom"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %d |\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04"), preset, formatFilters(r.Filters), r.ResultCount))
	}
	return sb.String()
}

// formatWatchlist renders the saved table as stored.
func formatWatchlist(wl *models.Watchlist, location string) string {
	var sb strings.Builder
	sb.WriteString("# Watchlist\n\n")
	sb.WriteString(fmt.Sprintf("**File:** %s\n\n", location))

	if len(wl.Entries) == 0 {
		sb.WriteString("Watchlist is empty.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | Date Added | Price Added |\n")
	sb.WriteString("|--------|------------|-------------|\n")
	for _, e := range wl.Entries {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", e.Ticker, e.DateAdded, formatMoney(float64(e.PriceAdded))))
	}
	return sb.String()
}

// formatPortfolio renders the watchlist with live prices and returns.
func formatPortfolio(rows []*models.PortfolioRow) string {
	var sb strings.Builder
	sb.WriteString("# Portfolio\n\n")

	if len(rows) == 0 {
		sb.WriteString("Watchlist is empty.\n")
		return sb.String()
	}

	sb.WriteString("| Ticker | Date Added | Price Added | Current | Return |\n")
	sb.WriteString("|--------|------------|-------------|---------|--------|\n")
	stale := 0
	for _, r := range rows {
		current := formatMoney(r.CurrentPrice)
		if !r.Live {
			current += " *"
			stale++
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			r.Ticker, r.DateAdded, formatMoney(float64(r.PriceAdded)), current, formatSignedPct(r.ReturnPct)))
	}
	if stale > 0 {
		sb.WriteString("\n\\* live price unavailable; showing the price added\n")
	}
	return sb.String()
}

// formatComparison renders the factor table and the verdict.
func formatComparison(cmp *models.Comparison) string {
	var sb strings.Builder
	a, b := cmp.A.Ticker, cmp.B.Ticker
	sb.WriteString(fmt.Sprintf("# %s vs %s\n\n", a, b))
	sb.WriteString(fmt.Sprintf("| Factor | %s | %s | Winner |\n", a, b))
	sb.WriteString("|--------|---|---|--------|\n")
	for _, f := range cmp.Factors {
		winner := f.Winner
		if winner == "" {
			winner = "-"
		}
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f | %s |\n", f.Factor, f.A, f.B, winner))
	}
	sb.WriteString(fmt.Sprintf("\n**Score:** %s %d - %d %s\n", a, cmp.ScoreA, cmp.ScoreB, b))
	sb.WriteString(fmt.Sprintf("**Winner:** %s\n", cmp.Winner))
	return sb.String()
}

// formatPresets lists the strategy presets and their filters.
func formatPresets(presets []models.Preset) string {
	var sb strings.Builder
	sb.WriteString("# Presets\n\n")
	for _, p := range presets {
		sb.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", p.Name, p.Description))
		for _, k := range p.Filters.Keys() {
			sb.WriteString(fmt.Sprintf("- %s = %s\n", k, p.Filters[k]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatFilters(f models.FilterSet) string {
	if len(f) == 0 {
		return "-"
	}
	return strings.ReplaceAll(f.Key(), ";", ", ")
}

// cell escapes pipes so free text cannot break the table.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
