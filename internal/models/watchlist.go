package models

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used in the watchlist file.
const DateLayout = "2006-01-02"

// fallbackDateLayouts are accepted when reading files written by other tools.
var fallbackDateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2006/01/02",
}

// CalendarDate is a date without a time component. Unparseable input reads
// as the zero date and is written back as an empty cell.
type CalendarDate struct {
	time.Time
}

// NewCalendarDate truncates t to its calendar day.
func NewCalendarDate(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (d CalendarDate) MarshalCSV() (string, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(DateLayout), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *CalendarDate) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = NewCalendarDate(t)
			return nil
		}
	}
	d.Time = time.Time{}
	return nil
}

// String returns the date in DateLayout, or "-" when unset.
func (d CalendarDate) String() string {
	if d.IsZero() {
		return "-"
	}
	return d.Format(DateLayout)
}

// StoredPrice is the watchlist's "Price Added" cell. An unparseable stored
// value reads as 0.0.
type StoredPrice float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (p StoredPrice) MarshalCSV() (string, error) {
	return fmt.Sprintf("%.2f", float64(p)), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (p *StoredPrice) UnmarshalCSV(s string) error {
	*p = StoredPrice(ParseFloat(s).Or(0))
	return nil
}

// WatchlistEntry is one row of the persisted watchlist. The csv tags are the
// file's column schema and must not change.
type WatchlistEntry struct {
	Ticker     string       `csv:"Ticker" json:"ticker"`
	DateAdded  CalendarDate `csv:"Date Added" json:"date_added"`
	PriceAdded StoredPrice  `csv:"Price Added" json:"price_added"`
}

// WatchlistHeader is the exact header row of the watchlist file.
var WatchlistHeader = []string{"Ticker", "Date Added", "Price Added"}

// Watchlist is the user's saved-stock table, keyed by ticker.
type Watchlist struct {
	Entries []WatchlistEntry `json:"entries"`
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// FindByTicker returns the entry and index for a given ticker, or -1 if not found
func (w *Watchlist) FindByTicker(ticker string) (*WatchlistEntry, int) {
	for i, e := range w.Entries {
		if strings.EqualFold(e.Ticker, ticker) {
			return &w.Entries[i], i
		}
	}
	return nil, -1
}

// Tickers returns the tickers in file order.
func (w *Watchlist) Tickers() []string {
	out := make([]string, len(w.Entries))
	for i, e := range w.Entries {
		out[i] = e.Ticker
	}
	return out
}

// PortfolioRow is a watchlist entry with its live price and performance.
type PortfolioRow struct {
	WatchlistEntry
	CurrentPrice float64 `json:"current_price"`
	ReturnPct    float64 `json:"return_pct"`
	Live         bool    `json:"live"` // false when the live price could not be fetched
}
