package models

import "time"

// ScanRecord stores one screener run for history and re-display.
type ScanRecord struct {
	ID          string            `json:"id" badgerhold:"key"`
	Preset      string            `json:"preset,omitempty"`
	Filters     FilterSet         `json:"filters"`
	FilterKey   string            `json:"filter_key" badgerhold:"index"` // FilterSet.Key(), indexed for lookups
	Cap         int               `json:"cap"`
	SortBy      string            `json:"sort_by,omitempty"`
	Screened    int               `json:"screened"` // candidates returned by the screener before the cap
	ResultCount int               `json:"result_count"`
	Results     []*EnrichedRecord `json:"results"`
	CreatedAt   time.Time         `json:"created_at"`
	Cached      bool              `json:"cached,omitempty"` // served from history instead of a fresh run
}
