package models

import (
	"sort"
	"strings"
)

// FilterSet maps a screener criterion name to one option label,
// e.g. "P/E" -> "Under 15", "Market Cap." -> "Small ($300mln to $2bln)".
type FilterSet map[string]string

// Merge returns a new set with over's entries replacing f's, key by key.
// An override value of "Any" removes the criterion.
func (f FilterSet) Merge(over FilterSet) FilterSet {
	out := make(FilterSet, len(f)+len(over))
	for k, v := range f {
		out[k] = v
	}
	for k, v := range over {
		if strings.EqualFold(strings.TrimSpace(v), "any") {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// Keys returns the criterion names in sorted order.
func (f FilterSet) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Key returns a canonical "name=value;name=value" string used to look up
// previous scans run with the same parameters.
func (f FilterSet) Key() string {
	parts := make([]string, 0, len(f))
	for _, k := range f.Keys() {
		parts = append(parts, k+"="+f[k])
	}
	return strings.Join(parts, ";")
}

// Candidate is a ticker returned by the screener before enrichment.
// Price, P/E and P/B may be absent depending on the screener view.
type Candidate struct {
	Ticker    string        `json:"ticker"`
	Company   string        `json:"company,omitempty"`
	Sector    string        `json:"sector,omitempty"`
	Industry  string        `json:"industry,omitempty"`
	Country   string        `json:"country,omitempty"`
	Price     OptionalFloat `json:"price"`
	PE        OptionalFloat `json:"pe_ratio"`
	PB        OptionalFloat `json:"pb_ratio"`
	MarketCap OptionalFloat `json:"market_cap"`
}

// Preset is a named set of screener filters.
type Preset struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Filters     FilterSet `json:"filters"`
}
