package screener

import (
	"sort"
	"strings"

	"github.com/bobmcallan/valuescout/internal/models"
)

// DefaultPreset is the strategy used when no preset is named.
const DefaultPreset = "hidden-value"

var presets = map[string]models.Preset{
	"hidden-value": {
		Name:        "hidden-value",
		Description: "Small caps trading below book with low earnings multiples, little debt and positive margins",
		Filters: models.FilterSet{
			"Market Cap.":       "Small ($300mln to $2bln)",
			"P/B":               "Under 1",
			"P/E":               "Under 15",
			"Debt/Equity":       "Under 0.5",
			"Net Profit Margin": "Positive (>0%)",
		},
	},
	"deep-value": {
		Name:        "deep-value",
		Description: "Liquid balance sheets priced well under book and at single-digit earnings",
		Filters: models.FilterSet{
			"Market Cap.":   "+Small (over $300mln)",
			"P/B":           "Under 1",
			"P/E":           "Under 10",
			"Current Ratio": "Over 1.5",
			"Debt/Equity":   "Under 0.5",
		},
	},
	"growth-at-reasonable-price": {
		Name:        "growth-at-reasonable-price",
		Description: "Mid caps and up with PEG under 1 and double-digit expected EPS growth",
		Filters: models.FilterSet{
			"Market Cap.":          "+Mid (over $2bln)",
			"PEG":                  "Under 1",
			"EPS growth next year": "Over 15%",
			"Return on Equity":     "Over 15%",
		},
	},
	"oversold-smallcaps": {
		Name:        "oversold-smallcaps",
		Description: "Profitable, traded small caps with RSI in oversold territory",
		Filters: models.FilterSet{
			"Market Cap.":    "Small ($300mln to $2bln)",
			"P/E":            "Profitable (>0)",
			"RSI (14)":       "Oversold (30)",
			"Average Volume": "Over 200K",
		},
	},
}

// LookupPreset returns the named preset, matched case-insensitively.
func LookupPreset(name string) (models.Preset, bool) {
	p, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.Preset{}, false
	}
	// Copy so callers can't mutate the table.
	p.Filters = p.Filters.Merge(nil)
	return p, true
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllPresets returns every preset, sorted by name.
func AllPresets() []models.Preset {
	out := make([]models.Preset, 0, len(presets))
	for _, name := range PresetNames() {
		p, _ := LookupPreset(name)
		out = append(out, p)
	}
	return out
}
