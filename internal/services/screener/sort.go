package screener

import (
	"sort"
	"strings"

	"github.com/bobmcallan/valuescout/internal/models"
)

// Sort keys accepted by SortRecords.
const (
	SortByPB        = "pb"
	SortByPE        = "pe"
	SortByDiscount  = "discount"
	SortByUpside    = "upside"
	SortBySentiment = "sentiment"
	SortByTicker    = "ticker"
	SortByNone      = "none"
)

// SortKeys lists every accepted sort key, default first.
var SortKeys = []string{SortByPB, SortByPE, SortByDiscount, SortByUpside, SortBySentiment, SortByTicker, SortByNone}

// ValidSortKey reports whether key is accepted by SortRecords. Empty is valid
// and means the default.
func ValidSortKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return true
	}
	for _, k := range SortKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SortRecords orders records in place for display. Ratios sort ascending with
// unknown or non-positive values last; percentages and sentiment sort
// descending. The sort is stable, so equal rows keep screener order. An
// empty key sorts by P/B; "none" and unknown keys leave the order unchanged.
func SortRecords(records []*models.EnrichedRecord, key string) {
	var less func(a, b *models.EnrichedRecord) bool

	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", SortByPB:
		less = func(a, b *models.EnrichedRecord) bool { return ratioLess(a.PB, b.PB) }
	case SortByPE:
		less = func(a, b *models.EnrichedRecord) bool { return ratioLess(a.PE, b.PE) }
	case SortByDiscount:
		less = func(a, b *models.EnrichedRecord) bool { return a.DiscountFromHighPct > b.DiscountFromHighPct }
	case SortByUpside:
		less = func(a, b *models.EnrichedRecord) bool { return a.UpsidePct > b.UpsidePct }
	case SortBySentiment:
		less = func(a, b *models.EnrichedRecord) bool { return a.SentimentScore > b.SentimentScore }
	case SortByTicker:
		less = func(a, b *models.EnrichedRecord) bool { return a.Ticker < b.Ticker }
	default:
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a == nil || b == nil {
			return a != nil
		}
		return less(a, b)
	})
}

// ratioLess orders positive values ascending ahead of missing or
// non-positive ones.
func ratioLess(a, b models.OptionalFloat) bool {
	av, aok := a.Positive()
	bv, bok := b.Positive()
	switch {
	case aok && bok:
		return av < bv
	case aok:
		return true
	default:
		return false
	}
}
