package models

// UnknownSector is reported when neither the screener nor the provider
// supplied a sector.
const UnknownSector = "Unknown"

// Sentiment notes, as shown next to the score.
const (
	SentimentNoteUnknown  = "Unknown/Ignored (Hidden Gem?)"
	SentimentNoteNegative = "Negative (Contrarian Play?)"
	SentimentNotePositive = "Positive (Momentum?)"
	SentimentNoteNeutral  = "Neutral"
)

// EnrichedRecord is a Candidate augmented with provider fields and derived
// ratios. Zero in a numeric field means "not available"; the derived
// percentages are zero whenever their inputs were missing or non-positive.
type EnrichedRecord struct {
	Candidate

	CurrentPrice        float64 `json:"current_price"`
	FiftyTwoWeekHigh    float64 `json:"fifty_two_week_high"`
	AnalystTargetPrice  float64 `json:"analyst_target_price"`
	SentimentScore      float64 `json:"sentiment_score"` // [-1, 1]; 0 also means "no headlines"
	HeadlineCount       int     `json:"headline_count"`  // headlines that contributed to SentimentScore
	SentimentNote       string  `json:"sentiment_note"`
	DiscountFromHighPct float64 `json:"discount_from_high_pct"`
	UpsidePct           float64 `json:"upside_pct"`
	Fetched             bool    `json:"fetched"` // false when the provider call failed outright
}

// SentimentNoteFor interprets an average headline polarity. A zero count is
// reported separately from a neutral score.
func SentimentNoteFor(score float64, count int) string {
	switch {
	case count == 0:
		return SentimentNoteUnknown
	case score < -0.1:
		return SentimentNoteNegative
	case score > 0.3:
		return SentimentNotePositive
	default:
		return SentimentNoteNeutral
	}
}
