package models

// TieLabel is the Comparison winner when both tickers score the same.
const TieLabel = "Tie"

// FactorResult records which side won one comparison factor.
type FactorResult struct {
	Factor string  `json:"factor"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Winner string  `json:"winner"` // ticker, or "" when neither side scored
}

// Comparison is a head-to-head between two enriched tickers.
type Comparison struct {
	A       *EnrichedRecord `json:"a"`
	B       *EnrichedRecord `json:"b"`
	ScoreA  int             `json:"score_a"`
	ScoreB  int             `json:"score_b"`
	Factors []FactorResult  `json:"factors"`
	Winner  string          `json:"winner"` // ticker or TieLabel
}
