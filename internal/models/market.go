package models

import (
	"time"
)

// RealTimeQuote holds a live price snapshot from the market-data provider
type RealTimeQuote struct {
	Code          string        `json:"code"`
	Close         OptionalFloat `json:"close"` // current/last price
	PreviousClose OptionalFloat `json:"previous_close"`
	ChangePct     OptionalFloat `json:"change_p"`
	Timestamp     time.Time     `json:"timestamp"`
}

// Snapshot is everything the market-data provider could tell us about one
// ticker. Every numeric field is optional; News may be empty.
type Snapshot struct {
	Ticker             string        `json:"ticker"`
	Name               string        `json:"name,omitempty"`
	CurrentPrice       OptionalFloat `json:"current_price"`
	FiftyTwoWeekHigh   OptionalFloat `json:"fifty_two_week_high"`
	AnalystTargetPrice OptionalFloat `json:"analyst_target_price"`
	PE                 OptionalFloat `json:"pe_ratio"`
	PB                 OptionalFloat `json:"pb_ratio"`
	MarketCap          OptionalFloat `json:"market_cap"`
	Sector             string        `json:"sector,omitempty"`
	News               []*NewsItem   `json:"news,omitempty"`
	FetchedAt          time.Time     `json:"fetched_at"`
}

// NewsItem represents a news article
type NewsItem struct {
	Title       string        `json:"title"`
	URL         string        `json:"url,omitempty"`
	Source      string        `json:"source,omitempty"`
	PublishedAt time.Time     `json:"published_at"`
	Polarity    OptionalFloat `json:"polarity"` // provider-scored polarity in [-1, 1], when supplied
}

// EODBar represents a single day's price data
type EODBar struct {
	Date     time.Time `json:"date"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	AdjClose float64   `json:"adjusted_close"`
	Volume   int64     `json:"volume"`
}

// EODResponse holds end-of-day bars, most recent first
type EODResponse struct {
	Ticker string   `json:"ticker"`
	Data   []EODBar `json:"data"`
}
