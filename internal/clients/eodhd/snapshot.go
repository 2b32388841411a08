package eodhd

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/bobmcallan/valuescout/internal/models"
)

// fundamentals is the subset of the /fundamentals document the screener uses.
type fundamentals struct {
	Name             string
	Sector           string
	FiftyTwoWeekHigh models.OptionalFloat
	TargetPrice      models.OptionalFloat
	PE               models.OptionalFloat
	PB               models.OptionalFloat
	MarketCap        models.OptionalFloat
}

// getFundamentals fetches the fundamentals document and extracts fields by
// path. Sections missing from the document leave the field absent.
func (c *Client) getFundamentals(ctx context.Context, ticker string) (*fundamentals, error) {
	path := fmt.Sprintf("/fundamentals/%s", c.symbol(ticker))

	params := url.Values{}
	params.Set("filter", "General,Highlights,Valuation,Technicals")

	body, err := c.getRaw(ctx, path, params)
	if err != nil {
		return nil, err
	}

	doc := gjson.ParseBytes(body)
	f := &fundamentals{
		Name:             doc.Get("General.Name").String(),
		Sector:           strings.TrimSpace(doc.Get("General.Sector").String()),
		FiftyTwoWeekHigh: optional(doc.Get("Technicals.52WeekHigh")),
		TargetPrice:      optional(doc.Get("Highlights.WallStreetTargetPrice")),
		PE:               optional(doc.Get("Highlights.PERatio")),
		PB:               optional(doc.Get("Valuation.PriceBookMRQ")),
		MarketCap:        optional(doc.Get("Highlights.MarketCapitalization")),
	}
	if !f.TargetPrice.Valid {
		f.TargetPrice = optional(doc.Get("AnalystRatings.TargetPrice"))
	}

	return f, nil
}

// GetNews retrieves up to limit recent headlines for a ticker
func (c *Client) GetNews(ctx context.Context, ticker string, limit int) ([]*models.NewsItem, error) {
	params := url.Values{}
	params.Set("s", c.symbol(ticker))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.getRaw(ctx, "/news", params)
	if err != nil {
		return nil, err
	}

	items := gjson.ParseBytes(body).Array()
	news := make([]*models.NewsItem, 0, len(items))
	for _, item := range items {
		title := strings.TrimSpace(item.Get("title").String())
		if title == "" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, item.Get("date").String())
		news = append(news, &models.NewsItem{
			Title:       title,
			URL:         item.Get("link").String(),
			Source:      item.Get("source").String(),
			PublishedAt: publishedAt,
			Polarity:    optional(item.Get("sentiment.polarity")),
		})
		if limit > 0 && len(news) >= limit {
			break
		}
	}

	return news, nil
}

// GetSnapshot fetches quote, fundamentals and headlines in sequence. Each
// call waits on the client's limiter. A failed part leaves its fields
// absent; an error is returned only when every part failed.
func (c *Client) GetSnapshot(ctx context.Context, ticker string, headlineLimit int) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Ticker:    models.NormalizeTicker(ticker),
		FetchedAt: time.Now(),
	}

	var errs []error
	attempted := 0

	attempted++
	quote, err := c.GetRealTimeQuote(ctx, ticker)
	if err != nil {
		c.logger.Debug().Str("ticker", snap.Ticker).Err(err).Msg("Real-time quote unavailable")
		errs = append(errs, fmt.Errorf("real-time: %w", err))
	} else {
		snap.CurrentPrice = quote.Close
	}

	attempted++
	f, err := c.getFundamentals(ctx, ticker)
	if err != nil {
		c.logger.Debug().Str("ticker", snap.Ticker).Err(err).Msg("Fundamentals unavailable")
		errs = append(errs, fmt.Errorf("fundamentals: %w", err))
	} else {
		snap.Name = f.Name
		snap.Sector = f.Sector
		snap.FiftyTwoWeekHigh = f.FiftyTwoWeekHigh
		snap.AnalystTargetPrice = f.TargetPrice
		snap.PE = f.PE
		snap.PB = f.PB
		snap.MarketCap = f.MarketCap
	}

	if headlineLimit > 0 {
		attempted++
		news, err := c.GetNews(ctx, ticker, headlineLimit)
		if err != nil {
			c.logger.Debug().Str("ticker", snap.Ticker).Err(err).Msg("News unavailable")
			errs = append(errs, fmt.Errorf("news: %w", err))
		} else {
			snap.News = news
		}
	}

	if len(errs) == attempted {
		return nil, fmt.Errorf("snapshot %s: %w", snap.Ticker, errors.Join(errs...))
	}

	return snap, nil
}
