// Package finviz provides a Candidate Source backed by the finviz stock screener
package finviz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
	"github.com/bobmcallan/valuescout/internal/models"
)

const (
	DefaultBaseURL     = "https://finviz.com"
	DefaultTimeout     = 30 * time.Second
	DefaultMinInterval = 500 * time.Millisecond
	DefaultMaxPages    = 10
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	// PageSize is the number of rows the screener returns per page.
	PageSize = 20

	// customView selects the screener's custom view with the columns
	// No., Ticker, Company, Sector, Industry, Country, Market Cap, P/E, P/B, Price.
	customView    = "152"
	customColumns = "0,1,2,3,4,5,6,7,11,65"
)

// Client implements the CandidateSource interface by scraping screener pages
type Client struct {
	baseURL    string
	userAgent  string
	maxPages   int
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMinInterval spaces page requests at least d apart. Zero disables pacing.
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithUserAgent overrides the browser user agent sent with each request
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithMaxPages bounds how many result pages one Screen call may fetch
func WithMaxPages(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

// NewClient creates a new screener client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		maxPages:  DefaultMaxPages,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 screener response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("finviz error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// ScreenURL builds the screener URL for the given filters and 1-based row offset
func (c *Client) ScreenURL(filters models.FilterSet, offset int) (string, error) {
	codes, signal, err := encodeFilters(filters)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("v", customView)
	params.Set("c", customColumns)
	if len(codes) > 0 {
		params.Set("f", strings.Join(codes, ","))
	}
	if signal != "" {
		params.Set("s", signal)
	}
	if offset > 1 {
		params.Set("r", strconv.Itoa(offset))
	}

	return fmt.Sprintf("%s/screener.ashx?%s", c.baseURL, params.Encode()), nil
}

// Screen returns every ticker matching filters, in screener order, following
// result pages until a short or repeated page or the page limit.
func (c *Client) Screen(ctx context.Context, filters models.FilterSet) ([]*models.Candidate, error) {
	if _, _, err := encodeFilters(filters); err != nil {
		return nil, err
	}

	var candidates []*models.Candidate
	seen := make(map[string]bool)

	for page := 0; page < c.maxPages; page++ {
		offset := page*PageSize + 1
		pageURL, err := c.ScreenURL(filters, offset)
		if err != nil {
			return nil, err
		}

		rows, err := c.fetchPage(ctx, pageURL)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			common.ContextLogger(ctx, c.logger).Warn().Int("page", page+1).Err(err).Msg("Screener page failed, returning partial results")
			break
		}

		added := 0
		for _, row := range rows {
			if seen[row.Ticker] {
				continue
			}
			seen[row.Ticker] = true
			candidates = append(candidates, row)
			added++
		}

		if len(rows) < PageSize || added == 0 {
			break
		}
	}

	common.ContextLogger(ctx, c.logger).Debug().Int("candidates", len(candidates)).Str("filters", filters.Key()).Msg("Screener returned candidates")

	return candidates, nil
}

// fetchPage performs one paced request and parses its result table
func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]*models.Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html")

	common.ContextLogger(ctx, c.logger).Debug().Str("url", pageURL).Msg("Screener request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   "/screener.ashx",
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse screener HTML: %w", err)
	}

	return parseScreenerTable(doc), nil
}

// Ensure Client implements CandidateSource
var _ interfaces.CandidateSource = (*Client)(nil)
