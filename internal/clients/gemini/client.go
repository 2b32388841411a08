// Package gemini scores news headlines with the Google Gemini API
package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/bobmcallan/valuescout/internal/common"
	"github.com/bobmcallan/valuescout/internal/interfaces"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTimeout     = 10 * time.Second
	DefaultMinInterval = 250 * time.Millisecond
)

// polarityPrompt asks for a single number so the reply can be parsed
// without a schema.
const polarityPrompt = `Rate the sentiment of this stock market news headline for the company's shareholders.
Reply with a single number between -1 (very negative) and 1 (very positive), and nothing else.

Headline: %s`

// Client implements interfaces.HeadlineScorer
type Client struct {
	client  *genai.Client
	model   string
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL overrides the API endpoint
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTimeout bounds each scoring request
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMinInterval sets the minimum gap between requests. Zero disables pacing.
func WithMinInterval(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		model:   DefaultModel,
		timeout: DefaultTimeout,
		limiter: rate.NewLimiter(rate.Every(DefaultMinInterval), 1),
		logger:  common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if c.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}
	genaiClient, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = genaiClient
	return c, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// HeadlinePolarity asks the model to score headline in [-1, 1].
func (c *Client) HeadlinePolarity(ctx context.Context, headline string) (float64, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, fmt.Errorf("rate limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	common.ContextLogger(ctx, c.logger).Debug().Str("model", c.model).Msg("Scoring headline")

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(fmt.Sprintf(polarityPrompt, headline)), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(result)
	if err != nil {
		return 0, err
	}
	return parsePolarity(text)
}

// extractTextFromResponse joins the text parts of the first candidate
func extractTextFromResponse(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// parsePolarity reads the first number in reply and requires it to lie in
// [-1, 1].
func parsePolarity(reply string) (float64, error) {
	for _, field := range strings.Fields(reply) {
		field = strings.Trim(field, "`*\"'.,;:")
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		if v < -1 || v > 1 {
			return 0, fmt.Errorf("polarity %v out of range", v)
		}
		return v, nil
	}
	return 0, fmt.Errorf("no polarity in reply %q", reply)
}

var _ interfaces.HeadlineScorer = (*Client)(nil)
