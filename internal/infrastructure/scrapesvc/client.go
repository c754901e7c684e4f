package scrapesvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	scrapePath       = "/v1/scrape"
	maxResponseBytes = 10 << 20
	defaultWaitForMS = 3000
)

// Config holds the scrape service connection settings
type Config struct {
	APIKey        string
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	WaitFor       time.Duration
}

// Client renders product pages through a hosted scrape service
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	waitFor     time.Duration
	rateLimiter *rate.Limiter
	logger      *zap.Logger
}

// scrapeRequest is the body of a scrape call
type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
	WaitFor         int64    `json:"waitFor"`
}

// NewClient creates a new scrape service client. It returns nil when no API
// key is configured; callers must not store that nil in a domain.Renderer.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	waitFor := cfg.WaitFor
	if waitFor <= 0 {
		waitFor = defaultWaitForMS * time.Millisecond
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		waitFor:     waitFor,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:      logger.Named("scrapesvc"),
	}
}

// Render asks the scrape service for the rendered HTML, markdown and metadata of a page
func (c *Client) Render(ctx context.Context, pageURL string) (*domain.RenderedPage, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:             pageURL,
		Formats:         []string{"html", "markdown"},
		OnlyMainContent: false,
		WaitFor:         c.waitFor.Milliseconds(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode scrape request: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	// One call per attempt. A failure falls through to the next strategy.
	page, err := c.scrape(ctx, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("scrape call failed", zap.String("url", pageURL), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("page rendered", zap.String("url", pageURL))
	return page, nil
}

// scrape performs a single call to the service
func (c *Client) scrape(ctx context.Context, body []byte) (*domain.RenderedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scrapePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrScrapeServiceFailure, err)
	}
	defer resp.Body.Close()

	raw, err := readLimitedBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrScrapeServiceFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrScrapeServiceFailure, resp.StatusCode)
	}

	page, err := MapScrapeResponse(raw)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func readLimitedBody(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseBytes+1))
	if err != nil {
		return nil, err
	}
	if len(raw) > maxResponseBytes {
		return nil, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}
	return raw, nil
}
