package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9,fr;q=0.8"
	defaultMaxBodyBytes   = 5 << 20
)

// challengeTitlePattern matches the <title> of bot walls and captcha interstitials
var challengeTitlePattern = regexp.MustCompile(`(?is)<title[^>]*>[^<]*(captcha|verify you are human|checking your browser|access denied|attention required|just a moment|robot check)[^<]*</title>`)

// Config holds settings for raw page fetches
type Config struct {
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
	MaxBodyBytes   int64
}

// HTTPFetcher performs plain GETs of product pages with browser-like headers
type HTTPFetcher struct {
	httpClient     *http.Client
	userAgent      string
	acceptLanguage string
	maxBodyBytes   int64
	logger         *zap.Logger
}

// NewHTTPFetcher creates a page fetcher
func NewHTTPFetcher(cfg Config, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	f := &HTTPFetcher{
		httpClient:     &http.Client{Timeout: timeout},
		userAgent:      cfg.UserAgent,
		acceptLanguage: cfg.AcceptLanguage,
		maxBodyBytes:   cfg.MaxBodyBytes,
		logger:         logger.Named("fetch"),
	}
	if f.userAgent == "" {
		f.userAgent = defaultUserAgent
	}
	if f.acceptLanguage == "" {
		f.acceptLanguage = defaultAcceptLanguage
	}
	if f.maxBodyBytes <= 0 {
		f.maxBodyBytes = defaultMaxBodyBytes
	}
	return f
}

// Fetch returns the HTML of a page. Non-200 responses and bot walls wrap
// domain.ErrFetchFailed; bodies beyond the size limit are truncated.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.acceptLanguage)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", domain.ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}

	html := string(body)
	if IsChallengePage(html) {
		return "", fmt.Errorf("%w: bot protection page", domain.ErrFetchFailed)
	}

	f.logger.Debug("page fetched",
		zap.String("url", pageURL),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return html, nil
}

// IsChallengePage reports whether the markup is a captcha or bot-wall interstitial
func IsChallengePage(html string) bool {
	return challengeTitlePattern.MatchString(html)
}
