package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
)

// settleDelay gives client-side rendering a moment after the load event
const settleDelay = 500 * time.Millisecond

// Config holds the headless browser settings
type Config struct {
	// Bin is the Chromium binary; empty lets rod download or auto-detect one
	Bin string
}

// Renderer renders pages in a shared headless Chromium. The browser is
// launched on first use and reused until Close.
type Renderer struct {
	cfg    Config
	logger *zap.Logger

	mutex     sync.Mutex
	once      sync.Once
	browser   *rod.Browser
	launchErr error
	closed    bool
}

// NewRenderer creates a renderer without starting the browser
func NewRenderer(cfg Config, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{cfg: cfg, logger: logger.Named("browser")}
}

func (r *Renderer) start() (*rod.Browser, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil, fmt.Errorf("%w: renderer closed", domain.ErrScrapeServiceFailure)
	}
	r.once.Do(func() {
		l := launcher.New().
			Headless(true).
			NoSandbox(true).
			Leakless(false)
		if r.cfg.Bin != "" {
			l = l.Bin(r.cfg.Bin)
		}

		controlURL, err := l.Launch()
		if err != nil {
			r.launchErr = fmt.Errorf("%w: failed to launch browser: %v", domain.ErrScrapeServiceFailure, err)
			return
		}

		browser := rod.New().ControlURL(controlURL)
		if err := browser.Connect(); err != nil {
			r.launchErr = fmt.Errorf("%w: failed to connect to browser: %v", domain.ErrScrapeServiceFailure, err)
			return
		}
		r.logger.Info("headless browser started", zap.String("control_url", controlURL))
		r.browser = browser
	})
	return r.browser, r.launchErr
}

// Render opens the page in a new tab, waits for it to load and returns its markup
func (r *Renderer) Render(ctx context.Context, pageURL string) (*domain.RenderedPage, error) {
	browser, err := r.start()
	if err != nil {
		return nil, err
	}

	page, err := browser.Context(ctx).Page(proto.TargetCreateTarget{URL: pageURL})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open page: %v", domain.ErrScrapeServiceFailure, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			r.logger.Debug("failed to close page", zap.Error(err))
		}
	}()

	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: page did not load: %v", domain.ErrScrapeServiceFailure, err)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(settleDelay):
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read page: %v", domain.ErrScrapeServiceFailure, err)
	}

	rendered := &domain.RenderedPage{HTML: html}
	if info, err := page.Info(); err == nil {
		rendered.Metadata.Title = info.Title
	}
	return rendered, nil
}

// Close shuts the browser down if it was started. Later renders fail.
func (r *Renderer) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.closed = true
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	return err
}
