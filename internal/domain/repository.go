package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// PageMetadata is the page-level metadata a renderer could read
type PageMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	OGTitle     string `json:"ogTitle"`
	OGImage     string `json:"ogImage"`
	SiteName    string `json:"siteName"`
}

// RenderedPage is the output of a rendering backend
type RenderedPage struct {
	HTML     string
	Markdown string
	Metadata PageMetadata
}

// Renderer renders a page with JavaScript executed (scrape service or headless browser)
type Renderer interface {
	Render(ctx context.Context, pageURL string) (*RenderedPage, error)
}

// PageFetcher performs a plain HTTP GET of a product page
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// ProductRepository stores imported products
type ProductRepository interface {
	Save(ctx context.Context, product *ExtractedProduct) (string, error)
	GetByID(ctx context.Context, id string) (*ExtractedProduct, error)
}
