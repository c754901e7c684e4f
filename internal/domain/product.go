package domain

import "github.com/shopspring/decimal"

// Field caps applied when an extraction result is normalized.
const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 50000
	MaxImages            = 50
	MaxVideos            = 10
	MaxVariants          = 100
	MaxReviews           = 100
)

// ExtractedProduct is the normalized result of extracting a product page
type ExtractedProduct struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	Images      []string        `json:"images"`
	Videos      []string        `json:"videos"`
	Variants    []Variant       `json:"variants"`
	Reviews     []Review        `json:"reviews"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
	SourceURL   string          `json:"sourceUrl"`
	Platform    PlatformID      `json:"platform"`
	ExternalID  string          `json:"externalId,omitempty"`
}

// Variant is one purchasable option of a product
type Variant struct {
	Label     string          `json:"label"`
	Price     decimal.Decimal `json:"price"`
	SKU       string          `json:"sku,omitempty"`
	Available bool            `json:"available"`
}

// Review is a single customer review; Rating is always within 1..5
type Review struct {
	Author  string `json:"author"`
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// ImportResult is returned by a successful or rejected import
type ImportResult struct {
	ID         string            `json:"id,omitempty"`
	Product    *ExtractedProduct `json:"product"`
	Validation ValidationResult  `json:"validation"`
}
