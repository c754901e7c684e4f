package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplierSearchInput carries the product attributes used to look for suppliers
type SupplierSearchInput struct {
	Title          string          `json:"title" binding:"required"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency,omitempty"`
	Category       string          `json:"category,omitempty"`
	Brand          string          `json:"brand,omitempty"`
	Images         []string        `json:"images,omitempty"`
	SourcePlatform PlatformID      `json:"sourcePlatform,omitempty"`
}

// SearchOptions tunes a single supplier search
type SearchOptions struct {
	BypassCache bool `json:"bypassCache"`
	// AllowRestrictedPlatform opts into platforms that assume the buyer reads Chinese (1688)
	AllowRestrictedPlatform bool `json:"allowRestrictedPlatform"`
}

// PriceRange is an inclusive min/max price pair
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Margin is the profit potential of buying from a supplier and selling at the source price
type Margin struct {
	Profit        decimal.Decimal `json:"profit"`
	MarginPercent int             `json:"marginPercent"`
	ROI           int             `json:"roi"`
}

// RecommendationKind categorizes an advisory note on a candidate
type RecommendationKind string

const (
	RecommendationMOQ           RecommendationKind = "moq"
	RecommendationShipping      RecommendationKind = "shipping"
	RecommendationReliability   RecommendationKind = "reliability"
	RecommendationCertification RecommendationKind = "certification"
)

// Recommendation is an advisory note attached to a supplier candidate
type Recommendation struct {
	Kind    RecommendationKind `json:"kind"`
	Message string             `json:"message"`
}

// SupplierCandidate is a synthesized and scored alternative source for a product
type SupplierCandidate struct {
	ID                  string           `json:"id"`
	Platform            PlatformID       `json:"platform"`
	Query               string           `json:"query"`
	SearchURL           string           `json:"searchUrl"`
	EstimatedPrice      decimal.Decimal  `json:"estimatedPrice"`
	EstimatedPriceRange PriceRange       `json:"estimatedPriceRange"`
	Currency            string           `json:"currency"`
	Shipping            DayRange         `json:"shipping"`
	MOQ                 int              `json:"moq"`
	Reliability         float64          `json:"reliability"`
	Confidence          int              `json:"confidence"`
	PotentialMargin     *Margin          `json:"potentialMargin"`
	Recommendations     []Recommendation `json:"recommendations"`
	OverallScore        int              `json:"overallScore"`
}

// SearchQuery is one candidate search string; lower Priority is preferred
type SearchQuery struct {
	Text     string `json:"text"`
	Priority int    `json:"priority"`
}

// CachedResult wraps a cached value with the time it was computed
type CachedResult[T any] struct {
	Value     T         `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}
