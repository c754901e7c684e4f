package usecase

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/supplylens/backend/internal/domain"
)

// Score weights. The base is only awarded without critical errors; the field
// weights add up to 60 so a complete product scores 100.
const (
	scoreBase        = 40
	scoreDescription = 15
	scoreImages      = 10
	scoreBrand       = 5
	scoreCategory    = 5
	scoreVideos      = 5
	scoreVariants    = 10
	scoreReviews     = 5
	scoreStock       = 5

	minTitleLength       = 3
	minDescriptionLength = 10
)

// CompletenessValidator decides whether a product can be imported and scores how complete it is
type CompletenessValidator struct{}

// NewCompletenessValidator creates a new completeness validator
func NewCompletenessValidator() *CompletenessValidator {
	return &CompletenessValidator{}
}

// Validate classifies the product's fields into critical, important and optional
// tiers. Only critical failures block the import.
func (v *CompletenessValidator) Validate(p *domain.ExtractedProduct) domain.ValidationResult {
	result := domain.ValidationResult{
		Errors:        []string{},
		Warnings:      []string{},
		MissingFields: []domain.FieldName{},
	}
	if p == nil {
		p = &domain.ExtractedProduct{}
	}

	missing := func(f domain.FieldName) {
		result.MissingFields = append(result.MissingFields, f)
	}

	// Critical
	if utf8.RuneCountInString(strings.TrimSpace(p.Title)) < minTitleLength {
		result.Errors = append(result.Errors, "title is missing or shorter than 3 characters")
		missing(domain.FieldTitle)
	}
	if !p.Price.IsPositive() {
		result.Errors = append(result.Errors, "price is missing or not greater than 0")
		missing(domain.FieldPrice)
	}
	if !isAbsoluteHTTPURL(p.SourceURL) {
		result.Errors = append(result.Errors, "source URL is not an absolute http(s) URL")
		missing(domain.FieldSourceURL)
	}

	score := 0
	if len(result.Errors) == 0 {
		score = scoreBase
	}

	// Important
	if utf8.RuneCountInString(strings.TrimSpace(p.Description)) >= minDescriptionLength {
		score += scoreDescription
	} else {
		result.Warnings = append(result.Warnings, "description is missing or shorter than 10 characters")
		missing(domain.FieldDescription)
	}
	if len(p.Images) > 0 {
		score += scoreImages
	} else {
		result.Warnings = append(result.Warnings, "no product images found")
		missing(domain.FieldImages)
	}
	if strings.TrimSpace(p.Brand) != "" {
		score += scoreBrand
	} else {
		result.Warnings = append(result.Warnings, "brand is missing")
		missing(domain.FieldBrand)
	}
	if strings.TrimSpace(p.Category) != "" {
		score += scoreCategory
	} else {
		result.Warnings = append(result.Warnings, "category is missing")
		missing(domain.FieldCategory)
	}

	// Optional
	if len(p.Videos) > 0 {
		score += scoreVideos
	} else {
		missing(domain.FieldVideos)
	}
	if len(p.Variants) > 0 {
		score += scoreVariants
	} else {
		missing(domain.FieldVariants)
	}
	if len(p.Reviews) > 0 {
		score += scoreReviews
	} else {
		missing(domain.FieldReviews)
	}
	if p.Stock != nil {
		score += scoreStock
	} else {
		missing(domain.FieldStock)
	}

	result.Score = clampInt(score, 0, 100)
	result.CanImport = len(result.Errors) == 0
	return result
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
