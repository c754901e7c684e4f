package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/supplylens/backend/internal/domain"
)

// MetaTagStrategy falls back to social-preview meta tags on the fetched page
type MetaTagStrategy struct{}

// NewMetaTagStrategy creates the meta-tag fallback strategy
func NewMetaTagStrategy() *MetaTagStrategy {
	return &MetaTagStrategy{}
}

func (s *MetaTagStrategy) Name() string { return "meta_tags" }

func (s *MetaTagStrategy) Extract(ctx context.Context, _ string, page *PageSource) (*domain.ExtractedProduct, error) {
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, err
	}

	title := metaContent(doc, "og:title", "twitter:title")
	if title == "" {
		title = stripTitleSuffix(pageTitle(doc), metaContent(doc, "og:site_name"))
	}
	if title == "" {
		return nil, fmt.Errorf("%w: no title meta tags", domain.ErrNoProductData)
	}

	product := &domain.ExtractedProduct{
		Title:       title,
		Description: metaContent(doc, "og:description", "twitter:description", "description"),
		Brand:       metaContent(doc, "product:brand", "og:brand"),
	}

	images := metaContents(doc, "og:image")
	images = append(images, metaContents(doc, "og:image:secure_url")...)
	images = append(images, metaContent(doc, "twitter:image"))
	product.Images = collectImages(maxStrategyImages, images...)

	if amount := metaContent(doc, "product:price:amount", "og:price:amount", "price"); amount != "" {
		product.Price = ParsePrice(amount)
	}
	product.Currency = strings.ToUpper(metaContent(doc, "product:price:currency", "og:price:currency", "priceCurrency"))

	return product, nil
}
