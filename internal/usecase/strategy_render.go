package usecase

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/supplylens/backend/internal/domain"
)

// priceTextPattern finds the first currency-tagged amount in rendered text or markup
var priceTextPattern = regexp.MustCompile(`(?i)(?:US\$|R\$|[$€£¥₹]|\b(?:USD|EUR|GBP|CAD|AUD)\b)\s?\d(?:[\d.,\x{00A0}\x{202F}]*\d)?|\d(?:[\d.,\x{00A0}\x{202F}]*\d)?\s?(?:[€£$¥₹]|zł|\b(?:USD|EUR|GBP)\b)`)

// RenderStrategy asks a rendering backend (scrape service or headless browser)
// for the page and reads metadata, price and images from the result.
type RenderStrategy struct {
	renderer domain.Renderer
}

// NewRenderStrategy creates the rich-render strategy; a nil renderer disables it
func NewRenderStrategy(renderer domain.Renderer) *RenderStrategy {
	return &RenderStrategy{renderer: renderer}
}

func (s *RenderStrategy) Name() string { return "render" }

func (s *RenderStrategy) Extract(ctx context.Context, pageURL string, _ *PageSource) (*domain.ExtractedProduct, error) {
	if s.renderer == nil {
		return nil, domain.ErrStrategySkipped
	}

	page, err := s.renderer.Render(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, domain.ErrNoProductData
	}

	var doc *goquery.Document
	if page.HTML != "" {
		if doc, err = parseHTML(page.HTML); err != nil {
			return nil, err
		}
	}

	meta := page.Metadata
	if doc != nil {
		fillMetadataFromDocument(&meta, doc)
	}

	title := strings.TrimSpace(meta.OGTitle)
	if title == "" {
		title = stripTitleSuffix(meta.Title, meta.SiteName)
	}
	if title == "" {
		return nil, domain.ErrNoProductData
	}

	product := &domain.ExtractedProduct{
		Title:       title,
		Description: strings.TrimSpace(meta.Description),
	}

	priceText := priceTextPattern.FindString(page.Markdown)
	if priceText == "" && doc != nil {
		priceText = priceTextPattern.FindString(doc.Text())
	}
	if priceText == "" {
		priceText = priceTextPattern.FindString(page.HTML)
	}
	if priceText != "" {
		product.Price = ParsePrice(priceText)
		product.Currency = DetectCurrency(priceText)
	}

	raws := []string{meta.OGImage}
	if doc != nil {
		raws = append(raws, imageSources(doc)...)
	}
	product.Images = collectImages(maxStrategyImages, raws...)

	return product, nil
}

// fillMetadataFromDocument completes renderer metadata from the page's own meta tags
func fillMetadataFromDocument(meta *domain.PageMetadata, doc *goquery.Document) {
	if meta.OGTitle == "" {
		meta.OGTitle = metaContent(doc, "og:title")
	}
	if meta.Title == "" {
		meta.Title = pageTitle(doc)
	}
	if meta.Description == "" {
		meta.Description = metaContent(doc, "og:description", "description")
	}
	if meta.OGImage == "" {
		meta.OGImage = metaContent(doc, "og:image", "og:image:url", "twitter:image")
	}
	if meta.SiteName == "" {
		meta.SiteName = metaContent(doc, "og:site_name")
	}
}
