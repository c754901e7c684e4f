package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/supplylens/backend/internal/domain"
)

// maxStrategyImages caps the image list a single strategy may return
const maxStrategyImages = 20

// Strategy is one way of turning a product URL into structured data.
// Strategies return domain.ErrStrategySkipped when they are not configured and
// domain.ErrNoProductData when the page held nothing usable.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, pageURL string, page *PageSource) (*domain.ExtractedProduct, error)
}

// PageSource fetches a product page at most once per extraction so that the
// structured-data and meta-tag strategies share the same markup.
type PageSource struct {
	fetcher domain.PageFetcher
	pageURL string

	fetched bool
	doc     *goquery.Document
	err     error
}

// NewPageSource creates a lazily fetched page
func NewPageSource(fetcher domain.PageFetcher, pageURL string) *PageSource {
	return &PageSource{fetcher: fetcher, pageURL: pageURL}
}

// Document returns the parsed page, fetching it on first use
func (p *PageSource) Document(ctx context.Context) (*goquery.Document, error) {
	if p.fetched {
		return p.doc, p.err
	}
	p.fetched = true

	if p.fetcher == nil {
		p.err = fmt.Errorf("%w: no page fetcher configured", domain.ErrStrategySkipped)
		return nil, p.err
	}

	html, err := p.fetcher.Fetch(ctx, p.pageURL)
	if err != nil {
		p.err = err
		return nil, err
	}

	p.doc, p.err = parseHTML(html)
	return p.doc, p.err
}

func parseHTML(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return doc, nil
}

// titleSuffixPattern matches a trailing " | Shop Name" style site suffix
var titleSuffixPattern = regexp.MustCompile(`\s+[|\-–—:]\s+[^|\-–—:]+$`)

// stripTitleSuffix removes a trailing site-name suffix from a page title
func stripTitleSuffix(title, siteName string) string {
	title = strings.TrimSpace(title)
	if site := strings.TrimSpace(siteName); site != "" && len(title) > len(site) {
		cut := len(title) - len(site)
		if strings.EqualFold(title[cut:], site) {
			trimmed := strings.TrimRight(title[:cut], "|-–—: ")
			if trimmed != "" {
				return trimmed
			}
		}
	}

	loc := titleSuffixPattern.FindStringIndex(title)
	if loc == nil || !looksLikeSiteName(strings.TrimLeft(title[loc[0]:], " |-–—:")) {
		return title
	}
	if stripped := strings.TrimSpace(title[:loc[0]]); stripped != "" {
		return stripped
	}
	return title
}

// maxSiteNameWords bounds how long an unnamed suffix may be before it is
// treated as part of the product title
const maxSiteNameWords = 3

// looksLikeSiteName reports whether a title suffix reads as a shop name
// rather than product detail such as "2 Pack" or "500 ml"
func looksLikeSiteName(suffix string) bool {
	words := strings.Fields(suffix)
	if len(words) == 0 || len(words) > maxSiteNameWords {
		return false
	}
	for _, w := range words {
		if strings.IndexFunc(w, unicode.IsDigit) >= 0 {
			return false
		}
	}
	return true
}

// metaContent returns the first non-empty content of a meta tag identified by
// property, name or itemprop
func metaContent(doc *goquery.Document, keys ...string) string {
	for _, key := range keys {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q], meta[itemprop=%q]`, key, key, key)
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
				found = strings.TrimSpace(v)
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// metaContents returns every non-empty content of a repeated meta tag
func metaContents(doc *goquery.Document, key string) []string {
	sel := fmt.Sprintf(`meta[property=%q], meta[name=%q]`, key, key)
	var out []string
	doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("content"); ok && strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	})
	return out
}

// imageSources returns the src (or lazy-load src) of every img tag in document order
func imageSources(doc *goquery.Document) []string {
	var out []string
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		for _, attr := range []string{"src", "data-src", "data-original"} {
			if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
				out = append(out, strings.TrimSpace(v))
				return
			}
		}
	})
	return out
}

func pageTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}
