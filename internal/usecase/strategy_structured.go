package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
	"github.com/supplylens/backend/internal/domain"
	"github.com/tidwall/gjson"
)

// maxGraphDepth bounds the search for a Product node inside nested JSON-LD
const maxGraphDepth = 4

// StructuredDataStrategy reads a schema.org Product block embedded as JSON-LD
type StructuredDataStrategy struct{}

// NewStructuredDataStrategy creates the structured-data strategy
func NewStructuredDataStrategy() *StructuredDataStrategy {
	return &StructuredDataStrategy{}
}

func (s *StructuredDataStrategy) Name() string { return "structured_data" }

func (s *StructuredDataStrategy) Extract(ctx context.Context, _ string, page *PageSource) (*domain.ExtractedProduct, error) {
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, err
	}

	node, ok := findProductNode(doc)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON-LD Product block", domain.ErrNoProductData)
	}

	product := productFromJSONLD(node)
	if product.Title == "" {
		return nil, fmt.Errorf("%w: JSON-LD Product has no name", domain.ErrNoProductData)
	}
	return product, nil
}

// findProductNode scans every ld+json script for a Product-typed node, looking
// inside top-level arrays and @graph lists.
func findProductNode(doc *goquery.Document) (gjson.Result, bool) {
	var found gjson.Result
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" || !gjson.Valid(raw) {
			return true
		}
		if node, ok := searchProduct(gjson.Parse(raw), 0); ok {
			found = node
			return false
		}
		return true
	})
	return found, found.Exists()
}

func searchProduct(node gjson.Result, depth int) (gjson.Result, bool) {
	if depth > maxGraphDepth {
		return gjson.Result{}, false
	}

	if node.IsArray() {
		var hit gjson.Result
		node.ForEach(func(_, item gjson.Result) bool {
			if n, ok := searchProduct(item, depth+1); ok {
				hit = n
				return false
			}
			return true
		})
		return hit, hit.Exists()
	}

	if !node.IsObject() {
		return gjson.Result{}, false
	}
	if isProductType(ldField(node, "@type")) {
		return node, true
	}
	if graph := ldField(node, "@graph"); graph.Exists() {
		return searchProduct(graph, depth+1)
	}
	return gjson.Result{}, false
}

// ldField reads a key of a JSON-LD object. Keys starting with '@' are read by
// iteration because gjson treats a leading '@' as a modifier.
func ldField(node gjson.Result, key string) gjson.Result {
	if !strings.HasPrefix(key, "@") {
		return node.Get(key)
	}
	var out gjson.Result
	node.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}

func isProductType(t gjson.Result) bool {
	match := func(s string) bool {
		s = strings.ToLower(s)
		return s == "product" || strings.HasSuffix(s, "/product") || s == "schema:product"
	}
	if t.IsArray() {
		for _, v := range t.Array() {
			if match(v.String()) {
				return true
			}
		}
		return false
	}
	return match(t.String())
}

func productFromJSONLD(node gjson.Result) *domain.ExtractedProduct {
	p := &domain.ExtractedProduct{
		Title:       strings.TrimSpace(node.Get("name").String()),
		Description: strings.TrimSpace(node.Get("description").String()),
		SKU:         strings.TrimSpace(node.Get("sku").String()),
		Category:    nameOf(node.Get("category")),
		Brand:       nameOf(node.Get("brand")),
	}

	offers := listOf(node.Get("offers"))
	if len(offers) > 0 {
		first := offers[0]
		p.Price = offerPrice(first)
		p.Currency = strings.ToUpper(strings.TrimSpace(first.Get("priceCurrency").String()))
		if lvl := first.Get("inventoryLevel.value"); lvl.Exists() {
			stock := int(lvl.Int())
			p.Stock = &stock
		}
		// AggregateOffer may nest the individual offers
		if nested := listOf(first.Get("offers")); len(nested) > 1 {
			offers = nested
		}
	}
	if len(offers) > 1 {
		for i, o := range offers {
			if i == domain.MaxVariants {
				break
			}
			p.Variants = append(p.Variants, variantFromOffer(o, i))
		}
	}

	var images []string
	for _, img := range listOf(node.Get("image")) {
		images = append(images, urlOf(img))
	}
	p.Images = collectImages(maxStrategyImages, images...)

	for _, v := range listOf(node.Get("video")) {
		u := v.Get("contentUrl").String()
		if u == "" {
			u = v.Get("embedUrl").String()
		}
		if u != "" {
			p.Videos = append(p.Videos, u)
		}
	}

	for _, r := range listOf(node.Get("review")) {
		// unrated reviews are dropped rather than scored
		rating := r.Get("reviewRating.ratingValue")
		if !rating.Exists() || strings.TrimSpace(rating.String()) == "" {
			continue
		}
		p.Reviews = append(p.Reviews, domain.Review{
			Author:  nameOf(r.Get("author")),
			Content: strings.TrimSpace(r.Get("reviewBody").String()),
			Rating:  clampRating(rating.Float()),
		})
	}

	return p
}

func offerPrice(offer gjson.Result) decimal.Decimal {
	if price := offer.Get("price"); price.Exists() && price.String() != "" {
		if d := ParsePrice(price.String()); d.IsPositive() {
			return d
		}
	}
	return ParsePrice(offer.Get("lowPrice").String())
}

func variantFromOffer(o gjson.Result, i int) domain.Variant {
	label := strings.TrimSpace(o.Get("name").String())
	if label == "" {
		label = strings.TrimSpace(o.Get("sku").String())
	}
	if label == "" {
		label = fmt.Sprintf("Option %d", i+1)
	}
	availability := strings.ToLower(o.Get("availability").String())
	return domain.Variant{
		Label:     label,
		Price:     offerPrice(o),
		SKU:       strings.TrimSpace(o.Get("sku").String()),
		Available: availability == "" || strings.Contains(availability, "instock"),
	}
}

// listOf normalizes a value that may be a single item or a list
func listOf(v gjson.Result) []gjson.Result {
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if v.IsArray() {
		return v.Array()
	}
	return []gjson.Result{v}
}

// nameOf reads a value that is either a plain string or an object with a name
func nameOf(v gjson.Result) string {
	if v.IsObject() {
		return strings.TrimSpace(v.Get("name").String())
	}
	return strings.TrimSpace(v.String())
}

// urlOf reads an image that is either a URL string or an ImageObject
func urlOf(v gjson.Result) string {
	if v.IsObject() {
		if u := v.Get("url").String(); u != "" {
			return u
		}
		return v.Get("contentUrl").String()
	}
	return v.String()
}

func clampRating(r float64) int {
	rating := int(math.Round(r))
	return clampInt(rating, 1, 5)
}
