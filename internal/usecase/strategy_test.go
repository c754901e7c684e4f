package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supplylens/backend/internal/domain"
)

const widgetJSONLDPage = `<html><head>
<title>Blue Widget | Widget Shop</title>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Blue Widget",
 "offers":{"@type":"Offer","price":"19.99"},
 "image":["https://cdn.x/w.jpg"]}
</script>
</head><body></body></html>`

const graphJSONLDPage = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"Organization","name":"Acme"}</script>
<script type="application/ld+json">
{"@context":"https://schema.org","@graph":[
  {"@type":"BreadcrumbList"},
  {"@type":["Product","Thing"],"name":"Trail Shoe","sku":"TS-1",
   "description":"Light trail running shoe",
   "brand":{"@type":"Brand","name":"Acme"},
   "category":"Shoes",
   "image":[{"@type":"ImageObject","url":"https://cdn.x/shoe.jpg"},"//cdn.x/shoe-2.jpg"],
   "video":{"@type":"VideoObject","contentUrl":"https://cdn.x/shoe.mp4"},
   "offers":[
     {"@type":"Offer","name":"EU 42","price":"89,90","priceCurrency":"eur","sku":"TS-42","availability":"https://schema.org/InStock","inventoryLevel":{"value":7}},
     {"@type":"Offer","name":"EU 43","price":"89,90","priceCurrency":"eur","sku":"TS-43","availability":"https://schema.org/OutOfStock"}
   ],
   "review":[{"author":{"name":"Kim"},"reviewBody":"Comfy","reviewRating":{"ratingValue":"4.6"}},
              {"author":"Ann","reviewBody":"no rating given"}]
  }
]}
</script>
</head><body></body></html>`

const metaOnlyPage = `<html><head>
<title>Ceramic Mug - Home Goods</title>
<meta property="og:title" content="Ceramic Mug">
<meta property="og:description" content="Stoneware mug, 350 ml">
<meta property="og:image" content="https://cdn.x/mug.jpg">
<meta property="og:image" content="https://cdn.x/pixel.gif">
<meta property="product:price:amount" content="12.50">
<meta property="product:price:currency" content="gbp">
<meta property="product:brand" content="Potter">
</head><body></body></html>`

func pageFor(html string) *PageSource {
	return NewPageSource(&MockPageFetcher{html: html}, "https://example.com/products/widget")
}

func TestPageSource_Document(t *testing.T) {
	t.Run("fetches once", func(t *testing.T) {
		fetcher := &MockPageFetcher{html: widgetJSONLDPage}
		page := NewPageSource(fetcher, "https://example.com")

		_, err := page.Document(context.Background())
		require.NoError(t, err)
		_, err = page.Document(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 1, fetcher.calls)
	})

	t.Run("no fetcher means skipped", func(t *testing.T) {
		page := NewPageSource(nil, "https://example.com")
		_, err := page.Document(context.Background())
		assert.ErrorIs(t, err, domain.ErrStrategySkipped)
	})

	t.Run("fetch error is remembered", func(t *testing.T) {
		fetcher := &MockPageFetcher{err: domain.ErrFetchFailed}
		page := NewPageSource(fetcher, "https://example.com")

		_, err1 := page.Document(context.Background())
		_, err2 := page.Document(context.Background())

		assert.ErrorIs(t, err1, domain.ErrFetchFailed)
		assert.ErrorIs(t, err2, domain.ErrFetchFailed)
		assert.Equal(t, 1, fetcher.calls)
	})
}

func TestStructuredDataStrategy(t *testing.T) {
	s := NewStructuredDataStrategy()
	ctx := context.Background()

	t.Run("plain product block", func(t *testing.T) {
		p, err := s.Extract(ctx, "", pageFor(widgetJSONLDPage))
		require.NoError(t, err)

		assert.Equal(t, "Blue Widget", p.Title)
		assert.Equal(t, "19.99", p.Price.String())
		assert.Equal(t, []string{"https://cdn.x/w.jpg"}, p.Images)
		assert.Empty(t, p.Variants)
	})

	t.Run("product inside graph with offers list", func(t *testing.T) {
		p, err := s.Extract(ctx, "", pageFor(graphJSONLDPage))
		require.NoError(t, err)

		assert.Equal(t, "Trail Shoe", p.Title)
		assert.Equal(t, "Light trail running shoe", p.Description)
		assert.Equal(t, "Acme", p.Brand)
		assert.Equal(t, "Shoes", p.Category)
		assert.Equal(t, "TS-1", p.SKU)
		assert.Equal(t, "89.9", p.Price.String())
		assert.Equal(t, "EUR", p.Currency)
		require.NotNil(t, p.Stock)
		assert.Equal(t, 7, *p.Stock)
		assert.Equal(t, []string{"https://cdn.x/shoe.jpg", "https://cdn.x/shoe-2.jpg"}, p.Images)
		assert.Equal(t, []string{"https://cdn.x/shoe.mp4"}, p.Videos)

		require.Len(t, p.Variants, 2)
		assert.Equal(t, "EU 42", p.Variants[0].Label)
		assert.True(t, p.Variants[0].Available)
		assert.False(t, p.Variants[1].Available)

		require.Len(t, p.Reviews, 1)
		assert.Equal(t, domain.Review{Author: "Kim", Content: "Comfy", Rating: 5}, p.Reviews[0])
	})

	t.Run("no product block", func(t *testing.T) {
		_, err := s.Extract(ctx, "", pageFor(metaOnlyPage))
		assert.ErrorIs(t, err, domain.ErrNoProductData)
	})

	t.Run("invalid json is ignored", func(t *testing.T) {
		html := `<script type="application/ld+json">{"@type":"Product", broken</script>`
		_, err := s.Extract(ctx, "", pageFor(html))
		assert.ErrorIs(t, err, domain.ErrNoProductData)
	})
}

func TestMetaTagStrategy(t *testing.T) {
	s := NewMetaTagStrategy()
	ctx := context.Background()

	t.Run("open graph tags", func(t *testing.T) {
		p, err := s.Extract(ctx, "", pageFor(metaOnlyPage))
		require.NoError(t, err)

		assert.Equal(t, "Ceramic Mug", p.Title)
		assert.Equal(t, "Stoneware mug, 350 ml", p.Description)
		assert.Equal(t, "Potter", p.Brand)
		assert.Equal(t, "12.5", p.Price.String())
		assert.Equal(t, "GBP", p.Currency)
		assert.Equal(t, []string{"https://cdn.x/mug.jpg"}, p.Images)
	})

	t.Run("falls back to the stripped page title", func(t *testing.T) {
		p, err := s.Extract(ctx, "", pageFor(`<html><head><title>Desk Lamp | Lights Co</title></head></html>`))
		require.NoError(t, err)
		assert.Equal(t, "Desk Lamp", p.Title)
		assert.True(t, p.Price.IsZero())
	})

	t.Run("empty page has no data", func(t *testing.T) {
		_, err := s.Extract(ctx, "", pageFor(`<html><body><p>hello</p></body></html>`))
		assert.ErrorIs(t, err, domain.ErrNoProductData)
	})
}

func TestRenderStrategy(t *testing.T) {
	ctx := context.Background()

	t.Run("nil renderer is skipped", func(t *testing.T) {
		_, err := NewRenderStrategy(nil).Extract(ctx, "https://example.com", nil)
		assert.ErrorIs(t, err, domain.ErrStrategySkipped)
	})

	t.Run("reads metadata and the first price", func(t *testing.T) {
		renderer := &MockRenderer{page: &domain.RenderedPage{
			HTML:     `<html><body><img src="//cdn.x/lamp.jpg"><img src="https://cdn.x/spinner.gif"></body></html>`,
			Markdown: "# Desk Lamp\n\nNow only €1.234,50 incl. VAT\n\nWas €1.500,00",
			Metadata: domain.PageMetadata{
				Title:       "Desk Lamp | Lights Co",
				Description: "Adjustable desk lamp",
				OGImage:     "https://cdn.x/lamp-og.jpg",
			},
		}}

		p, err := NewRenderStrategy(renderer).Extract(ctx, "https://example.com/lamp", nil)
		require.NoError(t, err)

		assert.Equal(t, "Desk Lamp", p.Title)
		assert.Equal(t, "Adjustable desk lamp", p.Description)
		assert.Equal(t, "1234.5", p.Price.String())
		assert.Equal(t, "EUR", p.Currency)
		assert.Equal(t, []string{"https://cdn.x/lamp-og.jpg", "https://cdn.x/lamp.jpg"}, p.Images)
	})

	t.Run("og title wins", func(t *testing.T) {
		renderer := &MockRenderer{page: &domain.RenderedPage{
			Metadata: domain.PageMetadata{Title: "Lamp page", OGTitle: "Desk Lamp Pro"},
		}}
		p, err := NewRenderStrategy(renderer).Extract(ctx, "https://example.com/lamp", nil)
		require.NoError(t, err)
		assert.Equal(t, "Desk Lamp Pro", p.Title)
	})

	t.Run("renderer error propagates", func(t *testing.T) {
		renderer := &MockRenderer{err: errors.New("503 from scrape service")}
		_, err := NewRenderStrategy(renderer).Extract(ctx, "https://example.com/lamp", nil)
		assert.Error(t, err)
	})

	t.Run("no title means no data", func(t *testing.T) {
		renderer := &MockRenderer{page: &domain.RenderedPage{Markdown: "$10"}}
		_, err := NewRenderStrategy(renderer).Extract(ctx, "https://example.com/lamp", nil)
		assert.ErrorIs(t, err, domain.ErrNoProductData)
	})
}

func TestStripTitleSuffix(t *testing.T) {
	tests := []struct {
		title, site, want string
	}{
		{"Blue Widget | Widget Shop", "", "Blue Widget"},
		{"Blue Widget – Widget Shop", "Widget Shop", "Blue Widget"},
		{"Blue Widget", "", "Blue Widget"},
		{"  Blue Widget  ", "", "Blue Widget"},
		{"USB-C Cable - 2 Pack", "", "USB-C Cable - 2 Pack"},
		{"Olive Oil - 500 ml", "", "Olive Oil - 500 ml"},
		{"Desk Lamp - Adjustable Arm With Clamp Base", "", "Desk Lamp - Adjustable Arm With Clamp Base"},
		{"USB-C Cable - 2 Pack | Cable Store", "", "USB-C Cable - 2 Pack"},
		{"USB-C Cable - 2 Pack | Cable Store", "Cable Store", "USB-C Cable - 2 Pack"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, stripTitleSuffix(tt.title, tt.site))
		})
	}
}
