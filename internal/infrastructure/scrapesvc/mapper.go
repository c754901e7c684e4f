package scrapesvc

import (
	"fmt"
	"strings"

	"github.com/supplylens/backend/internal/domain"
	"github.com/tidwall/gjson"
)

// MapScrapeResponse converts a scrape service response body to a rendered page.
// Expected shape: {"success":true,"data":{"html","markdown","metadata":{...}}}
func MapScrapeResponse(raw []byte) (*domain.RenderedPage, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: response is not JSON", domain.ErrScrapeServiceFailure)
	}

	res := gjson.ParseBytes(raw)
	if ok := res.Get("success"); ok.Exists() && !ok.Bool() {
		msg := res.Get("error").String()
		if msg == "" {
			msg = "unsuccessful scrape"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrScrapeServiceFailure, msg)
	}

	data := res.Get("data")
	if !data.Exists() {
		return nil, fmt.Errorf("%w: response has no data", domain.ErrScrapeServiceFailure)
	}

	meta := data.Get("metadata")
	return &domain.RenderedPage{
		HTML:     data.Get("html").String(),
		Markdown: data.Get("markdown").String(),
		Metadata: domain.PageMetadata{
			Title:       firstString(meta, "title", "ogTitle"),
			Description: firstString(meta, "description", "ogDescription"),
			OGTitle:     firstString(meta, "ogTitle", "og:title"),
			OGImage:     firstString(meta, "ogImage", "og:image"),
			SiteName:    firstString(meta, "ogSiteName", "og:site_name"),
		},
	}, nil
}

// firstString returns the first non-empty field. Metadata values may be a
// string or a list of strings.
func firstString(obj gjson.Result, keys ...string) string {
	for _, key := range keys {
		v := obj.Get(key)
		if v.IsArray() {
			v = v.Get("0")
		}
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}
