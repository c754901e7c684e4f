package usecase

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// imageDenylist holds substrings of decorative or tracking images, matched case-insensitively
var imageDenylist = []string{
	"pixel",
	"tracking",
	"placeholder",
	"spacer",
	"1x1",
	"blank.gif",
	"transparent.gif",
	"data:",
	"base64",
	".svg",
	"sprite",
	"spinner",
	"loader",
}

// imageUpgradeRule rewrites a thumbnail URL into its large/original form.
// Every rule must be idempotent.
type imageUpgradeRule struct {
	name    string
	host    string
	pattern *regexp.Regexp
	replace string
}

var imageUpgradeRules = []imageUpgradeRule{
	{
		// https://m.media-amazon.com/images/I/71abc._AC_SX300_SY300_.jpg
		name:    "amazon",
		host:    "amazon",
		pattern: regexp.MustCompile(`\._[A-Z]{2}[A-Za-z0-9,_]*_\.`),
		replace: "._SL1500_.",
	},
	{
		// https://ae01.alicdn.com/kf/Sabc.jpg_220x220q75.jpg_.webp
		name:    "alicdn",
		host:    "alicdn",
		pattern: regexp.MustCompile(`(?i)(\.(?:jpe?g|png|webp))_\d+x\d+[^/]*$`),
		replace: "$1",
	},
	{
		// https://cdn.shopify.com/s/files/1/products/shirt_200x200@2x.jpg?v=1
		name:    "shopify",
		host:    "shopify",
		pattern: regexp.MustCompile(`(?i)_(?:\d+x\d*|x\d+|pico|icon|thumb|small|compact|medium|large|grande)(?:@2x)?(\.(?:jpe?g|png|gif|webp))`),
		replace: "$1",
	},
	{
		// https://i.ebayimg.com/images/g/abc/s-l225.jpg
		name:    "ebay",
		host:    "ebayimg",
		pattern: regexp.MustCompile(`s-l\d+\.`),
		replace: "s-l1600.",
	},
}

// ValidateImageURL returns the normalized high-resolution form of an image URL,
// or an empty string when the URL is rejected.
func ValidateImageURL(raw any) string {
	s, ok := raw.(string)
	if !ok {
		if raw == nil {
			return ""
		}
		s = fmt.Sprint(raw)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	lower := strings.ToLower(s)
	for _, deny := range imageDenylist {
		if strings.Contains(lower, deny) {
			return ""
		}
	}

	if strings.HasPrefix(s, "//") {
		s = "https:" + s
	}

	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}

	return upgradeImageURL(s, strings.ToLower(u.Host))
}

func upgradeImageURL(s, host string) string {
	for _, rule := range imageUpgradeRules {
		if !strings.Contains(host, rule.host) {
			continue
		}
		s = rule.pattern.ReplaceAllString(s, rule.replace)
	}
	return s
}

// collectImages validates, deduplicates and caps a list of raw image URLs
func collectImages(limit int, raws ...string) []string {
	seen := make(map[string]bool, len(raws))
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		img := ValidateImageURL(raw)
		if img == "" || seen[img] {
			continue
		}
		seen[img] = true
		out = append(out, img)
		if len(out) == limit {
			break
		}
	}
	return out
}
