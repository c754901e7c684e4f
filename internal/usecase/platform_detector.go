package usecase

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/supplylens/backend/internal/domain"
)

type platformRule struct {
	platform  domain.PlatformID
	fragments []string
	idPattern []*regexp.Regexp
}

// platformRules is checked in order against the lowercased hostname; first match wins
var platformRules = []platformRule{
	{
		platform:  domain.PlatformAliExpress,
		fragments: []string{"aliexpress.", "ali.ski"},
		idPattern: compileAll(`item/(\d+)\.html`, `/(\d+)\.html`, `productId=(\d+)`, `item/(\d+)`),
	},
	{
		platform:  domain.PlatformAmazon,
		fragments: []string{"amazon.", "amzn."},
		idPattern: compileAll(`(?i)/dp/([A-Z0-9]{10})`, `(?i)/gp/product/([A-Z0-9]{10})`, `(?i)asin=([A-Z0-9]{10})`),
	},
	{
		platform:  domain.PlatformEbay,
		fragments: []string{"ebay."},
		idPattern: compileAll(`/itm/(\d+)`, `/itm/[^/]+/(\d+)`, `item=(\d+)`),
	},
	{
		platform:  domain.PlatformTemu,
		fragments: []string{"temu.com"},
		idPattern: compileAll(`goods/(\d+)`, `-g-(\d+)`, `goods_id=(\d+)`),
	},
	{
		platform:  domain.PlatformWish,
		fragments: []string{"wish.com"},
		idPattern: compileAll(`product/([a-zA-Z0-9]+)`, `/c/([a-zA-Z0-9]+)`),
	},
	{
		platform:  domain.PlatformCJ,
		fragments: []string{"cjdropshipping.com", "cjdrop"},
		idPattern: compileAll(`product/([^/?]+)`, `pid=([^&]+)`),
	},
	{
		platform:  domain.PlatformBigBuy,
		fragments: []string{"bigbuy"},
		idPattern: compileAll(`/([^/]+)\.html`, `sku=([^&]+)`),
	},
	{
		platform:  domain.PlatformBanggood,
		fragments: []string{"banggood.com"},
		idPattern: compileAll(`-p-(\d+)\.html`, `products/(\d+)`),
	},
	{
		platform:  domain.PlatformDHgate,
		fragments: []string{"dhgate.com"},
		idPattern: compileAll(`product/([^/.]+)`, `/(\d+)\.html`),
	},
	{
		platform:  domain.PlatformShein,
		fragments: []string{"shein."},
		idPattern: compileAll(`-p-(\d+)`, `productId=(\d+)`),
	},
	{
		platform:  domain.PlatformEtsy,
		fragments: []string{"etsy.com"},
		idPattern: compileAll(`listing/(\d+)`),
	},
	{
		platform:  domain.PlatformMadeInChina,
		fragments: []string{"made-in-china.com"},
		idPattern: compileAll(`product/([^/?]+)`),
	},
	{
		platform:  domain.PlatformWalmart,
		fragments: []string{"walmart.com"},
		idPattern: compileAll(`/ip/[^/]+/(\d+)`, `/ip/(\d+)`),
	},
	{
		platform:  domain.PlatformAlibaba,
		fragments: []string{"alibaba.com"},
		idPattern: compileAll(`_(\d+)\.html`, `/(\d+)\.html`),
	},
	{
		platform:  domain.Platform1688,
		fragments: []string{"1688.com"},
		idPattern: compileAll(`offer/(\d+)\.html`),
	},
}

var (
	shopifyIDPattern     = regexp.MustCompile(`/products/([^/?#]+)`)
	woocommerceIDPattern = regexp.MustCompile(`/product/([^/?#]+)`)
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// DetectPlatform classifies a product URL. Unrecognized hosts without a
// storefront path map to generic.
func DetectPlatform(rawURL string) domain.PlatformID {
	host, path := splitHostPath(rawURL)

	for _, rule := range platformRules {
		for _, frag := range rule.fragments {
			if strings.Contains(host, frag) {
				return rule.platform
			}
		}
	}

	switch {
	case strings.Contains(path, "/products/") || strings.HasSuffix(host, ".myshopify.com"):
		return domain.PlatformShopify
	case strings.Contains(path, "/product/"):
		return domain.PlatformWooCommerce
	}
	return domain.PlatformGeneric
}

// ExtractProductID returns the marketplace product id embedded in a URL, if any
func ExtractProductID(rawURL string, platform domain.PlatformID) string {
	var patterns []*regexp.Regexp
	switch platform {
	case domain.PlatformShopify:
		patterns = []*regexp.Regexp{shopifyIDPattern}
	case domain.PlatformWooCommerce:
		patterns = []*regexp.Regexp{woocommerceIDPattern}
	default:
		for _, rule := range platformRules {
			if rule.platform == platform {
				patterns = rule.idPattern
				break
			}
		}
	}

	for _, re := range patterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// splitHostPath returns the lowercased host and path of a URL. Strings that do
// not parse are treated as a bare host.
func splitHostPath(rawURL string) (string, string) {
	s := strings.ToLower(strings.TrimSpace(rawURL))
	if !strings.Contains(s, "://") && !strings.HasPrefix(s, "//") {
		s = "//" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return s, s
	}
	return u.Hostname(), u.Path
}

// categoryKeywords is checked in order; the first category reaching the hit threshold wins
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"electronics", []string{
		"bluetooth", "wireless", "earbuds", "earbud", "earphone", "earphones", "headphone", "headphones",
		"headset", "charger", "charging", "usb", "speaker", "cable", "smartwatch", "smartphone", "phone",
		"tablet", "laptop", "camera", "power bank", "adapter", "keyboard", "mouse", "hdmi", "led",
	}},
	{"clothing", []string{
		"shirt", "tshirt", "dress", "jacket", "hoodie", "sweater", "pants", "jeans", "coat", "skirt",
		"blouse", "leggings", "shorts", "sweatshirt", "cotton", "sleeve", "women", "men",
	}},
	{"shoes", []string{
		"shoes", "shoe", "sneakers", "sneaker", "boots", "sandals", "heels", "slippers", "loafers", "footwear",
	}},
	{"accessories", []string{
		"jewelry", "necklace", "bracelet", "earrings", "ring", "watch", "handbag", "bag", "wallet",
		"backpack", "sunglasses", "belt", "hat", "scarf",
	}},
	{"home", []string{
		"kitchen", "furniture", "decor", "lamp", "pillow", "curtain", "bedding", "storage", "organizer",
		"garden", "towel", "mug", "rug", "home",
	}},
	{"beauty", []string{
		"makeup", "lipstick", "skincare", "serum", "cream", "mascara", "nail", "perfume", "hair",
		"cosmetic", "cosmetics", "beauty",
	}},
	{"sports", []string{
		"fitness", "yoga", "gym", "running", "cycling", "camping", "hiking", "sport", "sports",
		"workout", "dumbbell",
	}},
	{"toys", []string{
		"toy", "toys", "puzzle", "doll", "lego", "kids", "plush", "game",
	}},
	{"pet", []string{
		"dog", "cat", "pet", "puppy", "collar", "leash", "aquarium",
	}},
	{"automotive", []string{
		"car", "vehicle", "motorcycle", "auto", "tire", "dashboard",
	}},
	{"baby", []string{
		"baby", "infant", "toddler", "stroller", "diaper", "newborn",
	}},
}

// shortTitleLength is the cleaned-title length under which one keyword hit is enough
const shortTitleLength = 50

// ClassifyCategory maps a product title to a category by keyword hits
func ClassifyCategory(title string) string {
	cleaned := CleanTitle(title)
	if cleaned == "" {
		return GeneralCategory
	}

	threshold := 2
	if utf8.RuneCountInString(cleaned) < shortTitleLength {
		threshold = 1
	}

	padded := " " + cleaned + " "
	for _, entry := range categoryKeywords {
		hits := 0
		for _, kw := range entry.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				hits++
			}
		}
		if hits >= threshold {
			return entry.category
		}
	}
	return GeneralCategory
}
