package domain

// PlatformID identifies a marketplace or storefront type
type PlatformID string

const (
	PlatformAliExpress  PlatformID = "aliexpress"
	PlatformAmazon      PlatformID = "amazon"
	PlatformEbay        PlatformID = "ebay"
	PlatformTemu        PlatformID = "temu"
	PlatformWish        PlatformID = "wish"
	PlatformCJ          PlatformID = "cj"
	PlatformBigBuy      PlatformID = "bigbuy"
	PlatformBanggood    PlatformID = "banggood"
	PlatformDHgate      PlatformID = "dhgate"
	PlatformShein       PlatformID = "shein"
	PlatformEtsy        PlatformID = "etsy"
	PlatformMadeInChina PlatformID = "made_in_china"
	PlatformWalmart     PlatformID = "walmart"
	PlatformAlibaba     PlatformID = "alibaba"
	Platform1688        PlatformID = "1688"
	PlatformShopify     PlatformID = "shopify"
	PlatformWooCommerce PlatformID = "woocommerce"
	PlatformGeneric     PlatformID = "generic"
)

var knownPlatforms = map[PlatformID]bool{
	PlatformAliExpress: true, PlatformAmazon: true, PlatformEbay: true, PlatformTemu: true,
	PlatformWish: true, PlatformCJ: true, PlatformBigBuy: true, PlatformBanggood: true,
	PlatformDHgate: true, PlatformShein: true, PlatformEtsy: true, PlatformMadeInChina: true,
	PlatformWalmart: true, PlatformAlibaba: true, Platform1688: true, PlatformShopify: true,
	PlatformWooCommerce: true, PlatformGeneric: true,
}

// Valid reports whether p is one of the known platform ids
func (p PlatformID) Valid() bool {
	return knownPlatforms[p]
}

func (p PlatformID) String() string {
	return string(p)
}

// DayRange is an inclusive range of days
type DayRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Average returns the midpoint of the range
func (r DayRange) Average() float64 {
	return float64(r.Min+r.Max) / 2
}

// PlatformProfile is static reference data for a wholesale platform
type PlatformProfile struct {
	ID                   PlatformID `json:"id"`
	DisplayName          string     `json:"displayName"`
	Tier                 int        `json:"tier"` // 1-3
	ShippingRange        DayRange   `json:"shippingRange"`
	MinimumOrderQuantity int        `json:"minimumOrderQuantity"`
	PriceTierLabel       string     `json:"priceTierLabel"`
	Reliability          float64    `json:"reliability"` // 0-1
	SearchURLTemplate    string     `json:"searchUrlTemplate"`

	// PriceMultiplier is applied to the source price to estimate the supplier price
	PriceMultiplier float64 `json:"priceMultiplier"`
	// ConfidenceAdjustment reflects how well the platform suits dropshipping (-10..+10)
	ConfidenceAdjustment int `json:"confidenceAdjustment"`
}

// SearchQueryPlaceholder is replaced by the encoded query in SearchURLTemplate
const SearchQueryPlaceholder = "{query}"

var platformProfiles = map[PlatformID]PlatformProfile{
	PlatformAliExpress: {
		ID:                   PlatformAliExpress,
		DisplayName:          "AliExpress",
		Tier:                 2,
		ShippingRange:        DayRange{Min: 15, Max: 30},
		MinimumOrderQuantity: 1,
		PriceTierLabel:       "retail",
		Reliability:          0.85,
		SearchURLTemplate:    "https://www.aliexpress.com/wholesale?SearchText={query}",
		PriceMultiplier:      0.35,
		ConfidenceAdjustment: 5,
	},
	PlatformCJ: {
		ID:                   PlatformCJ,
		DisplayName:          "CJ Dropshipping",
		Tier:                 1,
		ShippingRange:        DayRange{Min: 7, Max: 15},
		MinimumOrderQuantity: 1,
		PriceTierLabel:       "dropship",
		Reliability:          0.90,
		SearchURLTemplate:    "https://cjdropshipping.com/search?keyword={query}",
		PriceMultiplier:      0.45,
		ConfidenceAdjustment: 10,
	},
	PlatformAlibaba: {
		ID:                   PlatformAlibaba,
		DisplayName:          "Alibaba",
		Tier:                 1,
		ShippingRange:        DayRange{Min: 15, Max: 35},
		MinimumOrderQuantity: 50,
		PriceTierLabel:       "wholesale",
		Reliability:          0.85,
		SearchURLTemplate:    "https://www.alibaba.com/trade/search?SearchText={query}",
		PriceMultiplier:      0.25,
		ConfidenceAdjustment: -5,
	},
	Platform1688: {
		ID:                   Platform1688,
		DisplayName:          "1688",
		Tier:                 3,
		ShippingRange:        DayRange{Min: 20, Max: 40},
		MinimumOrderQuantity: 10,
		PriceTierLabel:       "factory",
		Reliability:          0.75,
		SearchURLTemplate:    "https://s.1688.com/selloffer/offer_search.htm?keywords={query}",
		PriceMultiplier:      0.20,
		ConfidenceAdjustment: -10,
	},
	PlatformDHgate: {
		ID:                   PlatformDHgate,
		DisplayName:          "DHgate",
		Tier:                 2,
		ShippingRange:        DayRange{Min: 12, Max: 25},
		MinimumOrderQuantity: 1,
		PriceTierLabel:       "wholesale",
		Reliability:          0.78,
		SearchURLTemplate:    "https://www.dhgate.com/wholesale/search.do?searchkey={query}",
		PriceMultiplier:      0.30,
		ConfidenceAdjustment: 0,
	},
	PlatformBanggood: {
		ID:                   PlatformBanggood,
		DisplayName:          "Banggood",
		Tier:                 2,
		ShippingRange:        DayRange{Min: 10, Max: 20},
		MinimumOrderQuantity: 1,
		PriceTierLabel:       "retail",
		Reliability:          0.82,
		SearchURLTemplate:    "https://www.banggood.com/search?keywords={query}",
		PriceMultiplier:      0.40,
		ConfidenceAdjustment: 0,
	},
}

// GetPlatformProfile returns the static profile of a supplier platform
func GetPlatformProfile(id PlatformID) (PlatformProfile, bool) {
	p, ok := platformProfiles[id]
	return p, ok
}

// SupplierPlatforms lists every platform that has a supplier profile
func SupplierPlatforms() []PlatformID {
	return []PlatformID{
		PlatformAliExpress, PlatformCJ, PlatformAlibaba,
		Platform1688, PlatformDHgate, PlatformBanggood,
	}
}
