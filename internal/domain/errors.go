package domain

import "errors"

var (
	// ErrInvalidURL is returned when a product URL is not an absolute http(s) URL
	ErrInvalidURL = errors.New("invalid product URL")

	// ErrExtractionFailed is returned when every extraction strategy came back without a title
	ErrExtractionFailed = errors.New("could not read this product page")

	// ErrStrategySkipped is returned by a strategy that is not configured for this process
	ErrStrategySkipped = errors.New("extraction strategy skipped")

	// ErrNoProductData is returned by a strategy that parsed the page but found nothing usable
	ErrNoProductData = errors.New("no product data found")

	// ErrPersistence is returned when a validated product could not be stored
	ErrPersistence = errors.New("product persistence failed")

	// ErrProductNotFound is returned when a stored product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrScrapeServiceFailure is returned when the rendering service request fails
	ErrScrapeServiceFailure = errors.New("scrape service request failed")

	// ErrFetchFailed is returned when a direct page fetch fails
	ErrFetchFailed = errors.New("page fetch failed")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPlatformNotFound is returned for an unknown supplier platform id
	ErrPlatformNotFound = errors.New("platform not found")
)
