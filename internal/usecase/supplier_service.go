package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	signatureTitleRunes = 50
	defaultSupplierTTL  = 30 * time.Minute
	defaultMaxPlatforms = 4
)

// Price thresholds for optional platforms
var (
	wholesaleMinPrice = decimal.NewFromInt(50)
	budgetMaxPrice    = decimal.NewFromInt(20)
	rangeLowFactor    = decimal.RequireFromString("0.8")
	rangeHighFactor   = decimal.RequireFromString("1.3")
)

var (
	priorityPlatforms  = []domain.PlatformID{domain.PlatformAliExpress, domain.PlatformCJ}
	wholesalePlatforms = []domain.PlatformID{domain.PlatformAlibaba}
	budgetPlatforms    = []domain.PlatformID{domain.PlatformDHgate, domain.PlatformBanggood}
)

// SupplierObserver receives cache lookup outcomes
type SupplierObserver interface {
	ObserveCacheLookup(hit bool)
}

// SupplierServiceConfig holds configuration for the supplier service
type SupplierServiceConfig struct {
	CacheTTL     time.Duration
	MaxPlatforms int
	Weights      RankingWeights
	Observer     SupplierObserver
	// Clock overrides time.Now, for tests
	Clock func() time.Time
}

// SupplierService generates, scores and caches supplier candidates
type SupplierService struct {
	cache        domain.CacheRepository
	preprocessor *QueryPreprocessor
	matching     *MatchingService
	observer     SupplierObserver
	logger       *zap.Logger
	clock        func() time.Time
	cacheTTL     time.Duration
	maxPlatforms int
}

// NewSupplierService creates a new supplier service. A nil cache disables caching.
func NewSupplierService(cache domain.CacheRepository, logger *zap.Logger, config SupplierServiceConfig) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultSupplierTTL
	}
	maxPlatforms := config.MaxPlatforms
	if maxPlatforms <= 0 {
		maxPlatforms = defaultMaxPlatforms
	}
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}

	return &SupplierService{
		cache:        cache,
		preprocessor: NewQueryPreprocessor(logger),
		matching:     NewMatchingService(MatchConfig{Weights: config.Weights}),
		observer:     config.Observer,
		logger:       logger.Named("suppliers"),
		clock:        clock,
		cacheTTL:     cacheTTL,
		maxPlatforms: maxPlatforms,
	}
}

// DetectSuppliers returns ranked supplier candidates for a product.
// Flow: check cache -> build queries -> select platforms -> score -> rank -> cache
func (s *SupplierService) DetectSuppliers(
	ctx context.Context,
	input domain.SupplierSearchInput,
	opts domain.SearchOptions,
) ([]domain.SupplierCandidate, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrInvalidRequest)
	}
	if input.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidRequest)
	}

	key := Signature(input.Title, input.Price)

	if !opts.BypassCache {
		if cached, ok := s.lookup(ctx, key); ok {
			return cached, nil
		}
	}

	candidates, err := s.generate(ctx, input, opts)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, candidates)
	return candidates, nil
}

// Queries exposes the prioritized search queries built for a product title
func (s *SupplierService) Queries(input domain.SupplierSearchInput) []domain.SearchQuery {
	return s.preprocessor.BuildQueries(input.Title, input.Brand, input.Category)
}

// ClearCache drops every cached supplier result
func (s *SupplierService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}

// SelectPlatforms picks the platforms to search for a product
func SelectPlatforms(price decimal.Decimal, source domain.PlatformID, allowRestricted bool, max int) []domain.PlatformID {
	selected := make([]domain.PlatformID, 0, max)
	seen := map[domain.PlatformID]bool{source: true}

	add := func(ids ...domain.PlatformID) {
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			selected = append(selected, id)
		}
	}

	add(priorityPlatforms...)
	if price.GreaterThan(wholesaleMinPrice) {
		add(wholesalePlatforms...)
	}
	if price.LessThan(budgetMaxPrice) {
		add(budgetPlatforms...)
	}
	if allowRestricted {
		add(domain.Platform1688)
	}

	if len(selected) > max {
		selected = selected[:max]
	}
	return selected
}

// Signature derives the cache key identifying "the same product"
func Signature(title string, price decimal.Decimal) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(title), " "))
	normalized = truncateRunes(normalized, signatureTitleRunes)
	return fmt.Sprintf("suppliers:%s:%s", normalized, price.StringFixed(2))
}

func (s *SupplierService) generate(
	ctx context.Context,
	input domain.SupplierSearchInput,
	opts domain.SearchOptions,
) ([]domain.SupplierCandidate, error) {
	queries := s.Queries(input)
	primary := PrimaryQuery(queries, input.Title)
	keyTerms := len(s.preprocessor.KeyTerms(input.Title))

	category := input.Category
	if strings.TrimSpace(category) == "" {
		category = ClassifyCategory(input.Title)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "USD"
	}

	platforms := SelectPlatforms(input.Price, input.SourcePlatform, opts.AllowRestrictedPlatform, s.maxPlatforms)
	candidates := make([]domain.SupplierCandidate, len(platforms))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range platforms {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			profile, ok := domain.GetPlatformProfile(id)
			if !ok {
				return fmt.Errorf("%w: %s", domain.ErrPlatformNotFound, id)
			}
			candidates[i] = s.buildCandidate(input, profile, primary, keyTerms, category, currency)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := s.matching.Rank(candidates)
	s.logger.Debug("supplier candidates generated",
		zap.String("query", primary),
		zap.Int("platforms", len(ranked)),
	)
	return ranked, nil
}

func (s *SupplierService) buildCandidate(
	input domain.SupplierSearchInput,
	profile domain.PlatformProfile,
	query string,
	keyTerms int,
	category, currency string,
) domain.SupplierCandidate {
	estimate := input.Price.Mul(decimal.NewFromFloat(profile.PriceMultiplier)).Round(2)
	estimateRange := domain.PriceRange{
		Min: estimate.Mul(rangeLowFactor).Round(2),
		Max: estimate.Mul(rangeHighFactor).Round(2),
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(profile.ID.String()+"|"+query+"|"+input.Price.String()))

	return domain.SupplierCandidate{
		ID:                  id.String(),
		Platform:            profile.ID,
		Query:               query,
		SearchURL:           strings.ReplaceAll(profile.SearchURLTemplate, domain.SearchQueryPlaceholder, url.QueryEscape(query)),
		EstimatedPrice:      estimate,
		EstimatedPriceRange: estimateRange,
		Currency:            currency,
		Shipping:            profile.ShippingRange,
		MOQ:                 profile.MinimumOrderQuantity,
		Reliability:         profile.Reliability,
		Confidence:          s.matching.Confidence(keyTerms, category, len(input.Images) > 0, profile),
		PotentialMargin:     s.matching.Margin(input.Price, estimate),
		Recommendations:     s.matching.Recommendations(profile, category),
	}
}

// lookup returns a cached result that is younger than the TTL
func (s *SupplierService) lookup(ctx context.Context, key string) ([]domain.SupplierCandidate, bool) {
	if s.cache == nil {
		return nil, false
	}

	hit := false
	defer func() {
		if s.observer != nil {
			s.observer.ObserveCacheLookup(hit)
		}
	}()

	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var entry domain.CachedResult[[]domain.SupplierCandidate]
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if s.clock().Sub(entry.CreatedAt) >= s.cacheTTL {
		return nil, false
	}

	hit = true
	return entry.Value, true
}

// store overwrites the cache entry; failures are logged, not returned
func (s *SupplierService) store(ctx context.Context, key string, candidates []domain.SupplierCandidate) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(domain.CachedResult[[]domain.SupplierCandidate]{
		Value:     candidates,
		CreatedAt: s.clock(),
	})
	if err != nil {
		s.logger.Warn("failed to encode cache entry", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}
