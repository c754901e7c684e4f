package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/supplylens/backend/internal/domain"
	"go.uber.org/zap"
)

// Strategy outcomes reported to the observer
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeEmpty   = "empty"
	OutcomeFailed  = "failed"
	OutcomeTimeout = "timeout"
)

// ExtractionObserver receives one call per strategy attempt
type ExtractionObserver interface {
	ObserveStrategy(strategy, outcome string, elapsed time.Duration)
}

// ExtractionServiceConfig holds configuration for the extraction service
type ExtractionServiceConfig struct {
	StrategyTimeout time.Duration
	Observer        ExtractionObserver
}

// ExtractionService drives the strategy chain and imports validated products
type ExtractionService struct {
	strategies      []Strategy
	fetcher         domain.PageFetcher
	products        domain.ProductRepository
	validator       *CompletenessValidator
	observer        ExtractionObserver
	logger          *zap.Logger
	strategyTimeout time.Duration
}

// NewExtractionService creates an extraction service. Strategies are tried in
// the given order.
func NewExtractionService(
	strategies []Strategy,
	fetcher domain.PageFetcher,
	products domain.ProductRepository,
	logger *zap.Logger,
	config ExtractionServiceConfig,
) *ExtractionService {
	timeout := config.StrategyTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ExtractionService{
		strategies:      strategies,
		fetcher:         fetcher,
		products:        products,
		validator:       NewCompletenessValidator(),
		observer:        config.Observer,
		logger:          logger.Named("extraction"),
		strategyTimeout: timeout,
	}
}

// Extract turns a product URL into a normalized product.
// Flow: validate URL -> detect platform -> strategies in order -> normalize
func (s *ExtractionService) Extract(ctx context.Context, rawURL string) (*domain.ExtractedProduct, error) {
	pageURL, err := normalizeProductURL(rawURL)
	if err != nil {
		return nil, err
	}

	platform := DetectPlatform(pageURL)
	page := NewPageSource(s.fetcher, pageURL)
	log := s.logger.With(zap.String("url", pageURL), zap.String("platform", platform.String()))

	for _, strategy := range s.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		product, outcome, err := s.runStrategy(ctx, strategy, pageURL, page)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if outcome != OutcomeSuccess {
			log.Debug("strategy yielded nothing",
				zap.String("strategy", strategy.Name()),
				zap.String("outcome", outcome),
				zap.Error(err),
			)
			continue
		}

		s.normalize(product, pageURL, platform)
		log.Info("product extracted",
			zap.String("strategy", strategy.Name()),
			zap.Int("images", len(product.Images)),
		)
		return product, nil
	}

	log.Warn("all extraction strategies failed")
	return nil, domain.ErrExtractionFailed
}

func (s *ExtractionService) runStrategy(
	ctx context.Context,
	strategy Strategy,
	pageURL string,
	page *PageSource,
) (*domain.ExtractedProduct, string, error) {
	sctx, cancel := context.WithTimeout(ctx, s.strategyTimeout)
	defer cancel()

	start := time.Now()
	product, err := strategy.Extract(sctx, pageURL, page)

	outcome := OutcomeSuccess
	switch {
	case errors.Is(err, domain.ErrStrategySkipped):
		outcome = OutcomeSkipped
	case errors.Is(err, context.DeadlineExceeded):
		outcome = OutcomeTimeout
	case err != nil:
		outcome = OutcomeFailed
	case product == nil || strings.TrimSpace(product.Title) == "":
		outcome = OutcomeEmpty
	}

	if s.observer != nil {
		s.observer.ObserveStrategy(strategy.Name(), outcome, time.Since(start))
	}
	return product, outcome, err
}

// normalize applies field caps and fills derived fields
func (s *ExtractionService) normalize(p *domain.ExtractedProduct, pageURL string, platform domain.PlatformID) {
	p.Title = truncateRunes(strings.TrimSpace(p.Title), domain.MaxTitleLength)
	p.Description = truncateRunes(strings.TrimSpace(p.Description), domain.MaxDescriptionLength)
	p.Price = clampPrice(p.Price)
	p.Images = collectImages(domain.MaxImages, p.Images...)
	p.Videos = dedupeStrings(p.Videos, domain.MaxVideos)
	if len(p.Variants) > domain.MaxVariants {
		p.Variants = p.Variants[:domain.MaxVariants]
	}
	if len(p.Reviews) > domain.MaxReviews {
		p.Reviews = p.Reviews[:domain.MaxReviews]
	}
	for i := range p.Reviews {
		p.Reviews[i].Rating = clampInt(p.Reviews[i].Rating, 1, 5)
	}

	p.SourceURL = pageURL
	p.Platform = platform
	if p.ExternalID == "" {
		p.ExternalID = ExtractProductID(pageURL, platform)
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = ClassifyCategory(p.Title)
	}
	if p.Currency == "" {
		p.Currency = defaultCurrency(platform)
	}
}

// Validate scores a product's completeness
func (s *ExtractionService) Validate(p *domain.ExtractedProduct) domain.ValidationResult {
	return s.validator.Validate(p)
}

// Import extracts, validates and stores a product. A product that fails
// validation is returned without being stored. Storage errors wrap
// domain.ErrPersistence and still carry the extracted product.
func (s *ExtractionService) Import(ctx context.Context, rawURL string) (*domain.ImportResult, error) {
	product, err := s.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	result := &domain.ImportResult{
		Product:    product,
		Validation: s.validator.Validate(product),
	}
	if !result.Validation.CanImport {
		return result, nil
	}

	if s.products == nil {
		return result, fmt.Errorf("%w: no product repository configured", domain.ErrPersistence)
	}

	id, err := s.products.Save(ctx, product)
	if err != nil {
		s.logger.Error("failed to store product", zap.String("url", product.SourceURL), zap.Error(err))
		if errors.Is(err, domain.ErrPersistence) {
			return result, err
		}
		return result, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	result.ID = id
	return result, nil
}

// GetProduct returns a previously imported product
func (s *ExtractionService) GetProduct(ctx context.Context, id string) (*domain.ExtractedProduct, error) {
	if s.products == nil || strings.TrimSpace(id) == "" {
		return nil, domain.ErrProductNotFound
	}
	return s.products.GetByID(ctx, id)
}

func normalizeProductURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", domain.ErrInvalidURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: missing host", domain.ErrInvalidURL)
	}
	return u.String(), nil
}

func defaultCurrency(platform domain.PlatformID) string {
	if platform == domain.PlatformAliExpress {
		return "USD"
	}
	return "EUR"
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func dedupeStrings(in []string, max int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == max {
			break
		}
	}
	return out
}
