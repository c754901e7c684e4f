package app

import (
	"context"
	"io"

	"github.com/jmoiron/sqlx"
	"github.com/supplylens/backend/config"
	httpDelivery "github.com/supplylens/backend/internal/delivery/http"
	"github.com/supplylens/backend/internal/domain"
	"github.com/supplylens/backend/internal/infrastructure/browser"
	"github.com/supplylens/backend/internal/infrastructure/cache"
	"github.com/supplylens/backend/internal/infrastructure/fetch"
	"github.com/supplylens/backend/internal/infrastructure/metrics"
	"github.com/supplylens/backend/internal/infrastructure/persistence"
	"github.com/supplylens/backend/internal/infrastructure/scrapesvc"
	"github.com/supplylens/backend/internal/usecase"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is overridden at build time with -ldflags "-X .../internal/app.Version=..."
var Version = "dev"

// New builds the application graph. Constructors run lazily, so a command
// only opens the backends its options depend on.
func New(conf *config.Config, log *zap.Logger, opts ...fx.Option) *fx.App {
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Supply(conf, log),
		fx.Provide(
			metrics.New,
			newCache,
			newDatabase,
			newProductRepository,
			newFetcher,
			newRenderer,
			newStrategies,
			newExtractionService,
			newSupplierService,
			newHandler,
		),
		fx.Options(opts...),
	)
}

// Invoke builds the graph and runs funcs once every dependency is resolved
func Invoke(conf *config.Config, log *zap.Logger, funcs ...any) *fx.App {
	return New(conf, log, fx.Invoke(funcs...))
}

func newCache(lc fx.Lifecycle, conf *config.Config, log *zap.Logger) (domain.CacheRepository, error) {
	c, err := cache.New(cache.Config{
		Type:             conf.Cache.Type,
		RedisURL:         conf.Cache.RedisURL,
		KeyPrefix:        conf.Cache.KeyPrefix,
		FallbackToMemory: conf.Cache.FallbackToMemory,
	}, log.Named("cache"))
	if err != nil {
		return nil, err
	}
	if closer, ok := c.(io.Closer); ok {
		lc.Append(fx.StopHook(closer.Close))
	}
	return c, nil
}

func newDatabase(lc fx.Lifecycle, conf *config.Config, log *zap.Logger) (*sqlx.DB, error) {
	db, err := persistence.Open(context.Background(), conf.Database.Driver, conf.Database.DSN)
	if err != nil {
		return nil, err
	}
	log.Info("database ready", zap.String("driver", conf.Database.Driver))
	lc.Append(fx.StopHook(db.Close))
	return db, nil
}

func newProductRepository(db *sqlx.DB) domain.ProductRepository {
	return persistence.NewProductRepository(db)
}

func newFetcher(conf *config.Config, log *zap.Logger) domain.PageFetcher {
	return fetch.NewHTTPFetcher(fetch.Config{
		Timeout:        conf.Fetch.Timeout,
		UserAgent:      conf.Fetch.UserAgent,
		AcceptLanguage: conf.Fetch.AcceptLanguage,
		MaxBodyBytes:   conf.Fetch.MaxBodyBytes,
	}, log)
}

// newRenderer returns a nil Renderer when rich rendering is not configured;
// the render strategy then reports itself as skipped.
func newRenderer(lc fx.Lifecycle, conf *config.Config, log *zap.Logger) domain.Renderer {
	switch conf.Scrape.Renderer {
	case config.RendererService:
		client := scrapesvc.NewClient(scrapesvc.Config{
			APIKey:        conf.Scrape.APIKey,
			BaseURL:       conf.Scrape.BaseURL,
			Timeout:       conf.Scrape.Timeout,
			RatePerSecond: conf.Scrape.RatePerSecond,
			Burst:         conf.Scrape.Burst,
			WaitFor:       conf.Scrape.WaitFor,
		}, log)
		if client == nil {
			log.Warn("scrape service API key not set, rich rendering disabled")
			return nil
		}
		return client
	case config.RendererBrowser:
		r := browser.NewRenderer(browser.Config{Bin: conf.Scrape.BrowserBin}, log)
		lc.Append(fx.StopHook(r.Close))
		return r
	default:
		return nil
	}
}

func newStrategies(renderer domain.Renderer) []usecase.Strategy {
	return []usecase.Strategy{
		usecase.NewRenderStrategy(renderer),
		usecase.NewStructuredDataStrategy(),
		usecase.NewMetaTagStrategy(),
	}
}

func newExtractionService(
	strategies []usecase.Strategy,
	fetcher domain.PageFetcher,
	products domain.ProductRepository,
	log *zap.Logger,
	conf *config.Config,
	m *metrics.Metrics,
) *usecase.ExtractionService {
	return usecase.NewExtractionService(strategies, fetcher, products, log, usecase.ExtractionServiceConfig{
		StrategyTimeout: conf.Extraction.StrategyTimeout,
		Observer:        m,
	})
}

func newSupplierService(
	c domain.CacheRepository,
	log *zap.Logger,
	conf *config.Config,
	m *metrics.Metrics,
) *usecase.SupplierService {
	return usecase.NewSupplierService(c, log, usecase.SupplierServiceConfig{
		CacheTTL:     conf.Cache.TTL,
		MaxPlatforms: conf.Suppliers.MaxPlatforms,
		Weights:      usecase.DefaultRankingWeights(),
		Observer:     m,
	})
}

func newHandler(extraction *usecase.ExtractionService, suppliers *usecase.SupplierService) *httpDelivery.Handler {
	return httpDelivery.NewHandler(extraction, suppliers, Version)
}
