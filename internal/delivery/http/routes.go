package http

import (
	"github.com/gin-gonic/gin"
	"github.com/supplylens/backend/config"
	"github.com/supplylens/backend/internal/infrastructure/logger"
	"github.com/supplylens/backend/internal/infrastructure/metrics"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router. A nil metrics disables
// request instrumentation and the /metrics endpoint.
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()

	// Global middleware
	router.Use(logger.Recovery(log))
	router.Use(logger.RequestID())
	router.Use(logger.GinMiddleware(log))
	if m != nil {
		router.Use(m.GinMiddleware())
	}
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(NewIPRateLimiter(cfg.RateLimit.PerIP, cfg.RateLimit.Burst)))
	{
		products := v1.Group("/products")
		{
			products.POST("/extract", handler.ExtractProduct)
			products.POST("/import", handler.ImportProduct)
			products.POST("/validate", handler.ValidateProduct)
			products.GET("/:id", handler.GetProduct)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.POST("/search", handler.SearchSuppliers)
			suppliers.DELETE("/cache", handler.ClearSupplierCache)
		}

		platforms := v1.Group("/platforms")
		{
			platforms.GET("", handler.ListPlatforms)
			platforms.GET("/:id", handler.GetPlatform)
		}
	}

	return router
}
