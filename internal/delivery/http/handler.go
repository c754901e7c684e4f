package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/supplylens/backend/internal/domain"
	"github.com/supplylens/backend/internal/infrastructure/logger"
	"github.com/supplylens/backend/internal/usecase"
	"go.uber.org/zap"
)

// ServiceName is reported by the health check
const ServiceName = "supplylens-backend"

// ProductService extracts, validates and imports product pages
type ProductService interface {
	Extract(ctx context.Context, rawURL string) (*domain.ExtractedProduct, error)
	Import(ctx context.Context, rawURL string) (*domain.ImportResult, error)
	Validate(p *domain.ExtractedProduct) domain.ValidationResult
	GetProduct(ctx context.Context, id string) (*domain.ExtractedProduct, error)
}

// SupplierFinder ranks supplier candidates for a product
type SupplierFinder interface {
	DetectSuppliers(ctx context.Context, input domain.SupplierSearchInput, opts domain.SearchOptions) ([]domain.SupplierCandidate, error)
	Queries(input domain.SupplierSearchInput) []domain.SearchQuery
	ClearCache(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	products  ProductService
	suppliers SupplierFinder
	version   string
}

// NewHandler creates a new HTTP handler
func NewHandler(products ProductService, suppliers SupplierFinder, version string) *Handler {
	if version == "" {
		version = "dev"
	}
	return &Handler{
		products:  products,
		suppliers: suppliers,
		version:   version,
	}
}

type productURLRequest struct {
	URL string `json:"url" binding:"required"`
}

type validateRequest struct {
	Product *domain.ExtractedProduct `json:"product" binding:"required"`
}

type supplierSearchRequest struct {
	Title                   string            `json:"title" binding:"required,max=500"`
	Price                   decimal.Decimal   `json:"price"`
	Currency                string            `json:"currency" binding:"omitempty,len=3"`
	Category                string            `json:"category"`
	Brand                   string            `json:"brand"`
	Images                  []string          `json:"images" binding:"max=50"`
	SourcePlatform          domain.PlatformID `json:"sourcePlatform"`
	BypassCache             bool              `json:"bypassCache"`
	AllowRestrictedPlatform bool              `json:"allowRestrictedPlatform"`
}

type extractResponse struct {
	Product    *domain.ExtractedProduct `json:"product"`
	Validation domain.ValidationResult  `json:"validation"`
}

type supplierSearchResponse struct {
	Query      string                     `json:"query"`
	Queries    []domain.SearchQuery       `json:"queries"`
	Candidates []domain.SupplierCandidate `json:"candidates"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
		"version": h.version,
	})
}

// ExtractProduct reads a product page without storing it
func (h *Handler) ExtractProduct(c *gin.Context) {
	var req productURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	product, err := h.products.Extract(c.Request.Context(), req.URL)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, extractResponse{
		Product:    product,
		Validation: h.products.Validate(product),
	})
}

// ImportProduct extracts, validates and stores a product page
func (h *Handler) ImportProduct(c *gin.Context) {
	var req productURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := h.products.Import(c.Request.Context(), req.URL)
	if err != nil {
		if result != nil {
			logger.FromContext(c).Error("import not stored", zap.String("url", req.URL), zap.Error(err))
			c.JSON(statusFor(err), gin.H{
				"error":      messageFor(err),
				"product":    result.Product,
				"validation": result.Validation,
			})
			return
		}
		respondError(c, err)
		return
	}

	if !result.Validation.CanImport {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "product cannot be imported",
			"product":    result.Product,
			"validation": result.Validation,
		})
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetProduct returns a stored product
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.products.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ValidateProduct scores a product supplied by the caller
func (h *Handler) ValidateProduct(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.products.Validate(req.Product))
}

// SearchSuppliers returns ranked supplier candidates for a product
func (h *Handler) SearchSuppliers(c *gin.Context) {
	var req supplierSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	if req.SourcePlatform != "" && !req.SourcePlatform.Valid() {
		respondError(c, domain.ErrInvalidRequest, "unknown source platform")
		return
	}

	input := domain.SupplierSearchInput{
		Title:          req.Title,
		Price:          req.Price,
		Currency:       strings.ToUpper(req.Currency),
		Category:       req.Category,
		Brand:          req.Brand,
		Images:         req.Images,
		SourcePlatform: req.SourcePlatform,
	}
	opts := domain.SearchOptions{
		BypassCache:             req.BypassCache,
		AllowRestrictedPlatform: req.AllowRestrictedPlatform,
	}

	candidates, err := h.suppliers.DetectSuppliers(c.Request.Context(), input, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	queries := h.suppliers.Queries(input)
	c.JSON(http.StatusOK, supplierSearchResponse{
		Query:      usecase.PrimaryQuery(queries, input.Title),
		Queries:    queries,
		Candidates: candidates,
	})
}

// ClearSupplierCache drops every cached supplier result
func (h *Handler) ClearSupplierCache(c *gin.Context) {
	if err := h.suppliers.ClearCache(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListPlatforms returns every supplier platform profile
func (h *Handler) ListPlatforms(c *gin.Context) {
	ids := domain.SupplierPlatforms()
	profiles := make([]domain.PlatformProfile, 0, len(ids))
	for _, id := range ids {
		if p, ok := domain.GetPlatformProfile(id); ok {
			profiles = append(profiles, p)
		}
	}
	c.JSON(http.StatusOK, gin.H{"platforms": profiles})
}

// GetPlatform returns one supplier platform profile
func (h *Handler) GetPlatform(c *gin.Context) {
	profile, ok := domain.GetPlatformProfile(domain.PlatformID(strings.ToLower(c.Param("id"))))
	if !ok {
		respondError(c, domain.ErrPlatformNotFound)
		return
	}
	c.JSON(http.StatusOK, profile)
}
