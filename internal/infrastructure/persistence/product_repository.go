package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/supplylens/backend/internal/domain"
)

// productRow maps the imported_products table
type productRow struct {
	ID           string        `db:"id"`
	Title        string        `db:"title"`
	Description  string        `db:"description"`
	Price        string        `db:"price"`
	Currency     string        `db:"currency"`
	ImagesJSON   string        `db:"images_json"`
	VideosJSON   string        `db:"videos_json"`
	VariantsJSON string        `db:"variants_json"`
	ReviewsJSON  string        `db:"reviews_json"`
	Brand        string        `db:"brand"`
	Category     string        `db:"category"`
	SKU          string        `db:"sku"`
	Stock        sql.NullInt64 `db:"stock"`
	SourceURL    string        `db:"source_url"`
	Platform     string        `db:"platform"`
	ExternalID   string        `db:"external_id"`
	CreatedAt    string        `db:"created_at"`
}

const productColumns = `id, title, description, price, currency, images_json, videos_json,
  variants_json, reviews_json, brand, category, sku, stock, source_url, platform, external_id, created_at`

// ProductRepository stores imported products with sqlx
type ProductRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewProductRepository creates a product repository on an open database
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db, now: time.Now}
}

// Save inserts a product and returns its generated id
func (r *ProductRepository) Save(ctx context.Context, p *domain.ExtractedProduct) (string, error) {
	if p == nil {
		return "", fmt.Errorf("%w: nil product", domain.ErrPersistence)
	}

	row, err := toRow(p)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	row.ID = uuid.NewString()
	row.CreatedAt = r.now().UTC().Format(time.RFC3339)

	query := `INSERT INTO imported_products (` + productColumns + `) VALUES (
  :id, :title, :description, :price, :currency, :images_json, :videos_json,
  :variants_json, :reviews_json, :brand, :category, :sku, :stock, :source_url, :platform, :external_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return row.ID, nil
}

// GetByID loads a stored product
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.ExtractedProduct, error) {
	var row productRow
	query := r.db.Rebind(`SELECT ` + productColumns + ` FROM imported_products WHERE id = ?`)
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	return fromRow(row)
}

func toRow(p *domain.ExtractedProduct) (productRow, error) {
	row := productRow{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.String(),
		Currency:    p.Currency,
		Brand:       p.Brand,
		Category:    p.Category,
		SKU:         p.SKU,
		SourceURL:   p.SourceURL,
		Platform:    p.Platform.String(),
		ExternalID:  p.ExternalID,
	}
	if p.Stock != nil {
		row.Stock = sql.NullInt64{Int64: int64(*p.Stock), Valid: true}
	}

	var err error
	if row.ImagesJSON, err = encodeList(p.Images); err != nil {
		return row, err
	}
	if row.VideosJSON, err = encodeList(p.Videos); err != nil {
		return row, err
	}
	if row.VariantsJSON, err = encodeList(p.Variants); err != nil {
		return row, err
	}
	if row.ReviewsJSON, err = encodeList(p.Reviews); err != nil {
		return row, err
	}
	return row, nil
}

func fromRow(row productRow) (*domain.ExtractedProduct, error) {
	price, err := decimal.NewFromString(row.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: bad price %q", domain.ErrPersistence, row.Price)
	}

	p := &domain.ExtractedProduct{
		Title:       row.Title,
		Description: row.Description,
		Price:       price,
		Currency:    row.Currency,
		Brand:       row.Brand,
		Category:    row.Category,
		SKU:         row.SKU,
		SourceURL:   row.SourceURL,
		Platform:    domain.PlatformID(row.Platform),
		ExternalID:  row.ExternalID,
	}
	if row.Stock.Valid {
		stock := int(row.Stock.Int64)
		p.Stock = &stock
	}

	for _, col := range []struct {
		raw string
		dst any
	}{
		{row.ImagesJSON, &p.Images},
		{row.VideosJSON, &p.Videos},
		{row.VariantsJSON, &p.Variants},
		{row.ReviewsJSON, &p.Reviews},
	} {
		if err := json.Unmarshal([]byte(col.raw), col.dst); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
	}
	return p, nil
}

func encodeList[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
