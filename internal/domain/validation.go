package domain

// FieldName names a product field in validation output
type FieldName string

const (
	FieldTitle       FieldName = "title"
	FieldPrice       FieldName = "price"
	FieldSourceURL   FieldName = "sourceUrl"
	FieldDescription FieldName = "description"
	FieldImages      FieldName = "images"
	FieldBrand       FieldName = "brand"
	FieldCategory    FieldName = "category"
	FieldVideos      FieldName = "videos"
	FieldVariants    FieldName = "variants"
	FieldReviews     FieldName = "reviews"
	FieldStock       FieldName = "stock"
)

// ValidationResult describes whether a product can be imported and how complete it is
type ValidationResult struct {
	CanImport     bool        `json:"canImport"`
	Score         int         `json:"score"` // 0-100
	Errors        []string    `json:"errors"`
	Warnings      []string    `json:"warnings"`
	MissingFields []FieldName `json:"missingFields"`
}
