package domain

import (
	"math"
	"strconv"
	"time"
)

type ProductStatus string

const (
	StatusPublished ProductStatus = "PUBLISHED"
	StatusDeleted   ProductStatus = "DELETED"
)

// Product is a catalog entry mirrored from an external Shopify storefront.
// IDs come from upstream, so primary keys are not auto-incremented, and the
// created/updated timestamps are upstream values that gorm must not manage.
type Product struct {
	ID             int64          `gorm:"primaryKey;autoIncrement:false" json:"id"`
	URL            string         `gorm:"uniqueIndex;size:255" json:"url"`
	Title          string         `gorm:"size:255" json:"title"`
	Vendor         string         `gorm:"size:180" json:"vendor"`
	ProductType    string         `gorm:"size:180" json:"product_type"`
	Handle         string         `gorm:"size:255" json:"handle"`
	Status         ProductStatus  `gorm:"type:varchar(10);default:'PUBLISHED';index" json:"status"`
	CreatedAt      time.Time      `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime:false;index" json:"updated_at"`
	PublishedAt    time.Time      `gorm:"index" json:"published_at"`
	TemplateSuffix *string        `gorm:"size:100" json:"template_suffix"`
	PublishedScope string         `gorm:"size:60" json:"published_scope"`
	Tags           string         `gorm:"type:text" json:"tags"`
	Variants       []Variant      `json:"variants"`
	Images         []ProductImage `json:"images"`
	Image          ProductImage   `gorm:"type:jsonb;serializer:json" json:"image"`
	PriceRange     PriceRange     `gorm:"embedded;embeddedPrefix:price_range_" json:"price_range"`
}

type Variant struct {
	ID                     int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProductID              int64     `gorm:"index" json:"product_id"`
	Title                  string    `gorm:"size:255" json:"title"`
	Price                  string    `gorm:"size:30" json:"price"`
	CompareAtPrice         *string   `gorm:"size:30" json:"compare_at_price"`
	PriceCurrency          string    `gorm:"size:10" json:"price_currency"`
	CompareAtPriceCurrency *string   `gorm:"size:10" json:"compare_at_price_currency"`
	SKU                    *string   `gorm:"size:120" json:"sku"`
	Position               *int      `json:"position"`
	Option1                *string   `gorm:"size:255" json:"option1"`
	Option2                *string   `gorm:"size:255" json:"option2"`
	Option3                *string   `gorm:"size:255" json:"option3"`
	FulfillmentService     *string   `gorm:"size:60" json:"fulfillment_service"`
	InventoryManagement    *string   `gorm:"size:60" json:"inventory_management"`
	Taxable                bool      `json:"taxable"`
	Barcode                *string   `gorm:"size:60" json:"barcode"`
	Grams                  int       `json:"grams"`
	Weight                 float64   `gorm:"type:decimal(10,3)" json:"weight"`
	WeightUnit             string    `gorm:"size:10" json:"weight_unit"`
	RequiresShipping       bool      `json:"requires_shipping"`
	ImageID                *int64    `json:"image_id"`
	CreatedAt              time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt              time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

type ProductImage struct {
	ID         int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	ProductID  int64     `gorm:"index" json:"product_id"`
	Position   int       `json:"position"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Src        string    `gorm:"size:512" json:"src"`
	Alt        *string   `gorm:"size:255" json:"alt"`
	VariantIDs []int64   `gorm:"type:jsonb;serializer:json" json:"variant_ids"`
	CreatedAt  time.Time `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

// PriceRange is derived from the variant prices on every write; upstream
// values are never trusted for it.
type PriceRange struct {
	Min float64 `gorm:"type:decimal(12,2)" json:"min"`
	Max float64 `gorm:"type:decimal(12,2)" json:"max"`
}

// Supersedes reports whether an incoming upstream timestamp should replace
// the stored one. Only a strictly newer update wins; an equal timestamp is
// unchanged upstream data and must be a no-op.
func Supersedes(incoming, stored time.Time) bool {
	return incoming.After(stored)
}

// CalculatePriceRange reduces the variant prices to their min and max.
// Prices that do not parse are skipped; with no usable price the range is
// zero on both ends.
func CalculatePriceRange(variants []Variant) PriceRange {
	min, max := math.Inf(1), math.Inf(-1)
	for _, v := range variants {
		p, err := strconv.ParseFloat(v.Price, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	if math.IsInf(min, 1) {
		return PriceRange{}
	}
	return PriceRange{Min: min, Max: max}
}
