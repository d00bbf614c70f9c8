package schema

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/phenrril/shopfeed/internal/domain"
)

// Raw payload shapes as Shopify serves them. Every field is a pointer so a
// missing key can be told apart from a zero value.

type rawProduct struct {
	ID             *int64       `json:"id"`
	Title          *string      `json:"title"`
	Vendor         *string      `json:"vendor"`
	ProductType    *string      `json:"product_type"`
	Handle         *string      `json:"handle"`
	CreatedAt      *string      `json:"created_at"`
	UpdatedAt      *string      `json:"updated_at"`
	PublishedAt    *string      `json:"published_at"`
	TemplateSuffix *string      `json:"template_suffix"`
	PublishedScope *string      `json:"published_scope"`
	Tags           *string      `json:"tags"`
	Variants       []rawVariant `json:"variants"`
	Images         []rawImage   `json:"images"`
	Image          *rawImage    `json:"image"`
}

type rawVariant struct {
	ID                     *int64   `json:"id"`
	ProductID              *int64   `json:"product_id"`
	Title                  *string  `json:"title"`
	Price                  *string  `json:"price"`
	SKU                    *string  `json:"sku"`
	Position               *int     `json:"position"`
	CompareAtPrice         *string  `json:"compare_at_price"`
	FulfillmentService     *string  `json:"fulfillment_service"`
	InventoryManagement    *string  `json:"inventory_management"`
	Option1                *string  `json:"option1"`
	Option2                *string  `json:"option2"`
	Option3                *string  `json:"option3"`
	CreatedAt              *string  `json:"created_at"`
	UpdatedAt              *string  `json:"updated_at"`
	Taxable                *bool    `json:"taxable"`
	Barcode                *string  `json:"barcode"`
	Grams                  *int     `json:"grams"`
	ImageID                *int64   `json:"image_id"`
	Weight                 *float64 `json:"weight"`
	WeightUnit             *string  `json:"weight_unit"`
	RequiresShipping       *bool    `json:"requires_shipping"`
	PriceCurrency          *string  `json:"price_currency"`
	CompareAtPriceCurrency *string  `json:"compare_at_price_currency"`
}

type rawImage struct {
	ID         *int64  `json:"id"`
	ProductID  *int64  `json:"product_id"`
	Position   *int    `json:"position"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
	Alt        *string `json:"alt"`
	Width      *int    `json:"width"`
	Height     *int    `json:"height"`
	Src        *string `json:"src"`
	VariantIDs []int64 `json:"variant_ids"`
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ValidateProduct coerces and validates one raw product document. All field
// failures are collected before reporting; the returned error, when non-nil,
// is a *ValidationError.
func ValidateProduct(raw json.RawMessage) (*domain.Product, error) {
	verr := &ValidationError{}

	var rp rawProduct
	if err := json.Unmarshal(raw, &rp); err != nil {
		verr.add("", "invalid JSON document")
		return nil, verr
	}

	p := &domain.Product{}

	requireInt64(verr, "id", rp.ID, &p.ID)
	requireString(verr, "title", rp.Title, &p.Title)
	requireString(verr, "vendor", rp.Vendor, &p.Vendor)
	requireString(verr, "product_type", rp.ProductType, &p.ProductType)
	requireString(verr, "handle", rp.Handle, &p.Handle)
	requireString(verr, "published_scope", rp.PublishedScope, &p.PublishedScope)
	requireString(verr, "tags", rp.Tags, &p.Tags)
	requireDate(verr, "created_at", rp.CreatedAt, &p.CreatedAt)
	requireDate(verr, "updated_at", rp.UpdatedAt, &p.UpdatedAt)
	requireDate(verr, "published_at", rp.PublishedAt, &p.PublishedAt)
	p.TemplateSuffix = rp.TemplateSuffix

	if rp.Variants == nil {
		verr.add("variants", "required")
	}
	for i, rv := range rp.Variants {
		p.Variants = append(p.Variants, validateVariant(verr, "variants."+strconv.Itoa(i), rv))
	}

	if rp.Images == nil {
		verr.add("images", "required")
	}
	for i, ri := range rp.Images {
		p.Images = append(p.Images, validateImage(verr, "images."+strconv.Itoa(i), ri))
	}

	if rp.Image == nil {
		verr.add("image", "required")
	} else {
		p.Image = validateImage(verr, "image", *rp.Image)
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return p, nil
}

func validateVariant(verr *ValidationError, path string, rv rawVariant) domain.Variant {
	v := domain.Variant{
		SKU:                    rv.SKU,
		Position:               rv.Position,
		CompareAtPrice:         rv.CompareAtPrice,
		FulfillmentService:     rv.FulfillmentService,
		InventoryManagement:    rv.InventoryManagement,
		Option1:                rv.Option1,
		Option2:                rv.Option2,
		Option3:                rv.Option3,
		Barcode:                rv.Barcode,
		ImageID:                rv.ImageID,
		CompareAtPriceCurrency: rv.CompareAtPriceCurrency,
	}
	requireInt64(verr, path+".id", rv.ID, &v.ID)
	requireInt64(verr, path+".product_id", rv.ProductID, &v.ProductID)
	requireString(verr, path+".title", rv.Title, &v.Title)
	requireString(verr, path+".price_currency", rv.PriceCurrency, &v.PriceCurrency)
	requireString(verr, path+".weight_unit", rv.WeightUnit, &v.WeightUnit)
	requireBool(verr, path+".taxable", rv.Taxable, &v.Taxable)
	requireBool(verr, path+".requires_shipping", rv.RequiresShipping, &v.RequiresShipping)
	requireInt(verr, path+".grams", rv.Grams, &v.Grams)
	requireFloat(verr, path+".weight", rv.Weight, &v.Weight)
	requireDate(verr, path+".created_at", rv.CreatedAt, &v.CreatedAt)
	requireDate(verr, path+".updated_at", rv.UpdatedAt, &v.UpdatedAt)

	if rv.Price == nil {
		verr.add(path+".price", "required")
	} else {
		v.Price = *rv.Price
		n, err := strconv.ParseFloat(v.Price, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			verr.add(path+".price", "must be a decimal number")
		} else if n < 0 {
			verr.add(path+".price", "must not be negative")
		}
	}
	return v
}

func validateImage(verr *ValidationError, path string, ri rawImage) domain.ProductImage {
	img := domain.ProductImage{Alt: ri.Alt, VariantIDs: ri.VariantIDs}
	requireInt64(verr, path+".id", ri.ID, &img.ID)
	requireInt64(verr, path+".product_id", ri.ProductID, &img.ProductID)
	requireInt(verr, path+".position", ri.Position, &img.Position)
	requireInt(verr, path+".width", ri.Width, &img.Width)
	requireInt(verr, path+".height", ri.Height, &img.Height)
	requireString(verr, path+".src", ri.Src, &img.Src)
	requireDate(verr, path+".created_at", ri.CreatedAt, &img.CreatedAt)
	requireDate(verr, path+".updated_at", ri.UpdatedAt, &img.UpdatedAt)
	if ri.VariantIDs == nil {
		verr.add(path+".variant_ids", "required")
	}
	return img
}

func requireString(verr *ValidationError, path string, src *string, dst *string) {
	if src == nil {
		verr.add(path, "required")
		return
	}
	*dst = *src
}

func requireInt64(verr *ValidationError, path string, src *int64, dst *int64) {
	if src == nil {
		verr.add(path, "required")
		return
	}
	*dst = *src
}

func requireInt(verr *ValidationError, path string, src *int, dst *int) {
	if src == nil {
		verr.add(path, "required")
		return
	}
	*dst = *src
}

func requireFloat(verr *ValidationError, path string, src *float64, dst *float64) {
	if src == nil {
		verr.add(path, "required")
		return
	}
	*dst = *src
}

func requireBool(verr *ValidationError, path string, src *bool, dst *bool) {
	if src == nil {
		verr.add(path, "required")
		return
	}
	*dst = *src
}

func requireDate(verr *ValidationError, path string, src *string, dst *time.Time) {
	if src == nil {
		verr.add(path, "required")
		return
	}
	t, ok := parseDate(*src)
	if !ok {
		verr.add(path, "invalid date")
		return
	}
	*dst = t
}
