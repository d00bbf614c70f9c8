package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/phenrril/shopfeed/internal/domain"
)

const validPayload = `{
	"id": 123,
	"title": "Blue Mug",
	"vendor": "Acme",
	"product_type": "Kitchen",
	"handle": "blue-mug",
	"created_at": "2024-01-02T10:00:00-03:00",
	"updated_at": "2024-02-01T09:30:00-03:00",
	"published_at": "2024-01-03T00:00:00-03:00",
	"template_suffix": null,
	"published_scope": "web",
	"tags": "mug, blue",
	"variants": [
		{
			"id": 1,
			"product_id": 123,
			"title": "Default",
			"price": "19.99",
			"sku": "MUG-1",
			"position": 1,
			"compare_at_price": null,
			"fulfillment_service": "manual",
			"inventory_management": null,
			"option1": "Default",
			"option2": null,
			"option3": null,
			"created_at": "2024-01-02T10:00:00-03:00",
			"updated_at": "2024-02-01T09:30:00-03:00",
			"taxable": true,
			"barcode": null,
			"grams": 300,
			"image_id": null,
			"weight": 0.3,
			"weight_unit": "kg",
			"requires_shipping": true,
			"price_currency": "ARS",
			"compare_at_price_currency": null
		}
	],
	"images": [
		{
			"id": 9,
			"product_id": 123,
			"position": 1,
			"created_at": "2024-01-02T10:00:00-03:00",
			"updated_at": "2024-02-01T09:30:00-03:00",
			"alt": null,
			"width": 800,
			"height": 600,
			"src": "https://cdn.shopify.com/mug.jpg",
			"variant_ids": [1]
		}
	],
	"image": {
		"id": 9,
		"product_id": 123,
		"position": 1,
		"created_at": "2024-01-02T10:00:00-03:00",
		"updated_at": "2024-02-01T09:30:00-03:00",
		"alt": null,
		"width": 800,
		"height": 600,
		"src": "https://cdn.shopify.com/mug.jpg",
		"variant_ids": [1]
	}
}`

func TestValidateProductValid(t *testing.T) {
	p, err := ValidateProduct(json.RawMessage(validPayload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 123 || p.Title != "Blue Mug" || p.Vendor != "Acme" {
		t.Fatalf("wrong product fields: %+v", p)
	}
	if len(p.Variants) != 1 || p.Variants[0].Price != "19.99" {
		t.Fatalf("wrong variants: %+v", p.Variants)
	}
	if len(p.Images) != 1 || p.Image.ID != 9 {
		t.Fatalf("wrong images: %+v %+v", p.Images, p.Image)
	}
	if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() || p.PublishedAt.IsZero() {
		t.Fatal("timestamps not parsed")
	}
}

func TestValidateProductCollectsAllFailures(t *testing.T) {
	payload := mutate(t, validPayload, func(m map[string]any) {
		delete(m, "title")
		delete(m, "vendor")
		m["created_at"] = "not-a-date"
	})

	_, err := ValidateProduct(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T", err)
	}
	if len(verr.Fields) != 3 {
		t.Fatalf("want 3 failures, got %d: %v", len(verr.Fields), verr)
	}
	assertFailure(t, verr, "title", "required")
	assertFailure(t, verr, "vendor", "required")
	assertFailure(t, verr, "created_at", "invalid date")
}

func TestValidateProductVariantPaths(t *testing.T) {
	payload := mutate(t, validPayload, func(m map[string]any) {
		v := m["variants"].([]any)[0].(map[string]any)
		v["price"] = "free"
	})
	_, err := ValidateProduct(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T", err)
	}
	assertFailure(t, verr, "variants.0.price", "must be a decimal number")
}

func TestValidateProductNegativePrice(t *testing.T) {
	payload := mutate(t, validPayload, func(m map[string]any) {
		v := m["variants"].([]any)[0].(map[string]any)
		v["price"] = "-5.00"
	})
	_, err := ValidateProduct(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T", err)
	}
	assertFailure(t, verr, "variants.0.price", "must not be negative")
}

func TestValidateProductMissingCollections(t *testing.T) {
	payload := mutate(t, validPayload, func(m map[string]any) {
		delete(m, "variants")
		delete(m, "images")
		delete(m, "image")
	})
	_, err := ValidateProduct(payload)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T", err)
	}
	assertFailure(t, verr, "variants", "required")
	assertFailure(t, verr, "images", "required")
	assertFailure(t, verr, "image", "required")
}

func TestValidateProductBadJSON(t *testing.T) {
	_, err := ValidateProduct(json.RawMessage(`{"id":`))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %T", err)
	}
}

func TestValidateProductAcceptsDateOnly(t *testing.T) {
	payload := mutate(t, validPayload, func(m map[string]any) {
		m["published_at"] = "2024-01-03"
	})
	p, err := ValidateProduct(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PublishedAt.IsZero() {
		t.Fatal("published_at not parsed")
	}

	// A domain concern, but it belongs with payload fixtures: the stored
	// range must come from the variant prices.
	pr := domain.CalculatePriceRange(p.Variants)
	if pr.Min != 19.99 || pr.Max != 19.99 {
		t.Fatalf("unexpected price range: %+v", pr)
	}
}

func mutate(t *testing.T, payload string, fn func(map[string]any)) json.RawMessage {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	fn(m)
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return out
}

func assertFailure(t *testing.T, verr *ValidationError, path, message string) {
	t.Helper()
	for _, f := range verr.Fields {
		if f.Path == path && f.Message == message {
			return
		}
	}
	t.Fatalf("no failure %q/%q in %v", path, message, verr.Fields)
}
