package postgres

import (
	"testing"

	"github.com/phenrril/shopfeed/internal/domain"
)

func TestApplyOverwrite(t *testing.T) {
	p := &domain.Product{
		Status:     domain.StatusDeleted,
		PriceRange: domain.PriceRange{Min: 1, Max: 2},
		Variants: []domain.Variant{
			{Price: "40.00"},
			{Price: "15.00"},
			{Price: "not-a-price"},
		},
	}

	applyOverwrite(p)

	if p.Status != domain.StatusPublished {
		t.Fatalf("overwrite must re-publish the record, got %v", p.Status)
	}
	if p.PriceRange != (domain.PriceRange{Min: 15, Max: 40}) {
		t.Fatalf("price range not recomputed from variants: %+v", p.PriceRange)
	}
}

func TestApplyOverwriteNoUsablePrices(t *testing.T) {
	p := &domain.Product{
		PriceRange: domain.PriceRange{Min: 9, Max: 9},
		Variants:   []domain.Variant{{Price: "n/a"}},
	}
	applyOverwrite(p)
	if p.PriceRange != (domain.PriceRange{}) {
		t.Fatalf("stale range must not survive: %+v", p.PriceRange)
	}
}
