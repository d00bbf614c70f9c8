package usecase

import (
	"context"

	"github.com/phenrril/shopfeed/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) FindAll(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	return uc.Products.FindAll(ctx, q)
}
