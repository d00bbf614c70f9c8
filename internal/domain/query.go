package domain

import (
	"context"
	"time"
)

// ProductFilter carries the validated filter values of one request. Nil
// pointers mean "not provided".
type ProductFilter struct {
	Text             string
	MinPrice         *float64
	MaxPrice         *float64
	Status           *ProductStatus
	CreatedAtStart   *time.Time
	CreatedAtEnd     *time.Time
	PublishedAtStart *time.Time
	PublishedAtEnd   *time.Time
	UpdatedAtStart   *time.Time
	UpdatedAtEnd     *time.Time
}

// SortKey is one entry of a compound sort; earlier keys take precedence.
type SortKey struct {
	Field string
	Desc  bool
}

type ProductQuery struct {
	Page   int
	Limit  int
	Sort   []SortKey
	Filter ProductFilter
}

type ProductPage struct {
	Items    []Product
	Total    int64
	NumPages int
	HasMore  bool
}

type ProductRepo interface {
	Upsert(ctx context.Context, p *Product) (*Product, error)
	UpdateStatus(ctx context.Context, url string, status ProductStatus) (*Product, error)
	FindAll(ctx context.Context, q ProductQuery) (*ProductPage, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
}
