// Package query compiles a validated product query into a backend-agnostic
// descriptor: a squirrel predicate conjunction plus sort and pagination.
package query

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/phenrril/shopfeed/internal/domain"
)

// textSearchExpr must match the expression the GIN index in app.Migrate is
// built over, otherwise the planner falls back to a sequential scan.
const textSearchExpr = "to_tsvector('simple', coalesce(title,'') || ' ' || coalesce(vendor,'') || ' ' || coalesce(tags,''))"

var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"publishedAt": "published_at",
	"minPrice":    "price_range_min",
	"maxPrice":    "price_range_max",
}

type SortField struct {
	Column string
	Desc   bool
}

type Descriptor struct {
	Where  sq.And
	Sort   []SortField
	Limit  int
	Offset int
}

// Compile turns a ProductQuery into a Descriptor. All present filter values
// become mandatory predicates joined by AND; when no status is requested,
// soft-deleted records are filtered out by default.
func Compile(q domain.ProductQuery) Descriptor {
	f := q.Filter
	where := sq.And{}

	if f.Text != "" {
		where = append(where, sq.Expr(textSearchExpr+" @@ plainto_tsquery('simple', ?)", f.Text))
	}
	if f.MinPrice != nil {
		where = append(where, sq.GtOrEq{"price_range_min": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		where = append(where, sq.LtOrEq{"price_range_max": *f.MaxPrice})
	}
	if f.Status != nil {
		where = append(where, sq.Eq{"status": string(*f.Status)})
	} else {
		where = append(where, sq.Eq{"status": string(domain.StatusPublished)})
	}

	dateBounds := []struct {
		column     string
		start, end interface{}
	}{
		{"created_at", deref(f.CreatedAtStart), deref(f.CreatedAtEnd)},
		{"published_at", deref(f.PublishedAtStart), deref(f.PublishedAtEnd)},
		{"updated_at", deref(f.UpdatedAtStart), deref(f.UpdatedAtEnd)},
	}
	for _, b := range dateBounds {
		if b.start != nil {
			where = append(where, sq.GtOrEq{b.column: b.start})
		}
		if b.end != nil {
			where = append(where, sq.LtOrEq{b.column: b.end})
		}
	}

	sort := make([]SortField, 0, len(q.Sort))
	for _, s := range q.Sort {
		if col, ok := sortColumns[s.Field]; ok {
			sort = append(sort, SortField{Column: col, Desc: s.Desc})
		}
	}

	return Descriptor{
		Where:  where,
		Sort:   sort,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	}
}

func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// Paginate computes the page count and has-more flag for a filtered total.
func Paginate(total int64, page, limit int) (numPages int, hasMore bool) {
	if limit <= 0 {
		return 0, false
	}
	numPages = int((total + int64(limit) - 1) / int64(limit))
	return numPages, numPages > page
}
