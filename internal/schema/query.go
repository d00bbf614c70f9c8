package schema

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/phenrril/shopfeed/internal/domain"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// sortKeys is the fixed precedence of compound sorts. url.Values does not
// preserve parameter order, so the composition order is canonical rather
// than request-defined.
var sortKeys = []string{"createdAt", "publishedAt", "minPrice", "maxPrice"}

// ParseQuery validates and coerces the /products query string into a
// ProductQuery. Keys follow the filter[...]/sort[...] bracket convention.
// Structural failures come back as *ValidationError; a request that is
// structurally sound but violates a range constraint comes back as a
// *RangeError scoped to the offending field.
func ParseQuery(values url.Values) (domain.ProductQuery, error) {
	verr := &ValidationError{}
	q := domain.ProductQuery{Page: defaultPage, Limit: defaultLimit}

	if raw := values.Get("page"); raw != "" {
		q.Page = parsePositiveInt(verr, "page", raw)
	}
	if raw := values.Get("limit"); raw != "" {
		q.Limit = parsePositiveInt(verr, "limit", raw)
	}

	sorts := map[string]bool{}
	for key := range values {
		inner, kind := bracketKey(key)
		switch kind {
		case "filter":
			parseFilterKey(verr, &q.Filter, inner, values.Get(key))
		case "sort":
			if !knownSortKey(inner) {
				verr.add("sort."+inner, "unknown sort key")
				continue
			}
			switch values.Get(key) {
			case "asc":
				sorts[inner] = false
			case "desc":
				sorts[inner] = true
			default:
				verr.add("sort."+inner, "must be asc or desc")
			}
		}
	}
	for _, key := range sortKeys {
		if desc, ok := sorts[key]; ok {
			q.Sort = append(q.Sort, domain.SortKey{Field: key, Desc: desc})
		}
	}

	if len(verr.Fields) > 0 {
		return domain.ProductQuery{}, verr
	}
	if rerr := checkRanges(q.Filter); rerr != nil {
		return domain.ProductQuery{}, rerr
	}
	return q, nil
}

// bracketKey splits "filter[minPrice]" into ("minPrice", "filter").
func bracketKey(key string) (inner, kind string) {
	for _, prefix := range []string{"filter[", "sort["} {
		if strings.HasPrefix(key, prefix) && strings.HasSuffix(key, "]") {
			return key[len(prefix) : len(key)-1], strings.TrimSuffix(prefix, "[")
		}
	}
	return "", ""
}

func knownSortKey(key string) bool {
	for _, k := range sortKeys {
		if k == key {
			return true
		}
	}
	return false
}

func parseFilterKey(verr *ValidationError, f *domain.ProductFilter, key, value string) {
	path := "filter." + key
	switch key {
	case "text":
		f.Text = value
	case "minPrice":
		f.MinPrice = parseFloat(verr, path, value)
	case "maxPrice":
		f.MaxPrice = parseFloat(verr, path, value)
	case "status":
		switch domain.ProductStatus(value) {
		case domain.StatusPublished, domain.StatusDeleted:
			st := domain.ProductStatus(value)
			f.Status = &st
		default:
			verr.add(path, "must be PUBLISHED or DELETED")
		}
	case "createdAtStart":
		f.CreatedAtStart = parseFilterDate(verr, path, value)
	case "createdAtEnd":
		f.CreatedAtEnd = parseFilterDate(verr, path, value)
	case "publishedAtStart":
		f.PublishedAtStart = parseFilterDate(verr, path, value)
	case "publishedAtEnd":
		f.PublishedAtEnd = parseFilterDate(verr, path, value)
	case "updatedAtStart":
		f.UpdatedAtStart = parseFilterDate(verr, path, value)
	case "updatedAtEnd":
		f.UpdatedAtEnd = parseFilterDate(verr, path, value)
	default:
		verr.add(path, "unknown filter key")
	}
}

func checkRanges(f domain.ProductFilter) *RangeError {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return &RangeError{Path: "filter.minPrice", Message: "must not be greater than maxPrice"}
	}
	ranges := []struct {
		path       string
		start, end *time.Time
	}{
		{"filter.createdAtStart", f.CreatedAtStart, f.CreatedAtEnd},
		{"filter.publishedAtStart", f.PublishedAtStart, f.PublishedAtEnd},
		{"filter.updatedAtStart", f.UpdatedAtStart, f.UpdatedAtEnd},
	}
	for _, r := range ranges {
		if r.start != nil && r.end != nil && r.start.After(*r.end) {
			return &RangeError{Path: r.path, Message: "must not be after the range end"}
		}
	}
	return nil
}

func parsePositiveInt(verr *ValidationError, path, raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		verr.add(path, "must be a positive integer")
		return 0
	}
	return n
}

func parseFloat(verr *ValidationError, path, raw string) *float64 {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		verr.add(path, "must be a number")
		return nil
	}
	return &n
}

func parseFilterDate(verr *ValidationError, path, raw string) *time.Time {
	t, ok := parseDate(raw)
	if !ok {
		verr.add(path, "invalid date")
		return nil
	}
	return &t
}
