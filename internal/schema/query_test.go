package schema

import (
	"errors"
	"net/url"
	"testing"

	"github.com/phenrril/shopfeed/internal/domain"
)

func TestParseQueryDefaults(t *testing.T) {
	q, err := ParseQuery(url.Values{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 1 || q.Limit != 10 {
		t.Fatalf("want page=1 limit=10, got %d/%d", q.Page, q.Limit)
	}
	if len(q.Sort) != 0 {
		t.Fatalf("want no sort, got %v", q.Sort)
	}
}

func TestParseQueryFilters(t *testing.T) {
	v := url.Values{}
	v.Set("page", "3")
	v.Set("limit", "25")
	v.Set("filter[text]", "mug")
	v.Set("filter[minPrice]", "10.5")
	v.Set("filter[maxPrice]", "99")
	v.Set("filter[status]", "DELETED")
	v.Set("filter[createdAtStart]", "2024-01-01")
	v.Set("filter[createdAtEnd]", "2024-06-30")

	q, err := ParseQuery(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Page != 3 || q.Limit != 25 {
		t.Fatalf("wrong pagination: %d/%d", q.Page, q.Limit)
	}
	f := q.Filter
	if f.Text != "mug" {
		t.Fatalf("wrong text: %q", f.Text)
	}
	if f.MinPrice == nil || *f.MinPrice != 10.5 || f.MaxPrice == nil || *f.MaxPrice != 99 {
		t.Fatalf("wrong prices: %v %v", f.MinPrice, f.MaxPrice)
	}
	if f.Status == nil || *f.Status != domain.StatusDeleted {
		t.Fatalf("wrong status: %v", f.Status)
	}
	if f.CreatedAtStart == nil || f.CreatedAtEnd == nil {
		t.Fatal("date bounds not parsed")
	}
}

func TestParseQuerySortOrder(t *testing.T) {
	v := url.Values{}
	v.Set("sort[minPrice]", "desc")
	v.Set("sort[createdAt]", "asc")

	q, err := ParseQuery(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Composition order is canonical, not request order.
	want := []domain.SortKey{
		{Field: "createdAt", Desc: false},
		{Field: "minPrice", Desc: true},
	}
	if len(q.Sort) != len(want) {
		t.Fatalf("want %d sort keys, got %v", len(want), q.Sort)
	}
	for i := range want {
		if q.Sort[i] != want[i] {
			t.Fatalf("sort[%d]: got %+v, want %+v", i, q.Sort[i], want[i])
		}
	}
}

func TestParseQueryStructuralErrors(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		path string
	}{
		{"bad page", "page", "zero", "page"},
		{"negative limit", "limit", "-1", "limit"},
		{"bad price", "filter[minPrice]", "cheap", "filter.minPrice"},
		{"bad status", "filter[status]", "ARCHIVED", "filter.status"},
		{"bad date", "filter[updatedAtEnd]", "someday", "filter.updatedAtEnd"},
		{"unknown filter", "filter[color]", "red", "filter.color"},
		{"bad sort direction", "sort[createdAt]", "up", "sort.createdAt"},
		{"unknown sort key", "sort[title]", "asc", "sort.title"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := url.Values{}
			v.Set(tc.key, tc.val)
			_, err := ParseQuery(v)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want *ValidationError, got %v", err)
			}
			assertFailurePath(t, verr, tc.path)
		})
	}
}

func TestParseQueryCollectsMultipleErrors(t *testing.T) {
	v := url.Values{}
	v.Set("page", "x")
	v.Set("filter[maxPrice]", "expensive")
	_, err := ParseQuery(v)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("want 2 failures, got %v", verr.Fields)
	}
}

func TestParseQueryRangeRefinements(t *testing.T) {
	cases := []struct {
		name string
		set  map[string]string
		path string
	}{
		{
			"min above max",
			map[string]string{"filter[minPrice]": "50", "filter[maxPrice]": "10"},
			"filter.minPrice",
		},
		{
			"created range inverted",
			map[string]string{"filter[createdAtStart]": "2024-06-01", "filter[createdAtEnd]": "2024-01-01"},
			"filter.createdAtStart",
		},
		{
			"published range inverted",
			map[string]string{"filter[publishedAtStart]": "2024-06-01", "filter[publishedAtEnd]": "2024-01-01"},
			"filter.publishedAtStart",
		},
		{
			"updated range inverted",
			map[string]string{"filter[updatedAtStart]": "2024-06-01", "filter[updatedAtEnd]": "2024-01-01"},
			"filter.updatedAtStart",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := url.Values{}
			for k, val := range tc.set {
				v.Set(k, val)
			}
			_, err := ParseQuery(v)
			var rerr *RangeError
			if !errors.As(err, &rerr) {
				t.Fatalf("want *RangeError, got %v", err)
			}
			if rerr.Path != tc.path {
				t.Fatalf("want path %q, got %q", tc.path, rerr.Path)
			}
		})
	}
}

func TestParseQueryOneSidedRangesAllowed(t *testing.T) {
	v := url.Values{}
	v.Set("filter[createdAtStart]", "2024-06-01")
	if _, err := ParseQuery(v); err != nil {
		t.Fatalf("one-sided range rejected: %v", err)
	}
	v = url.Values{}
	v.Set("filter[maxPrice]", "10")
	if _, err := ParseQuery(v); err != nil {
		t.Fatalf("one-sided price rejected: %v", err)
	}
}

func assertFailurePath(t *testing.T, verr *ValidationError, path string) {
	t.Helper()
	for _, f := range verr.Fields {
		if f.Path == path {
			return
		}
	}
	t.Fatalf("no failure at %q in %v", path, verr.Fields)
}
