package shopify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchProductUnwrapsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"product": {"id": 42, "title": "Mug"}}`))
	}))
	defer srv.Close()

	f, err := NewFetcher("")
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	raw, err := f.FetchProduct(context.Background(), srv.URL+"/products/mug.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"id": 42, "title": "Mug"}` {
		t.Fatalf("wrong inner document: %s", raw)
	}
}

func TestFetchProductNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f, _ := NewFetcher("")
	if _, err := f.FetchProduct(context.Background(), srv.URL); err == nil {
		t.Fatal("want error for 429")
	}
}

func TestFetchProductMissingDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f, _ := NewFetcher("")
	if _, err := f.FetchProduct(context.Background(), srv.URL); err == nil {
		t.Fatal("want error for payload without product")
	}
}

func TestNewFetcherBadProxy(t *testing.T) {
	if _, err := NewFetcher("://bad"); err == nil {
		t.Fatal("want error for malformed proxy url")
	}
}
