// Package shopify talks to external Shopify storefronts: it fetches single
// product documents and resolves/confirms candidate product URLs.
package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "shopfeed/1.0"

type Fetcher struct {
	client *http.Client
}

// NewFetcher builds the fetch client once. When proxyURL is set every request
// is routed through that forward proxy; otherwise the standard environment
// proxy settings apply.
func NewFetcher(proxyURL string) (*Fetcher, error) {
	transport := &http.Transport{Proxy: http.ProxyFromEnvironment}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	return &Fetcher{client: &http.Client{Timeout: 20 * time.Second, Transport: transport}}, nil
}

// FetchProduct issues one GET against a product detail-JSON endpoint and
// returns the raw inner product document. Shape validation is not done here.
func (f *Fetcher) FetchProduct(ctx context.Context, productURL string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var wrapped struct {
		Product json.RawMessage `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapped); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if len(wrapped.Product) == 0 {
		return nil, errors.New("payload has no product document")
	}
	return wrapped.Product, nil
}
