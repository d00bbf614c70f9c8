package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const probeTimeout = 5 * time.Second

// Resolver reads the configured list of candidate product URLs, normalizes
// them to detail-JSON endpoints and probes each one to confirm it is
// reachable and actually served by Shopify.
type Resolver struct {
	path   string
	client *http.Client
}

func NewResolver(path string) *Resolver {
	return &Resolver{path: path, client: &http.Client{Timeout: probeTimeout}}
}

// Resolve returns the normalized URLs that passed both the reachability probe
// and the platform check, preserving input order. Probes run concurrently;
// one slow or failing URL never blocks or fails the rest.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}

	candidates := make([]string, 0)
	for _, u := range parseLinks(raw) {
		u = strings.TrimSpace(u)
		if u == "" || !strings.Contains(u, "/products/") {
			continue
		}
		candidates = append(candidates, NormalizeProductURL(u))
	}

	confirmed := make([]bool, len(candidates))
	var wg sync.WaitGroup
	for i, u := range candidates {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			confirmed[i] = r.probe(ctx, u)
		}(i, u)
	}
	wg.Wait()

	out := make([]string, 0, len(candidates))
	for i, u := range candidates {
		if confirmed[i] {
			out = append(out, u)
		}
	}
	return out, nil
}

// parseLinks accepts either a JSON string array or a line-delimited list.
func parseLinks(raw []byte) []string {
	var urls []string
	if err := json.Unmarshal(raw, &urls); err == nil {
		return urls
	}
	return strings.Split(string(raw), "\n")
}

// NormalizeProductURL strips a trailing slash and appends the .json suffix
// that turns a storefront product page into its detail-JSON endpoint.
func NormalizeProductURL(u string) string {
	return strings.TrimSuffix(u, "/") + ".json"
}

func (r *Resolver) probe(ctx context.Context, u string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		log.Debug().Str("url", u).Err(err).Msg("probe failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	if strings.EqualFold(resp.Header.Get("Powered-By"), "Shopify") {
		return true
	}
	// Some storefront CDNs strip the Powered-By header; fall back to looking
	// for Shopify markers in an HTML body.
	return hasShopifyMarkers(resp.Body)
}

func hasShopifyMarkers(body io.Reader) bool {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return false
	}
	if doc.Find(`meta[name="shopify-digital-wallet"]`).Length() > 0 {
		return true
	}
	found := false
	doc.Find("link[href], script[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		attr, ok := sel.Attr("href")
		if !ok {
			attr, _ = sel.Attr("src")
		}
		if strings.Contains(attr, "cdn.shopify.com") || strings.Contains(attr, ".myshopify.com") {
			found = true
			return false
		}
		return true
	})
	return found
}
