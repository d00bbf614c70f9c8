package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/shopfeed/internal/domain"
	"github.com/phenrril/shopfeed/internal/schema"
)

type Fetcher interface {
	FetchProduct(ctx context.Context, url string) (json.RawMessage, error)
}

type URLResolver interface {
	Resolve(ctx context.Context) ([]string, error)
}

const (
	defaultRetries = 3
	defaultBackoff = 300 * time.Millisecond
)

// SyncUC drives the fetch → validate → reconcile pipeline. Every per-URL
// branch terminates: a URL either upserts or soft-deletes, never retries
// across runs.
type SyncUC struct {
	Products domain.ProductRepo
	Fetcher  Fetcher
	Resolver URLResolver

	retries int
	backoff time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewSyncUC(products domain.ProductRepo, fetcher Fetcher, resolver URLResolver) *SyncUC {
	return &SyncUC{
		Products: products,
		Fetcher:  fetcher,
		Resolver: resolver,
		retries:  defaultRetries,
		backoff:  defaultBackoff,
		sleep:    sleepCtx,
	}
}

// SyncProduct synchronizes one URL. Fetch failures (after bounded retries),
// invalid payloads and panics all collapse into the same terminal outcome:
// the matching record, if any, is marked DELETED.
func (uc *SyncUC) SyncProduct(ctx context.Context, url string) (p *domain.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("url", url).Interface("panic", r).Msg("sync panicked")
			if ctx.Err() != nil {
				p, err = nil, ctx.Err()
				return
			}
			p, err = uc.markDeleted(ctx, url)
		}
	}()

	raw, ferr := retry(ctx, uc.retries, uc.backoff, uc.sleep, func() (json.RawMessage, error) {
		return uc.Fetcher.FetchProduct(ctx, url)
	})
	if ferr != nil {
		// Soft-delete is reserved for upstream failures. Local cancellation
		// says nothing about the product's health, so it propagates instead.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Str("url", url).Err(ferr).Msg("fetch failed, marking deleted")
		return uc.markDeleted(ctx, url)
	}

	prod, verr := schema.ValidateProduct(raw)
	if verr != nil {
		log.Warn().Str("url", url).Err(verr).Msg("invalid payload, marking deleted")
		return uc.markDeleted(ctx, url)
	}

	// The source URL is not part of the upstream payload.
	prod.URL = url
	return uc.Products.Upsert(ctx, prod)
}

// markDeleted is a no-op success when no record matches the URL: a failed
// fetch never fabricates a record.
func (uc *SyncUC) markDeleted(ctx context.Context, url string) (*domain.Product, error) {
	p, err := uc.Products.UpdateStatus(ctx, url, domain.StatusDeleted)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// SyncAll resolves the configured URLs and processes them sequentially.
// Sequential on purpose: it bounds outbound concurrency toward the upstream
// and keeps per-URL failure isolation trivial. One URL's failure is logged
// and never aborts the batch.
func (uc *SyncUC) SyncAll(ctx context.Context) error {
	run := uuid.NewString()[:8]

	urls, err := uc.Resolver.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve urls: %w", err)
	}
	log.Info().Str("run", run).Int("urls", len(urls)).Msg("catalog sync started")

	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			log.Warn().Str("run", run).Err(err).Msg("catalog sync interrupted")
			return err
		}
		if _, err := uc.SyncProduct(ctx, u); err != nil {
			log.Error().Str("run", run).Str("url", u).Err(err).Msg("product sync failed")
			continue
		}
		log.Info().Str("run", run).Str("url", u).Msg("product synced")
	}
	log.Info().Str("run", run).Msg("catalog sync finished")
	return nil
}

// Schedule re-runs the full sync on a fixed interval until ctx is done.
func (uc *SyncUC) Schedule(ctx context.Context, every time.Duration) {
	go func() {
		ticker := time.NewTicker(every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := uc.SyncAll(ctx); err != nil {
					log.Error().Err(err).Msg("scheduled sync failed")
				}
			}
		}
	}()
}

// retry runs fn once plus up to `retries` more times, doubling the delay
// before each retry. The wait is context-aware, never a blocking spin.
func retry[T any](ctx context.Context, retries int, delay time.Duration, sleep func(context.Context, time.Duration) error, fn func() (T, error)) (T, error) {
	v, err := fn()
	if err == nil || retries <= 0 {
		return v, err
	}
	if serr := sleep(ctx, delay); serr != nil {
		return v, serr
	}
	return retry(ctx, retries-1, delay*2, sleep, fn)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
