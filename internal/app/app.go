package app

import (
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/phenrril/shopfeed/internal/adapters/httpserver"
	"github.com/phenrril/shopfeed/internal/adapters/repo/postgres"
	"github.com/phenrril/shopfeed/internal/adapters/shopify"
	"github.com/phenrril/shopfeed/internal/config"
	"github.com/phenrril/shopfeed/internal/domain"
	"github.com/phenrril/shopfeed/internal/usecase"
)

type App struct {
	db        *gorm.DB
	ProductUC *usecase.ProductUC
	SyncUC    *usecase.SyncUC
}

func NewApp(db *gorm.DB, cfg *config.Config) (*App, error) {
	repo := postgres.NewProductRepo(db)

	fetcher, err := shopify.NewFetcher(cfg.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("fetcher: %w", err)
	}
	resolver := shopify.NewResolver(cfg.LinksFile)

	return &App{
		db:        db,
		ProductUC: &usecase.ProductUC{Products: repo},
		SyncUC:    usecase.NewSyncUC(repo, fetcher, resolver),
	}, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.SyncUC)
}

func (a *App) Migrate() error {
	if err := a.db.AutoMigrate(
		&domain.Product{},
		&domain.Variant{},
		&domain.ProductImage{},
	); err != nil {
		return err
	}

	// Expression index backing the filter[text] predicate. The expression
	// has to stay byte-identical to the one the query compiler emits or
	// postgres will not use it.
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_text_search
			ON products USING gin (to_tsvector('simple', coalesce(title,'') || ' ' || coalesce(vendor,'') || ' ' || coalesce(tags,'')))`,
		`CREATE INDEX IF NOT EXISTS idx_products_created_at ON products (created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_products_published_at ON products (published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_products_price_range ON products (price_range_min, price_range_max)`,
		`CREATE INDEX IF NOT EXISTS idx_variants_product_id ON variants (product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_product_images_product_id ON product_images (product_id)`,
	}
	for _, s := range stmts {
		if err := a.db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
