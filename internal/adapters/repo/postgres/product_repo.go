package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/phenrril/shopfeed/internal/domain"
	"github.com/phenrril/shopfeed/internal/query"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Upsert reconciles a validated product against the stored record. A missing
// record is inserted. An existing record is overwritten only when the
// incoming updated_at is strictly newer; otherwise the stored record is
// returned unchanged so repeated syncs of unchanged upstream data are no-ops.
func (r *ProductRepo) Upsert(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	var existing domain.Product
	err := r.db.WithContext(ctx).First(&existing, "id = ?", p.ID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		p.PriceRange = domain.CalculatePriceRange(p.Variants)
		if p.Status == "" {
			p.Status = domain.StatusPublished
		}
		if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
			return nil, err
		}
		return p, nil
	}

	if !domain.Supersedes(p.UpdatedAt, existing.UpdatedAt) {
		return r.FindByID(ctx, existing.ID)
	}

	applyOverwrite(p)
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.Variant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(p).Error
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// applyOverwrite recomputes the derived fields of a record replacing a stored
// one: the price range comes from the variants, and a record that syncs
// successfully again is visible again.
func applyOverwrite(p *domain.Product) {
	p.PriceRange = domain.CalculatePriceRange(p.Variants)
	p.Status = domain.StatusPublished
}

func (r *ProductRepo) UpdateStatus(ctx context.Context, url string, status domain.ProductStatus) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "url = ?", url).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&p).Update("status", status).Error; err != nil {
		return nil, err
	}
	p.Status = status
	return &p, nil
}

// FindAll applies the compiled query descriptor: count the filtered set
// first, then sort, skip and limit.
func (r *ProductRepo) FindAll(ctx context.Context, q domain.ProductQuery) (*domain.ProductPage, error) {
	desc := query.Compile(q)
	where, args, err := desc.Where.ToSql()
	if err != nil {
		return nil, err
	}

	tx := r.db.WithContext(ctx).Model(&domain.Product{}).Where(where, args...)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	numPages, hasMore := query.Paginate(total, q.Page, q.Limit)

	for _, s := range desc.Sort {
		dir := " asc"
		if s.Desc {
			dir = " desc"
		}
		tx = tx.Order(s.Column + dir)
	}

	items := []domain.Product{}
	err = tx.Offset(desc.Offset).Limit(desc.Limit).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	return &domain.ProductPage{Items: items, Total: total, NumPages: numPages, HasMore: hasMore}, nil
}
