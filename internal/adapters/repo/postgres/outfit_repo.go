package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/modaviva/internal/domain"
)

type OutfitRepo struct{ db *gorm.DB }

func NewOutfitRepo(db *gorm.DB) *OutfitRepo { return &OutfitRepo{db: db} }

func preloadOutfit(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Items.Product").
		Preload("Items.Product.Images").
		Preload("Items.Product.Variants").
		Preload("Items.Product.Tags").
		Preload("Items.Product.Categories")
}

func (r *OutfitRepo) Save(ctx context.Context, o *domain.Outfit) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *OutfitRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Outfit, error) {
	var o domain.Outfit
	if err := preloadOutfit(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OutfitRepo) List(ctx context.Context, f domain.OutfitFilter) ([]domain.Outfit, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Outfit{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	var list []domain.Outfit
	if err := preloadOutfit(q).Order("created_at desc").
		Offset((f.Page - 1) * f.PageSize).Limit(f.PageSize).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *OutfitRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]domain.Outfit, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&domain.OutfitItem{}).
		Where("product_id = ?", productID).Pluck("outfit_id", &ids).Error; err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.Outfit{}, nil
	}
	var list []domain.Outfit
	if err := preloadOutfit(r.db.WithContext(ctx)).
		Where("id IN ?", ids).Order("created_at desc").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OutfitRepo) ListRecent(ctx context.Context, limit int) ([]domain.Outfit, error) {
	if limit <= 0 {
		limit = 5
	}
	var list []domain.Outfit
	if err := preloadOutfit(r.db.WithContext(ctx)).
		Order("created_at desc").Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *OutfitRepo) AddItem(ctx context.Context, item *domain.OutfitItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *OutfitRepo) RemoveItem(ctx context.Context, outfitID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("outfit_id = ? AND product_id = ?", outfitID, productID).
		Delete(&domain.OutfitItem{}).Error
}

// Delete soft-deletes the outfit; its items stay in place so a restore keeps
// the ordering.
func (r *OutfitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Outfit{}, "id = ?", id).Error
}
