package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/modaviva/internal/domain"
)

type TryOnRepo struct{ db *gorm.DB }

func NewTryOnRepo(db *gorm.DB) *TryOnRepo { return &TryOnRepo{db: db} }

func (r *TryOnRepo) Save(ctx context.Context, t *domain.TryOnRequest) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TryOnRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.TryOnRequest, error) {
	var t domain.TryOnRequest
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *TryOnRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.TryOnRequest, error) {
	var list []domain.TryOnRequest
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).
		Order("created_at desc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *TryOnRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.TryOnRequest{}, "id = ?", id).Error
}
