package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/phenrril/modaviva/internal/domain"
)

type MeasurementRepo struct{ db *gorm.DB }

func NewMeasurementRepo(db *gorm.DB) *MeasurementRepo { return &MeasurementRepo{db: db} }

func (r *MeasurementRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.BodyMeasurement, error) {
	var m domain.BodyMeasurement
	if err := r.db.WithContext(ctx).First(&m, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *MeasurementRepo) Save(ctx context.Context, m *domain.BodyMeasurement) error {
	return r.db.WithContext(ctx).Save(m).Error
}

type StyleProfileRepo struct{ db *gorm.DB }

func NewStyleProfileRepo(db *gorm.DB) *StyleProfileRepo { return &StyleProfileRepo{db: db} }

func (r *StyleProfileRepo) FindByCustomer(ctx context.Context, customerID uuid.UUID) (*domain.StyleProfile, error) {
	var p domain.StyleProfile
	if err := r.db.WithContext(ctx).First(&p, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *StyleProfileRepo) Save(ctx context.Context, p *domain.StyleProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

type UserImageRepo struct{ db *gorm.DB }

func NewUserImageRepo(db *gorm.DB) *UserImageRepo { return &UserImageRepo{db: db} }

func (r *UserImageRepo) Save(ctx context.Context, img *domain.UserImage) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(img).Error
}

func (r *UserImageRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.UserImage, error) {
	var img domain.UserImage
	if err := r.db.WithContext(ctx).First(&img, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

func (r *UserImageRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.UserImage, error) {
	var imgs []domain.UserImage
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at desc").
		Find(&imgs).Error
	return imgs, err
}
