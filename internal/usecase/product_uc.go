package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phenrril/modaviva/internal/domain"
)

type ProductUC struct {
	Products domain.ProductRepo
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug vacío: %w", domain.ErrInvalidData)
	}
	return uc.Products.FindBySlug(ctx, slug)
}

func (uc *ProductUC) Create(ctx context.Context, p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("nombre vacío: %w", domain.ErrInvalidData)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(p.Name), " ", "-"))
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) Update(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == uuid.Nil {
		return fmt.Errorf("product id: %w", domain.ErrInvalidData)
	}
	return uc.Products.Save(ctx, p)
}

func (uc *ProductUC) AddImages(ctx context.Context, productID uuid.UUID, imgs []domain.Image) error {
	return uc.Products.AddImages(ctx, productID, imgs)
}

func (uc *ProductUC) DeleteFullBySlug(ctx context.Context, slug string) ([]string, error) {
	if slug == "" {
		return nil, fmt.Errorf("slug vacío: %w", domain.ErrInvalidData)
	}
	return uc.Products.DeleteFullBySlug(ctx, slug)
}

func (uc *ProductUC) Categories(ctx context.Context) ([]string, error) {
	return uc.Products.DistinctCategories(ctx)
}

// --- Variantes ---

func (uc *ProductUC) CreateVariant(ctx context.Context, v *domain.Variant) error {
	if v == nil {
		return fmt.Errorf("variant nil: %w", domain.ErrInvalidData)
	}
	if strings.TrimSpace(v.Size) == "" {
		return fmt.Errorf("variant sin talle: %w", domain.ErrInvalidData)
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.Size = strings.ToUpper(strings.TrimSpace(v.Size))
	return uc.Products.SaveVariant(ctx, v)
}

func (uc *ProductUC) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id: %w", domain.ErrInvalidData)
	}
	return uc.Products.ListVariants(ctx, productID)
}
