package domain

import (
	"context"

	"github.com/google/uuid"
)

type ProductFilter struct {
	Category string
	Query    string
	Size     string
	Sort     string
	Page     int
	PageSize int
}

type ProductRepo interface {
	Save(ctx context.Context, p *Product) error
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	// ListAll returns the active catalog with variants, tags and categories
	// preloaded, for full-catalog scoring passes.
	ListAll(ctx context.Context) ([]Product, error)
	AddImages(ctx context.Context, productID uuid.UUID, imgs []Image) error
	SaveVariant(ctx context.Context, v *Variant) error
	ListVariants(ctx context.Context, productID uuid.UUID) ([]Variant, error)
	DeleteFullBySlug(ctx context.Context, slug string) ([]string, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

type CustomerRepo interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	Save(ctx context.Context, c *Customer) error
}

type MeasurementRepo interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*BodyMeasurement, error)
	Save(ctx context.Context, m *BodyMeasurement) error
}

type StyleProfileRepo interface {
	FindByCustomer(ctx context.Context, customerID uuid.UUID) (*StyleProfile, error)
	Save(ctx context.Context, p *StyleProfile) error
}

type OutfitFilter struct {
	CustomerID *uuid.UUID
	Page       int
	PageSize   int
}

type OutfitRepo interface {
	Save(ctx context.Context, o *Outfit) error
	FindByID(ctx context.Context, id uuid.UUID) (*Outfit, error)
	List(ctx context.Context, f OutfitFilter) ([]Outfit, int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Outfit, error)
	ListRecent(ctx context.Context, limit int) ([]Outfit, error)
	AddItem(ctx context.Context, item *OutfitItem) error
	RemoveItem(ctx context.Context, outfitID, productID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TryOnRepo interface {
	Save(ctx context.Context, t *TryOnRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*TryOnRequest, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]TryOnRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserImageRepo interface {
	Save(ctx context.Context, img *UserImage) error
	FindByID(ctx context.Context, id uuid.UUID) (*UserImage, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]UserImage, error)
}

// FileStorage persists binary images by reference. SaveImage returns the
// stored reference; PublicURL resolves a reference to something a browser can
// fetch (a path for local storage, a presigned URL for S3).
type FileStorage interface {
	SaveImage(ctx context.Context, filename string, data []byte) (string, error)
	FetchImage(ctx context.Context, ref string) ([]byte, error)
	PublicURL(ctx context.Context, ref string) (string, error)
}

// ImageDownloader fetches an image from an absolute URL (product photos may
// live on a CDN rather than in our storage).
type ImageDownloader interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type TryOnOptions struct {
	Pose       string
	Background string
}

// TryOnGenerator produces a composited try-on image from a person photo and a
// garment photo.
type TryOnGenerator interface {
	Generate(ctx context.Context, personImage, garmentImage []byte, opts TryOnOptions) ([]byte, error)
}

// EventPublisher emits fire-and-forget domain events; failures are logged by
// the implementation, never surfaced to callers.
type EventPublisher interface {
	Publish(topic string, payload any)
}

// Event topics.
const (
	TopicOutfitCreated = "outfit.created"
	TopicTryOnUpdated  = "virtual_try_on.updated"
	TopicTryOnGenerate = "tryon.generate"
)
