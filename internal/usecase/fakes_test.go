package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/phenrril/modaviva/internal/domain"
)

type fakeProductRepo struct {
	products map[uuid.UUID]*domain.Product
}

func newFakeProductRepo(products ...*domain.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[uuid.UUID]*domain.Product{}}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *fakeProductRepo) Save(_ context.Context, p *domain.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range r.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ domain.ProductFilter) ([]domain.Product, int64, error) {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) ListAll(_ context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProductRepo) AddImages(_ context.Context, productID uuid.UUID, imgs []domain.Image) error {
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Images = append(p.Images, imgs...)
	return nil
}

func (r *fakeProductRepo) SaveVariant(_ context.Context, v *domain.Variant) error {
	p, ok := r.products[v.ProductID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Variants = append(p.Variants, *v)
	return nil
}

func (r *fakeProductRepo) ListVariants(_ context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	p, ok := r.products[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Variants, nil
}

func (r *fakeProductRepo) DeleteFullBySlug(_ context.Context, slug string) ([]string, error) {
	for id, p := range r.products {
		if p.Slug == slug {
			delete(r.products, id)
			return nil, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) DistinctCategories(_ context.Context) ([]string, error) {
	return nil, nil
}

type fakeMeasurementRepo struct {
	byCustomer map[uuid.UUID]*domain.BodyMeasurement
}

func newFakeMeasurementRepo() *fakeMeasurementRepo {
	return &fakeMeasurementRepo{byCustomer: map[uuid.UUID]*domain.BodyMeasurement{}}
}

func (r *fakeMeasurementRepo) FindByCustomer(_ context.Context, customerID uuid.UUID) (*domain.BodyMeasurement, error) {
	m, ok := r.byCustomer[customerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m, nil
}

func (r *fakeMeasurementRepo) Save(_ context.Context, m *domain.BodyMeasurement) error {
	r.byCustomer[m.CustomerID] = m
	return nil
}

type fakeProfileRepo struct {
	byCustomer map[uuid.UUID]*domain.StyleProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byCustomer: map[uuid.UUID]*domain.StyleProfile{}}
}

func (r *fakeProfileRepo) FindByCustomer(_ context.Context, customerID uuid.UUID) (*domain.StyleProfile, error) {
	p, ok := r.byCustomer[customerID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) Save(_ context.Context, p *domain.StyleProfile) error {
	r.byCustomer[p.CustomerID] = p
	return nil
}

type fakeOutfitRepo struct {
	outfits map[uuid.UUID]*domain.Outfit
}

func newFakeOutfitRepo() *fakeOutfitRepo {
	return &fakeOutfitRepo{outfits: map[uuid.UUID]*domain.Outfit{}}
}

func (r *fakeOutfitRepo) Save(_ context.Context, o *domain.Outfit) error {
	cp := *o
	r.outfits[o.ID] = &cp
	return nil
}

func (r *fakeOutfitRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Outfit, error) {
	o, ok := r.outfits[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOutfitRepo) List(_ context.Context, _ domain.OutfitFilter) ([]domain.Outfit, int64, error) {
	out := make([]domain.Outfit, 0, len(r.outfits))
	for _, o := range r.outfits {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *fakeOutfitRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]domain.Outfit, error) {
	out := []domain.Outfit{}
	for _, o := range r.outfits {
		for _, it := range o.Items {
			if it.ProductID == productID {
				out = append(out, *o)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeOutfitRepo) ListRecent(_ context.Context, limit int) ([]domain.Outfit, error) {
	out := make([]domain.Outfit, 0, len(r.outfits))
	for _, o := range r.outfits {
		out = append(out, *o)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeOutfitRepo) AddItem(_ context.Context, item *domain.OutfitItem) error {
	o, ok := r.outfits[item.OutfitID]
	if !ok {
		return domain.ErrNotFound
	}
	o.Items = append(o.Items, *item)
	return nil
}

func (r *fakeOutfitRepo) RemoveItem(_ context.Context, outfitID, productID uuid.UUID) error {
	o, ok := r.outfits[outfitID]
	if !ok {
		return domain.ErrNotFound
	}
	kept := o.Items[:0]
	for _, it := range o.Items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	o.Items = kept
	return nil
}

func (r *fakeOutfitRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.outfits, id)
	return nil
}

type fakeCustomerRepo struct {
	byID map[uuid.UUID]*domain.Customer
}

func newFakeCustomerRepo(customers ...*domain.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{byID: map[uuid.UUID]*domain.Customer{}}
	for _, c := range customers {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) FindByEmail(_ context.Context, email string) (*domain.Customer, error) {
	for _, c := range r.byID {
		if c.Email == email {
			return c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) Save(_ context.Context, c *domain.Customer) error {
	r.byID[c.ID] = c
	return nil
}

type fakeUserImageRepo struct {
	byID map[uuid.UUID]*domain.UserImage
}

func newFakeUserImageRepo(imgs ...*domain.UserImage) *fakeUserImageRepo {
	r := &fakeUserImageRepo{byID: map[uuid.UUID]*domain.UserImage{}}
	for _, img := range imgs {
		r.byID[img.ID] = img
	}
	return r
}

func (r *fakeUserImageRepo) Save(_ context.Context, img *domain.UserImage) error {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	r.byID[img.ID] = img
	return nil
}

func (r *fakeUserImageRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.UserImage, error) {
	img, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return img, nil
}

func (r *fakeUserImageRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]domain.UserImage, error) {
	out := []domain.UserImage{}
	for _, img := range r.byID {
		if img.CustomerID == customerID {
			out = append(out, *img)
		}
	}
	return out, nil
}

type fakeTryOnRepo struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*domain.TryOnRequest
}

func newFakeTryOnRepo() *fakeTryOnRepo {
	return &fakeTryOnRepo{byID: map[uuid.UUID]*domain.TryOnRequest{}}
}

func (r *fakeTryOnRepo) Save(_ context.Context, t *domain.TryOnRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.byID[t.ID] = &cp
	return nil
}

func (r *fakeTryOnRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.TryOnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTryOnRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]domain.TryOnRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.TryOnRequest{}
	for _, t := range r.byID {
		if t.CustomerID == customerID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTryOnRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	return nil
}

type fakeStorage struct {
	saved map[string][]byte
}

func newFakeStorage() *fakeStorage { return &fakeStorage{saved: map[string][]byte{}} }

func (s *fakeStorage) SaveImage(_ context.Context, filename string, data []byte) (string, error) {
	s.saved[filename] = data
	return filename, nil
}

func (s *fakeStorage) FetchImage(_ context.Context, ref string) ([]byte, error) {
	data, ok := s.saved[ref]
	if !ok {
		return nil, fmt.Errorf("ref %s: %w", ref, domain.ErrNotFound)
	}
	return data, nil
}

func (s *fakeStorage) PublicURL(_ context.Context, ref string) (string, error) {
	return "/uploads/" + ref, nil
}

type fakeDownloader struct {
	data map[string][]byte
}

func (d *fakeDownloader) Fetch(_ context.Context, url string) ([]byte, error) {
	data, ok := d.data[url]
	if !ok {
		return nil, fmt.Errorf("url %s: %w", url, domain.ErrNotFound)
	}
	return data, nil
}

type fakeGenerator struct {
	result []byte
	err    error
	calls  int
}

func (g *fakeGenerator) Generate(_ context.Context, _, _ []byte, _ domain.TryOnOptions) ([]byte, error) {
	g.calls++
	return g.result, g.err
}

type recordingPublisher struct {
	topics   []string
	payloads []any
}

func (p *recordingPublisher) Publish(topic string, payload any) {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
}
