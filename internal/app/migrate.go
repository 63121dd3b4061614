package app

import (
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/modaviva/internal/domain"
)

func (a *App) MigrateAndSeed() error {
	if err := a.DB.AutoMigrate(
		&domain.Product{}, &domain.Variant{}, &domain.Image{}, &domain.Tag{}, &domain.Category{},
		&domain.Customer{}, &domain.BodyMeasurement{}, &domain.StyleProfile{}, &domain.UserImage{},
		&domain.Outfit{}, &domain.OutfitItem{}, &domain.TryOnRequest{},
	); err != nil {
		return err
	}

	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_active ON products(active)").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku_unique ON variants (sku) WHERE sku IS NOT NULL AND sku <> ''").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_product_size ON variants(product_id, size)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_try_on_requests_customer_status ON try_on_requests(customer_id, status)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_outfit_items_product ON outfit_items(product_id)").Error

	return a.seedCatalog()
}

type seedProduct struct {
	name     string
	category string
	brand    string
	price    float64
	desc     string
	meta     map[string]string
	sizes    []string
	imageURL string
}

// seedCatalog carga un catálogo mínimo la primera vez que arranca la app.
func (a *App) seedCatalog() error {
	var count int64
	if err := a.DB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	seeds := []seedProduct{
		{
			name: "Vestido Midi Floral", category: "dresses", brand: "ModaViva", price: 45999,
			desc: "Vestido midi estampado, ideal para el día.",
			meta: map[string]string{
				domain.MetaProductType:  "dresses",
				domain.MetaStyleTags:    "romantic,casual",
				domain.MetaColorTags:    "pink,white",
				domain.MetaOccasionTags: "everyday,night-out",
			},
			sizes:    []string{"XS", "S", "M", "L", "XL"},
			imageURL: "/public/seed/vestido-midi-floral.jpg",
		},
		{
			name: "Remera Oversize Lisa", category: "tops", brand: "ModaViva", price: 15999,
			desc: "Remera de algodón peinado, calce oversize.",
			meta: map[string]string{
				domain.MetaProductType:  "tops",
				domain.MetaStyleTags:    "casual,streetwear,minimalist",
				domain.MetaColorTags:    "black",
				domain.MetaOccasionTags: "everyday",
			},
			sizes:    []string{"S", "M", "L", "XL"},
			imageURL: "/public/seed/remera-oversize.jpg",
		},
		{
			name: "Jean Mom Fit", category: "bottoms", brand: "ModaViva", price: 38999,
			desc: "Jean tiro alto de calce mom.",
			meta: map[string]string{
				domain.MetaProductType:  "bottoms",
				domain.MetaStyleTags:    "casual,vintage",
				domain.MetaColorTags:    "blue",
				domain.MetaOccasionTags: "everyday,work",
			},
			sizes:    []string{"XS", "S", "M", "L", "XL"},
			imageURL: "/public/seed/jean-mom.jpg",
		},
		{
			name: "Camisa Formal Blanca", category: "tops", brand: "ModaViva", price: 29999,
			desc: "Camisa entallada de popelina.",
			meta: map[string]string{
				domain.MetaProductType:  "tops",
				domain.MetaStyleTags:    "formal,classic",
				domain.MetaColorTags:    "white",
				domain.MetaOccasionTags: "work,party",
			},
			sizes:    []string{"S", "M", "L"},
			imageURL: "/public/seed/camisa-formal.jpg",
		},
		{
			name: "Zapatillas Urbanas", category: "shoes", brand: "ModaViva", price: 52999,
			desc: "Zapatillas de cuero sintético con suela alta.",
			meta: map[string]string{
				domain.MetaProductType:  "shoes",
				domain.MetaStyleTags:    "sporty,streetwear",
				domain.MetaColorTags:    "white",
				domain.MetaOccasionTags: "everyday,sport",
			},
			sizes:    []string{"36", "37", "38", "39", "40"},
			imageURL: "/public/seed/zapatillas-urbanas.jpg",
		},
	}

	for _, seed := range seeds {
		p := &domain.Product{
			ID:        uuid.New(),
			Slug:      slugify(seed.name),
			Name:      seed.name,
			BasePrice: seed.price,
			Category:  seed.category,
			ShortDesc: seed.desc,
			Brand:     seed.brand,
			Active:    true,
			Metadata:  seed.meta,
		}
		for _, size := range seed.sizes {
			p.Variants = append(p.Variants, domain.Variant{
				ID: uuid.New(), Size: size, Stock: 10, Price: seed.price,
			})
		}
		p.Images = append(p.Images, domain.Image{ID: uuid.New(), URL: seed.imageURL, Alt: seed.name})
		if err := a.DB.Create(p).Error; err != nil {
			return err
		}
	}
	log.Info().Int("productos", len(seeds)).Msg("catálogo inicial cargado")
	return nil
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
