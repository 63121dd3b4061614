package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata keys read by the scorers.
const (
	MetaStyleTags    = "style_tags"
	MetaColorTags    = "color_tags"
	MetaOccasionTags = "occasion_tags"
	MetaProductType  = "product_type"
)

type Product struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Slug       string            `gorm:"uniqueIndex;size:140"`
	Name       string            `gorm:"size:180"`
	BasePrice  float64           `gorm:"type:decimal(12,2)"`
	Category   string            `gorm:"size:100"`
	ShortDesc  string            `gorm:"type:text"`
	Brand      string            `gorm:"size:100"`
	Active     bool              `gorm:"default:true;index"`
	Metadata   map[string]string `gorm:"type:jsonb;serializer:json"`
	Images     []Image
	Variants   []Variant
	Tags       []Tag      `gorm:"many2many:product_tags"`
	Categories []Category `gorm:"many2many:product_categories"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MetadataList splits a comma-separated metadata value, lowercased and trimmed.
func (p *Product) MetadataList(key string) []string {
	raw, ok := p.Metadata[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PrimaryImageURL returns the first image, the convention for hero/try-on shots.
func (p *Product) PrimaryImageURL() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// SizeLabels returns the distinct variant sizes in variant order.
func (p *Product) SizeLabels() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range p.Variants {
		s := strings.ToUpper(strings.TrimSpace(v.Size))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// OffersSize reports whether some variant carries the given size label.
func (p *Product) OffersSize(size string) bool {
	want := strings.ToUpper(strings.TrimSpace(size))
	for _, v := range p.Variants {
		if strings.ToUpper(strings.TrimSpace(v.Size)) == want {
			return true
		}
	}
	return false
}

type Variant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Size      string    `gorm:"size:20;index"`
	Color     string    `gorm:"size:60"`
	SKU       string    `gorm:"size:100;index"`
	Price     float64   `gorm:"type:decimal(12,2);default:0"`
	Stock     int       `gorm:"type:int;default:0"`
	ImageURL  string    `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Image struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	URL       string    `gorm:"size:255"`
	Alt       string    `gorm:"size:140"`
	CreatedAt time.Time
}

type Category struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"size:100;uniqueIndex"`
	Handle string    `gorm:"size:100"`
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Value string    `gorm:"size:100;uniqueIndex"`
}
