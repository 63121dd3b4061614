package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Outfit is a named, ordered collection of products. It must always contain
// at least one product; mutations that would empty it are rejected upstream.
type Outfit struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"size:140"`
	Description string     `gorm:"type:text"`
	CustomerID  *uuid.UUID `gorm:"type:uuid;index"`
	Items       []OutfitItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

// OwnedBy reports whether the outfit belongs to the given customer. Outfits
// without a creator are curated by the store and owned by nobody.
func (o *Outfit) OwnedBy(customerID uuid.UUID) bool {
	return o.CustomerID != nil && *o.CustomerID == customerID
}

type OutfitItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OutfitID  uuid.UUID `gorm:"type:uuid;index"`
	ProductID uuid.UUID `gorm:"type:uuid;index"`
	Position  int       `gorm:"type:int;default:0"`
	Product   Product
	CreatedAt time.Time
}
