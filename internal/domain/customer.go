package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email     string    `gorm:"size:140;uniqueIndex"`
	Name      string    `gorm:"size:140"`
	Phone     string    `gorm:"size:60"`
	CreatedAt time.Time
}

// BodyMeasurement holds a customer's body measurements in cm (weight in kg).
// Every field is optional; present fields are range-checked independently.
type BodyMeasurement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID    uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Height        *float64  `gorm:"type:decimal(6,2)"`
	Weight        *float64  `gorm:"type:decimal(6,2)"`
	Bust          *float64  `gorm:"type:decimal(6,2)"`
	Waist         *float64  `gorm:"type:decimal(6,2)"`
	Hips          *float64  `gorm:"type:decimal(6,2)"`
	ShoulderWidth *float64  `gorm:"type:decimal(6,2)"`
	Inseam        *float64  `gorm:"type:decimal(6,2)"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// Fields returns the sparse measurement map keyed by chart field name.
func (m *BodyMeasurement) Fields() map[string]float64 {
	out := map[string]float64{}
	set := func(name string, v *float64) {
		if v != nil {
			out[name] = *v
		}
	}
	set("height", m.Height)
	set("weight", m.Weight)
	set("bust", m.Bust)
	set("waist", m.Waist)
	set("hips", m.Hips)
	set("shoulder_width", m.ShoulderWidth)
	set("inseam", m.Inseam)
	return out
}

// StyleProfile holds a customer's declared aesthetic preferences.
// String sets are validated against the injected Vocabulary at write time.
type StyleProfile struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey"`
	CustomerID         uuid.UUID         `gorm:"type:uuid;uniqueIndex"`
	PreferredStyles    []string          `gorm:"type:jsonb;serializer:json"`
	PreferredColors    []string          `gorm:"type:jsonb;serializer:json"`
	PreferredOccasions []string          `gorm:"type:jsonb;serializer:json"`
	DislikedStyles     []string          `gorm:"type:jsonb;serializer:json"`
	DislikedColors     []string          `gorm:"type:jsonb;serializer:json"`
	SizePreferences    map[string]string `gorm:"type:jsonb;serializer:json"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          gorm.DeletedAt `gorm:"index"`
}

// UserImage is a customer-uploaded photo stored through FileStorage.
type UserImage struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID  uuid.UUID `gorm:"type:uuid;index"`
	Path        string    `gorm:"size:255"`
	ContentType string    `gorm:"size:100"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
