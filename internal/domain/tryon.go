package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TryOnStatus string

const (
	TryOnStatusPending    TryOnStatus = "pending"
	TryOnStatusProcessing TryOnStatus = "processing"
	TryOnStatusCompleted  TryOnStatus = "completed"
	TryOnStatusFailed     TryOnStatus = "failed"
)

// Terminal reports whether no further transition is legal from s.
func (s TryOnStatus) Terminal() bool {
	return s == TryOnStatusCompleted || s == TryOnStatusFailed
}

// ValidTryOnTransition encodes the only legal moves:
// pending → processing → {completed | failed}.
func ValidTryOnTransition(from, to TryOnStatus) bool {
	switch from {
	case TryOnStatusPending:
		return to == TryOnStatusProcessing
	case TryOnStatusProcessing:
		return to == TryOnStatusCompleted || to == TryOnStatusFailed
	default:
		return false
	}
}

// Metadata keys recorded on a try-on request.
const (
	TryOnMetaPose       = "pose"
	TryOnMetaBackground = "background"
	TryOnMetaError      = "error"
)

// TryOnRequest tracks an asynchronous try-on generation job from submission
// to its terminal outcome. Clients poll until Status is terminal.
type TryOnRequest struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	CustomerID      uuid.UUID         `gorm:"type:uuid;index"`
	ProductID       uuid.UUID         `gorm:"type:uuid;index"`
	UserImageID     uuid.UUID         `gorm:"type:uuid;index"`
	ResultImagePath string            `gorm:"size:255"`
	Status          TryOnStatus       `gorm:"type:varchar(20);index"`
	Metadata        map[string]string `gorm:"type:jsonb;serializer:json"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

// SetMeta assigns a metadata entry, allocating the map on first use.
func (t *TryOnRequest) SetMeta(key, value string) {
	if t.Metadata == nil {
		t.Metadata = map[string]string{}
	}
	t.Metadata[key] = value
}
