package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthToken records an issued token by its jti. A token is only honoured
// while its row exists.
type AuthToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time
	ExpiresAt time.Time `gorm:"not null"`
}
