package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recipe belongs to one user and references that user's tags and ingredients.
type Recipe struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"-"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	TimeMinutes int          `gorm:"not null" json:"time_minutes"`
	Price       float64      `gorm:"type:decimal(5,2);not null" json:"price"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Link        string       `gorm:"size:255;not null" json:"link"`
	Image       string       `gorm:"size:512;not null" json:"image"`
	Tags        []Tag        `gorm:"many2many:recipe_tags;" json:"tags"`
	Ingredients []Ingredient `gorm:"many2many:recipe_ingredients;" json:"ingredients"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// All lists every model in dependency order, for auto-migration.
func All() []interface{} {
	return []interface{}{
		&User{},
		&AuthToken{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
	}
}
