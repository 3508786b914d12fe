package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogEntry is satisfied by the two per-user name catalogs that recipes
// reference: tags and ingredients.
type CatalogEntry interface {
	Tag | Ingredient
	PrimaryKey() uuid.UUID
	Label() string
}

// Tag is a user-owned label. Names are unique per owner.
type Tag struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_tags_owner_name" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_tags_owner_name" json:"name"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

func (t Tag) PrimaryKey() uuid.UUID {
	return t.ID
}

func (t Tag) Label() string {
	return t.Name
}

// Ingredient is a user-owned ingredient name. Names are unique per owner.
type Ingredient struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ingredients_owner_name" json:"-"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:idx_ingredients_owner_name" json:"name"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i Ingredient) PrimaryKey() uuid.UUID {
	return i.ID
}

func (i Ingredient) Label() string {
	return i.Name
}
