package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/models"
)

// catalogKind describes where one kind of catalog entry lives and how it
// hangs off recipes.
type catalogKind[T models.CatalogEntry] struct {
	name       string
	joinTable  string
	joinColumn string
	build      func(owner uuid.UUID, name string) T
}

var tagKind = catalogKind[models.Tag]{
	name:       "tag",
	joinTable:  "recipe_tags",
	joinColumn: "tag_id",
	build: func(owner uuid.UUID, name string) models.Tag {
		return models.Tag{UserID: owner, Name: name}
	},
}

var ingredientKind = catalogKind[models.Ingredient]{
	name:       "ingredient",
	joinTable:  "recipe_ingredients",
	joinColumn: "ingredient_id",
	build: func(owner uuid.UUID, name string) models.Ingredient {
		return models.Ingredient{UserID: owner, Name: name}
	},
}

// CatalogService manages one user-owned name catalog: tags or ingredients.
type CatalogService[T models.CatalogEntry] struct {
	db     *gorm.DB
	kind   catalogKind[T]
	logger *zap.Logger
}

// NewTagService creates the catalog service for tags
func NewTagService(db *gorm.DB, logger *zap.Logger) *CatalogService[models.Tag] {
	return &CatalogService[models.Tag]{db: db, kind: tagKind, logger: logger}
}

// NewIngredientService creates the catalog service for ingredients
func NewIngredientService(db *gorm.DB, logger *zap.Logger) *CatalogService[models.Ingredient] {
	return &CatalogService[models.Ingredient]{db: db, kind: ingredientKind, logger: logger}
}

// ListOptions narrows a catalog listing.
type ListOptions struct {
	// AssignedOnly keeps entries attached to at least one of the owner's recipes.
	AssignedOnly bool
}

// List returns the owner's entries, name descending.
func (s *CatalogService[T]) List(ctx context.Context, owner uuid.UUID, opts ListOptions) ([]T, error) {
	q := s.db.WithContext(ctx).Scopes(OwnedBy(owner))
	if opts.AssignedOnly {
		assigned := s.db.Table(s.kind.joinTable+" AS j").
			Select("j."+s.kind.joinColumn).
			Joins("JOIN recipes r ON r.id = j.recipe_id").
			Where("r.user_id = ?", owner)
		q = q.Where("id IN (?)", assigned)
	}

	var entries []T
	if err := q.Order("name DESC").Order("id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list %ss: %w", s.kind.name, err)
	}
	return entries, nil
}

// Get returns one of the owner's entries.
func (s *CatalogService[T]) Get(ctx context.Context, owner, id uuid.UUID) (*T, error) {
	return s.find(s.db.WithContext(ctx), owner, id)
}

// Create adds an entry for owner. A name the owner already uses is rejected.
func (s *CatalogService[T]) Create(ctx context.Context, owner uuid.UUID, name string) (*T, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	entry := s.kind.build(owner, name)
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create %s: %w", s.kind.name, err)
	}
	return &entry, nil
}

// Rename changes the name of one of the owner's entries.
func (s *CatalogService[T]) Rename(ctx context.Context, owner, id uuid.UUID, name string) (*T, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	var entry *T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.find(tx, owner, id)
		if err != nil {
			return err
		}
		if err := tx.Model(current).Update("name", name).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrNameTaken
			}
			return fmt.Errorf("failed to rename %s: %w", s.kind.name, err)
		}
		entry, err = s.find(tx, owner, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes one of the owner's entries and detaches it from every
// recipe. Recipes themselves are kept.
func (s *CatalogService[T]) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, err := s.find(tx, owner, id)
		if err != nil {
			return err
		}
		detach := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.kind.joinTable, s.kind.joinColumn)
		if err := tx.Exec(detach, id).Error; err != nil {
			return fmt.Errorf("failed to detach %s: %w", s.kind.name, err)
		}
		if err := tx.Delete(entry).Error; err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.kind.name, err)
		}
		return nil
	})
}

// Resolve maps names onto the owner's entries, creating missing ones. It
// must run inside tx's transaction.
func (s *CatalogService[T]) Resolve(tx *gorm.DB, owner uuid.UUID, names []string) ([]T, error) {
	return resolveNames(tx, s.kind, owner, names, s.logger)
}

func (s *CatalogService[T]) find(db *gorm.DB, owner, id uuid.UUID) (*T, error) {
	var entry T
	if err := db.Scopes(OwnedBy(owner)).First(&entry, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &entry, nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	return name, nil
}
