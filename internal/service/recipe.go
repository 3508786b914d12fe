package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/types"
)

// RecipeService handles recipe operations. Every method takes the owner
// explicitly and never touches another user's rows.
type RecipeService struct {
	db          *gorm.DB
	tags        *CatalogService[models.Tag]
	ingredients *CatalogService[models.Ingredient]
	images      ImageStore
	logger      *zap.Logger
}

// NewRecipeService creates a new RecipeService instance. images may be nil,
// in which case uploads fail with ErrStorageUnavailable.
func NewRecipeService(db *gorm.DB, tags *CatalogService[models.Tag], ingredients *CatalogService[models.Ingredient], images ImageStore, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:          db,
		tags:        tags,
		ingredients: ingredients,
		images:      images,
		logger:      logger,
	}
}

// List returns the owner's recipes, most recently created first.
func (s *RecipeService) List(ctx context.Context, owner uuid.UUID, filter types.RecipeFilter) ([]models.Recipe, error) {
	q := s.db.WithContext(ctx).Scopes(OwnedBy(owner), withCatalog)
	if len(filter.TagIDs) > 0 {
		q = q.Where("id IN (?)", s.db.Table("recipe_tags").Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("id IN (?)", s.db.Table("recipe_ingredients").Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	var recipes []models.Recipe
	if err := q.Order("created_at DESC").Order("id DESC").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// Get retrieves one of the owner's recipes with its tags and ingredients.
func (s *RecipeService) Get(ctx context.Context, owner, id uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := s.db.WithContext(ctx).Scopes(OwnedBy(owner), withCatalog).First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

// Create stores a new recipe for owner, resolving nested tags and ingredients.
func (s *RecipeService) Create(ctx context.Context, owner uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	recipe := models.Recipe{
		UserID:      owner,
		Title:       title,
		TimeMinutes: *req.TimeMinutes,
		Price:       roundPrice(*req.Price),
		Description: req.Description,
		Link:        strings.TrimSpace(req.Link),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		return s.attach(tx, &recipe, req.Tags, req.Ingredients)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("recipe created", zap.String("recipe_id", recipe.ID.String()), zap.String("owner", owner.String()))
	return s.Get(ctx, owner, recipe.ID)
}

// Replace overwrites every scalar field of the recipe. Nested fields are
// only replaced when present in req.
func (s *RecipeService) Replace(ctx context.Context, owner, id uuid.UUID, req *types.RecipeRequest) (*models.Recipe, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	updates := map[string]interface{}{
		"title":        title,
		"time_minutes": *req.TimeMinutes,
		"price":        roundPrice(*req.Price),
		"description":  req.Description,
		"link":         strings.TrimSpace(req.Link),
	}
	return s.update(ctx, owner, id, updates, req.Tags, req.Ingredients)
}

// Patch applies the fields present in req.
func (s *RecipeService) Patch(ctx context.Context, owner, id uuid.UUID, req *types.PatchRecipeRequest) (*models.Recipe, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrTitleRequired
		}
		updates["title"] = title
	}
	if req.TimeMinutes != nil {
		updates["time_minutes"] = *req.TimeMinutes
	}
	if req.Price != nil {
		updates["price"] = roundPrice(*req.Price)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Link != nil {
		updates["link"] = strings.TrimSpace(*req.Link)
	}
	return s.update(ctx, owner, id, updates, req.Tags, req.Ingredients)
}

// Delete removes one of the owner's recipes. Its tags and ingredients stay.
func (s *RecipeService) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.lock(tx, owner, id)
		if err != nil {
			return err
		}
		if err := tx.Model(recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("failed to detach tags: %w", err)
		}
		if err := tx.Model(recipe).Association("Ingredients").Clear(); err != nil {
			return fmt.Errorf("failed to detach ingredients: %w", err)
		}
		if err := tx.Delete(recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
}

// UploadImage stores an image for one of the owner's recipes and records
// its location on the recipe.
func (s *RecipeService) UploadImage(ctx context.Context, owner, id uuid.UUID, body io.Reader, size int64, contentType string) (*models.Recipe, error) {
	if s.images == nil {
		return nil, ErrStorageUnavailable
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}

	if _, err := s.Get(ctx, owner, id); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("uploads/recipe/%s%s", uuid.New(), ext)
	location, err := s.images.Put(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	return s.update(ctx, owner, id, map[string]interface{}{"image": location}, nil, nil)
}

func (s *RecipeService) update(ctx context.Context, owner, id uuid.UUID, updates map[string]interface{}, tags, ingredients []types.NamedRef) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.lock(tx, owner, id)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(recipe).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update recipe: %w", err)
			}
		}
		return s.attach(tx, recipe, tags, ingredients)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, owner, id)
}

// attach replaces the recipe's tags and ingredients for each non-nil list.
func (s *RecipeService) attach(tx *gorm.DB, recipe *models.Recipe, tags, ingredients []types.NamedRef) error {
	if tags != nil {
		resolved, err := s.tags.Resolve(tx, recipe.UserID, types.Names(tags))
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, "Tags", resolved); err != nil {
			return fmt.Errorf("failed to set tags: %w", err)
		}
	}
	if ingredients != nil {
		resolved, err := s.ingredients.Resolve(tx, recipe.UserID, types.Names(ingredients))
		if err != nil {
			return err
		}
		if err := replaceAssociation(tx, recipe, "Ingredients", resolved); err != nil {
			return fmt.Errorf("failed to set ingredients: %w", err)
		}
	}
	return nil
}

func replaceAssociation[T models.CatalogEntry](tx *gorm.DB, recipe *models.Recipe, field string, entries []T) error {
	assoc := tx.Model(recipe).Association(field)
	if len(entries) == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(entries)
}

// lock loads the owner's recipe inside tx, taking a row lock where the
// database supports it.
func (s *RecipeService) lock(tx *gorm.DB, owner, id uuid.UUID) (*models.Recipe, error) {
	q := tx.Scopes(OwnedBy(owner))
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var recipe models.Recipe
	if err := q.First(&recipe, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &recipe, nil
}

func withCatalog(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("name") })
}

func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
