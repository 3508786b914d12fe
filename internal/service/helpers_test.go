package service_test

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/testhelpers"
	"github.com/pageza/recipe-api/internal/types"
)

type services struct {
	db          *gorm.DB
	users       *service.UserService
	tokens      *service.TokenService
	tags        *service.CatalogService[models.Tag]
	ingredients *service.CatalogService[models.Ingredient]
	recipes     *service.RecipeService
}

func newServices(t *testing.T, db *gorm.DB, images service.ImageStore) *services {
	t.Helper()
	log := zap.NewNop()
	tags := service.NewTagService(db, log)
	ingredients := service.NewIngredientService(db, log)
	return &services{
		db:          db,
		users:       service.NewUserService(db, log),
		tokens:      service.NewTokenService(db, "test-secret", time.Hour, log),
		tags:        tags,
		ingredients: ingredients,
		recipes:     service.NewRecipeService(db, tags, ingredients, images, log),
	}
}

func setup(t *testing.T) *services {
	return newServices(t, testhelpers.SetupTestDatabase(t), nil)
}

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
func refs(names ...string) []types.NamedRef {
	out := make([]types.NamedRef, len(names))
	for i, n := range names {
		out[i] = types.NamedRef{Name: n}
	}
	return out
}

func sampleRecipe(title string) *types.RecipeRequest {
	return &types.RecipeRequest{
		Title:       title,
		TimeMinutes: intPtr(22),
		Price:       floatPtr(5.25),
		Description: "Sample description",
		Link:        "https://example.com/recipe.pdf",
	}
}

func tagNames(tags []models.Tag) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.Name
	}
	return out
}

func ingredientNames(ingredients []models.Ingredient) []string {
	out := make([]string, len(ingredients))
	for i, ing := range ingredients {
		out[i] = ing.Name
	}
	return out
}
