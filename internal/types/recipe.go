package types

import (
	"github.com/google/uuid"

	"github.com/pageza/recipe-api/internal/models"
)

// RecipeRequest is the full recipe body used by create and replace. A nil
// Tags or Ingredients slice means the field was absent and leaves the
// current associations alone; an empty slice clears them.
type RecipeRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	TimeMinutes *int       `json:"time_minutes" binding:"required,gte=0"`
	Price       *float64   `json:"price" binding:"required,gte=0,lt=1000"`
	Description string     `json:"description"`
	Link        string     `json:"link" binding:"omitempty,url,max=255"`
	Tags        []NamedRef `json:"tags" binding:"dive"`
	Ingredients []NamedRef `json:"ingredients" binding:"dive"`
}

// PatchRecipeRequest carries a partial recipe update. Nil fields are left untouched.
type PatchRecipeRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=255"`
	TimeMinutes *int       `json:"time_minutes" binding:"omitempty,gte=0"`
	Price       *float64   `json:"price" binding:"omitempty,gte=0,lt=1000"`
	Description *string    `json:"description"`
	Link        *string    `json:"link" binding:"omitempty,url,max=255"`
	Tags        []NamedRef `json:"tags" binding:"dive"`
	Ingredients []NamedRef `json:"ingredients" binding:"dive"`
}

// RecipeFilter narrows a recipe listing to recipes carrying any of the
// given tag ids and any of the given ingredient ids.
type RecipeFilter struct {
	TagIDs        []uuid.UUID
	IngredientIDs []uuid.UUID
}

// RecipeResponse is the list view of a recipe.
type RecipeResponse struct {
	ID          uuid.UUID         `json:"id"`
	Title       string            `json:"title"`
	TimeMinutes int               `json:"time_minutes"`
	Price       float64           `json:"price"`
	Link        string            `json:"link"`
	Tags        []CatalogResponse `json:"tags"`
	Ingredients []CatalogResponse `json:"ingredients"`
}

// RecipeDetailResponse is the single-recipe view.
type RecipeDetailResponse struct {
	RecipeResponse
	Description string `json:"description"`
	Image       string `json:"image"`
}

// RecipeImageResponse is returned after an image upload.
type RecipeImageResponse struct {
	ID    uuid.UUID `json:"id"`
	Image string    `json:"image"`
}

func NewRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        NewCatalogResponses(r.Tags),
		Ingredients: NewCatalogResponses(r.Ingredients),
	}
}

func NewRecipeResponses(recipes []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		out[i] = NewRecipeResponse(&recipes[i])
	}
	return out
}

func NewRecipeDetailResponse(r *models.Recipe) RecipeDetailResponse {
	return RecipeDetailResponse{
		RecipeResponse: NewRecipeResponse(r),
		Description:    r.Description,
		Image:          r.Image,
	}
}
