package api

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/types"
)

// MaxImageSize bounds recipe image uploads.
const MaxImageSize = 5 << 20

type RecipeHandler struct {
	recipes *service.RecipeService
}

func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes expects router to be already authenticated. createLimit,
// when set, runs before recipe creation only.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup, createLimit gin.HandlerFunc) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		if createLimit != nil {
			recipes.POST("", createLimit, h.CreateRecipe)
		} else {
			recipes.POST("", h.CreateRecipe)
		}
		recipes.GET("/:id", h.GetRecipe)
		recipes.PUT("/:id", h.ReplaceRecipe)
		recipes.PATCH("/:id", h.PatchRecipe)
		recipes.DELETE("/:id", h.DeleteRecipe)
		recipes.POST("/:id/upload-image", h.UploadImage)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	owner, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var filter types.RecipeFilter
	var err error
	if filter.TagIDs, err = parseIDs(c.Query("tags")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tags filter", "fields": map[string]string{"tags": err.Error()}})
		return
	}
	if filter.IngredientIDs, err = parseIDs(c.Query("ingredients")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredients filter", "fields": map[string]string{"ingredients": err.Error()}})
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), owner, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeResponses(recipes))
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetailResponse(recipe))
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	owner, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), owner, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewRecipeDetailResponse(recipe))
}

func (h *RecipeHandler) ReplaceRecipe(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipes.Replace(c.Request.Context(), owner, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetailResponse(recipe))
}

func (h *RecipeHandler) PatchRecipe(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req types.PatchRecipeRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := h.recipes.Patch(c.Request.Context(), owner, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewRecipeDetailResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	if err := h.recipes.Delete(c.Request.Context(), owner, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" field holding a JPEG or PNG.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxImageSize+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required", "fields": map[string]string{"image": "is required"}})
		return
	}
	if header.Size > MaxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "image too large",
			"fields": map[string]string{"image": fmt.Sprintf("must not exceed %d bytes", MaxImageSize)},
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open upload: %w", err))
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		respondError(c, fmt.Errorf("failed to read upload: %w", err))
		return
	}
	contentType := http.DetectContentType(sniff[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		respondError(c, fmt.Errorf("failed to rewind upload: %w", err))
		return
	}

	recipe, err := h.recipes.UploadImage(c.Request.Context(), owner, id, file, header.Size, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeImageResponse{ID: recipe.ID, Image: recipe.Image})
}

// parseIDs splits a comma separated id list. Empty input yields nil.
func parseIDs(raw string) ([]uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid id", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
