// Package integration runs the HTTP API end to end against PostgreSQL.
package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/router"
	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/testhelpers"
	"github.com/pageza/recipe-api/internal/types"
)

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestRecipeLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupPostgresDatabase(t)
	log := zap.NewNop()

	tags := service.NewTagService(db, log)
	ingredients := service.NewIngredientService(db, log)
	tokens := service.NewTokenService(db, "integration-secret", time.Hour, log)
	r := router.SetupRouter(router.Dependencies{
		DB:            db,
		Users:         service.NewUserService(db, log),
		Tokens:        tokens,
		Tags:          tags,
		Ingredients:   ingredients,
		Recipes:       service.NewRecipeService(db, tags, ingredients, nil, log),
		CreateLimiter: middleware.NewMemoryLimiter(100, time.Hour),
		Logger:        log,
	})
	c := &client{t: t, router: r}

	w := c.do(http.MethodPost, "/api/user/create", gin.H{"email": "cook@Example.com", "password": "secret123", "name": "Cook"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = c.do(http.MethodPost, "/api/user/token", gin.H{"email": "cook@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	c.token = decode[types.TokenResponse](t, w).Token

	w = c.do(http.MethodPost, "/api/recipe/recipes", gin.H{
		"title":        "Thai curry",
		"time_minutes": 30,
		"price":        7.499,
		"tags":         []gin.H{{"name": "Thai"}, {"name": "Dinner"}, {"name": "Thai"}},
		"ingredients":  []gin.H{{"name": "Coconut milk"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	curry := decode[types.RecipeDetailResponse](t, w)
	assert.Equal(t, 7.5, curry.Price)
	assert.Len(t, curry.Tags, 2)

	w = c.do(http.MethodPost, "/api/recipe/recipes", gin.H{
		"title":        "Pad thai",
		"time_minutes": 20,
		"price":        6,
		"tags":         []gin.H{{"name": "Thai"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	padThai := decode[types.RecipeDetailResponse](t, w)
	assert.Contains(t, []uuid.UUID{curry.Tags[0].ID, curry.Tags[1].ID}, padThai.Tags[0].ID, "existing tag is reused")

	w = c.do(http.MethodGet, "/api/recipe/recipes?tags="+padThai.Tags[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.RecipeResponse](t, w), 2)

	w = c.do(http.MethodPost, "/api/recipe/tags", gin.H{"name": "Unused"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodGet, "/api/recipe/tags?assigned_only=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assigned := decode[[]types.CatalogResponse](t, w)
	require.Len(t, assigned, 2)
	assert.Equal(t, "Thai", assigned[0].Name)
	assert.Equal(t, "Dinner", assigned[1].Name)

	w = c.do(http.MethodPatch, "/api/recipe/recipes/"+curry.ID.String(), gin.H{"tags": []gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[types.RecipeDetailResponse](t, w).Tags)

	w = c.do(http.MethodDelete, "/api/recipe/recipes/"+padThai.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, "/api/recipe/tags?assigned_only=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]types.CatalogResponse](t, w))

	w = c.do(http.MethodPost, "/api/user/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = c.do(http.MethodGet, "/api/recipe/recipes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
