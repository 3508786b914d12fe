package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/router"
	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router  *gin.Engine
	db      *gorm.DB
	tokens  *service.TokenService
	recipes *service.RecipeService
}

type appOption func(*appSettings)

type appSettings struct {
	images  service.ImageStore
	limiter middleware.Limiter
	logger  *zap.Logger
}

func withImages(store service.ImageStore) appOption {
	return func(s *appSettings) { s.images = store }
}

func withLimiter(l middleware.Limiter) appOption {
	return func(s *appSettings) { s.limiter = l }
}

func withLogger(l *zap.Logger) appOption {
	return func(s *appSettings) { s.logger = l }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()
	var settings appSettings
	for _, opt := range opts {
		opt(&settings)
	}

	db := testhelpers.SetupTestDatabase(t)
	log := settings.logger
	if log == nil {
		log = zap.NewNop()
	}
	tags := service.NewTagService(db, log)
	ingredients := service.NewIngredientService(db, log)
	tokens := service.NewTokenService(db, "test-secret", time.Hour, log)
	recipes := service.NewRecipeService(db, tags, ingredients, settings.images, log)

	r := router.SetupRouter(router.Dependencies{
		DB:            db,
		Users:         service.NewUserService(db, log),
		Tokens:        tokens,
		Tags:          tags,
		Ingredients:   ingredients,
		Recipes:       recipes,
		CreateLimiter: settings.limiter,
		CORSOrigins:   []string{"http://localhost:3000"},
		Logger:        log,
	})

	return &testApp{router: r, db: db, tokens: tokens, recipes: recipes}
}

// login creates a user and returns it with a valid token.
func (a *testApp) login(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateTestUser(t, a.db, email)
	token, err := a.tokens.Issue(context.Background(), user)
	require.NoError(t, err)
	return user, token
}

func (a *testApp) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}
