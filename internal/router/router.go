package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/api"
	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/service"
)

// Dependencies carries everything the routes are built from.
type Dependencies struct {
	DB          *gorm.DB
	Users       *service.UserService
	Tokens      *service.TokenService
	Tags        *service.CatalogService[models.Tag]
	Ingredients *service.CatalogService[models.Ingredient]
	Recipes     *service.RecipeService
	// CreateLimiter throttles recipe creation per user; nil disables it.
	CreateLimiter middleware.Limiter
	CORSOrigins   []string
	Logger        *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	api.RegisterValidation()

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.ErrorHandler(deps.Logger))
	router.Use(middleware.CORS(deps.CORSOrigins))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	health := api.NewHealthHandler(deps.DB, deps.Logger)
	router.GET("/health", health.HealthCheck)

	auth := middleware.AuthMiddleware(deps.Tokens, deps.Logger)
	root := router.Group("/api")

	api.NewUserHandler(deps.Users, deps.Tokens).RegisterRoutes(root, auth)

	recipe := root.Group("/recipe")
	recipe.Use(auth)
	{
		var createLimit gin.HandlerFunc
		if deps.CreateLimiter != nil {
			createLimit = middleware.RateLimit(deps.CreateLimiter, deps.Logger)
		}
		api.NewRecipeHandler(deps.Recipes).RegisterRoutes(recipe, createLimit)
		api.NewCatalogHandler(deps.Tags, "/tags").RegisterRoutes(recipe)
		api.NewCatalogHandler(deps.Ingredients, "/ingredients").RegisterRoutes(recipe)
	}

	admin := root.Group("/admin")
	admin.Use(auth, middleware.RequireStaff())
	api.NewAdminHandler(deps.Users, deps.Logger).RegisterRoutes(admin)

	return router
}
