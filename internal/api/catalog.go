package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"

	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/types"
)

// CatalogHandler exposes one user-owned catalog (tags or ingredients)
// under path.
type CatalogHandler[T models.CatalogEntry] struct {
	catalog *service.CatalogService[T]
	path    string
}

func NewCatalogHandler[T models.CatalogEntry](catalog *service.CatalogService[T], path string) *CatalogHandler[T] {
	return &CatalogHandler[T]{catalog: catalog, path: path}
}

// RegisterRoutes expects router to be already authenticated.
func (h *CatalogHandler[T]) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group(h.path)
	{
		entries.GET("", h.List)
		entries.POST("", h.Create)
		entries.GET("/:id", h.Get)
		entries.PUT("/:id", h.Update)
		entries.PATCH("/:id", h.Patch)
		entries.DELETE("/:id", h.Delete)
	}
}

func (h *CatalogHandler[T]) List(c *gin.Context) {
	owner, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var opts service.ListOptions
	if raw := c.Query("assigned_only"); raw != "" {
		assigned, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "invalid assigned_only",
				"fields": map[string]string{"assigned_only": "must be 0 or 1"},
			})
			return
		}
		opts.AssignedOnly = assigned
	}

	entries, err := h.catalog.List(c.Request.Context(), owner, opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewCatalogResponses(entries))
}

func (h *CatalogHandler[T]) Create(c *gin.Context) {
	owner, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req types.CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entry, err := h.catalog.Create(c.Request.Context(), owner, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewCatalogResponse(*entry))
}

func (h *CatalogHandler[T]) Get(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	entry, err := h.catalog.Get(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewCatalogResponse(*entry))
}

func (h *CatalogHandler[T]) Update(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req types.CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	h.rename(c, owner, id, req.Name)
}

func (h *CatalogHandler[T]) Patch(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req types.PatchCatalogRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	if req.Name == nil {
		h.Get(c)
		return
	}
	h.rename(c, owner, id, *req.Name)
}

func (h *CatalogHandler[T]) rename(c *gin.Context, owner, id uuid.UUID, name string) {
	entry, err := h.catalog.Rename(c.Request.Context(), owner, id, name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewCatalogResponse(*entry))
}

func (h *CatalogHandler[T]) Delete(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	if err := h.catalog.Delete(c.Request.Context(), owner, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ownerAndID reads the authenticated owner and the :id path parameter. A
// malformed id cannot name a record, so it is reported as not found.
func ownerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}

// bindOptionalJSON binds a partial update body; an empty body binds nothing.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if c.Request.ContentLength == 0 {
		return binding.Validator.ValidateStruct(obj)
	}
	return c.ShouldBindJSON(obj)
}
