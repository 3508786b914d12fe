package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/types"
)

// AdminHandler gives staff accounts control over every user.
type AdminHandler struct {
	users  *service.UserService
	logger *zap.Logger
}

func NewAdminHandler(users *service.UserService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		users:  users,
		logger: logger,
	}
}

// RegisterRoutes expects router to be already limited to staff.
func (h *AdminHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
		users.PATCH("/:id", h.UpdateUser)
	}
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]types.AdminUserResponse, len(users))
	for i := range users {
		out[i] = types.NewAdminUserResponse(&users[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req types.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), service.NewUser{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		IsStaff:  req.IsStaff,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewAdminUserResponse(user))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewAdminUserResponse(user))
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var req types.AdminUpdateUserRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.AdminUpdate(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("user updated by staff", zap.String("user_id", user.ID.String()))
	c.JSON(http.StatusOK, types.NewAdminUserResponse(user))
}
