package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-api/internal/middleware"
	"github.com/pageza/recipe-api/internal/service"
	"github.com/pageza/recipe-api/internal/types"
)

// UserHandler serves account registration, token exchange and the
// authenticated user's own profile.
type UserHandler struct {
	users  *service.UserService
	tokens *service.TokenService
}

func NewUserHandler(users *service.UserService, tokens *service.TokenService) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	user := router.Group("/user")
	{
		user.POST("/create", h.Create)
		user.POST("/token", h.Token)
		user.GET("/me", auth, h.Me)
		user.PUT("/me", auth, h.ReplaceMe)
		user.PATCH("/me", auth, h.UpdateMe)
		user.POST("/logout", auth, h.Logout)
	}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, types.NewUserResponse(user))
}

func (h *UserHandler) Token(c *gin.Context) {
	var req types.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.tokens.Issue(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TokenResponse{Token: token})
}

func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

// UpdateMe changes any subset of name and password.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req types.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.updateProfile(c, &req)
}

// ReplaceMe requires both name and password.
func (h *UserHandler) ReplaceMe(c *gin.Context) {
	var req types.ReplaceUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.updateProfile(c, &types.UpdateUserRequest{Name: &req.Name, Password: &req.Password})
}

func (h *UserHandler) updateProfile(c *gin.Context, req *types.UpdateUserRequest) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.NewUserResponse(user))
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.tokens.Revoke(c.Request.Context(), middleware.CurrentToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
