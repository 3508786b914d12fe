package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/service"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextUser   = "user"
	ContextToken  = "token"
)

// TokenResolver maps a presented token to its active owner.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware requires a valid "Token <t>" or "Bearer <t>" Authorization header.
func AuthMiddleware(resolver TokenResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}

		user, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				logger.Error("failed to resolve token", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUser, user)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// RequireStaff rejects authenticated users without the staff flag.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			return
		}
		if !user.IsStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// CurrentUserID returns the authenticated user's id.
func CurrentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// CurrentToken returns the raw token the request authenticated with.
func CurrentToken(c *gin.Context) string {
	return c.GetString(ContextToken)
}

func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return "", false
	}
	switch strings.ToLower(parts[0]) {
	case "token", "bearer":
		return parts[1], true
	}
	return "", false
}
