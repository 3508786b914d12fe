package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/types"
)

// TokenService issues signed tokens and keeps the record of which ones are
// still valid. A token resolves only while its jti is stored.
type TokenService struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewTokenService creates a new TokenService instance
func NewTokenService(db *gorm.DB, secret string, ttl time.Duration, logger *zap.Logger) *TokenService {
	return &TokenService{
		db:     db,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Issue mints a token for user and records it.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (string, error) {
	now := s.now().UTC()
	record := models.AuthToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl),
	}

	claims := &types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        record.ID.String(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(record.ExpiresAt),
		},
		UserID: user.ID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND expires_at < ?", user.ID, now).Delete(&models.AuthToken{}).Error; err != nil {
			return err
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return signed, nil
}

// Resolve maps a presented token onto its active user.
func (s *TokenService) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.WithContext(ctx).
		Joins("JOIN auth_tokens ON auth_tokens.user_id = users.id").
		Where("auth_tokens.id = ? AND users.id = ?", claims.jti, claims.UserID).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidToken
	}
	return &user, nil
}

// Revoke forgets the token so it no longer resolves.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.AuthToken{}, "id = ?", claims.jti).Error; err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	s.logger.Info("token revoked", zap.String("user_id", claims.UserID.String()))
	return nil
}

type parsedClaims struct {
	*types.TokenClaims
	jti uuid.UUID
}

func (s *TokenService) parse(token string) (*parsedClaims, error) {
	claims := &types.TokenClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	jti, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &parsedClaims{TokenClaims: claims, jti: jti}, nil
}
