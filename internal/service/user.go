package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-api/internal/models"
	"github.com/pageza/recipe-api/internal/types"
)

// UserService owns account records and credential checks.
type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// NewUser describes an account to create.
type NewUser struct {
	Email    string
	Password string
	Name     string
	IsStaff  bool
}

// Register creates a regular, active account.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.CreateUser(ctx, NewUser{Email: email, Password: password, Name: name})
}

// CreateUser creates an active account, staff or not.
func (s *UserService) CreateUser(ctx context.Context, in NewUser) (*models.User, error) {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        NormalizeEmail(in.Email),
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      in.IsStaff,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user created", zap.String("user_id", user.ID.String()), zap.Bool("staff", user.IsStaff))
	return &user, nil
}

// Authenticate returns the active user matching the credentials. Every
// failure is ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		burnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !checkPassword(password, user.PasswordHash) || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of req to the user.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateUserRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = hash
	}
	return s.update(ctx, id, updates)
}

// ListUsers returns every account, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// AdminUpdate applies staff-only changes to an account.
func (s *UserService) AdminUpdate(ctx context.Context, id uuid.UUID, req *types.AdminUpdateUserRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsStaff != nil {
		updates["is_staff"] = *req.IsStaff
	}

	user, err := s.update(ctx, id, updates)
	if err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		// a deactivated account keeps no live tokens
		if err := s.db.WithContext(ctx).Where("user_id = ?", id).Delete(&models.AuthToken{}).Error; err != nil {
			return nil, fmt.Errorf("failed to revoke tokens: %w", err)
		}
	}
	return user, nil
}

func (s *UserService) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.GetUser(ctx, id)
}

// NormalizeEmail trims the address and lower-cases its domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
