package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipe-api/internal/models"
)

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"max=255"`
}

// UpdateUserRequest carries the profile fields a user may change on
// themselves. Nil fields are left untouched.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	Password *string `json:"password"`
}

// ReplaceUserRequest is the full profile body for PUT. Email is not
// writable here.
type ReplaceUserRequest struct {
	Name     string `json:"name" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of the authenticated user.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}

// CreateUserRequest is the staff-only account creation body.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"max=255"`
	IsStaff  bool   `json:"is_staff"`
}

// AdminUpdateUserRequest is the staff-only account edit body.
type AdminUpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
	IsStaff  *bool   `json:"is_staff"`
}

// AdminUserResponse is the staff view of an account.
type AdminUserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

func NewAdminUserResponse(u *models.User) AdminUserResponse {
	return AdminUserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}
