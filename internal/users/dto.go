package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credential material.
type UserDTO struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FullName      string     `json:"full_name"`
	Phone         *string    `json:"phone,omitempty"`
	Role          enums.Role `json:"role"`
	CooperativeID *uuid.UUID `json:"cooperative_id,omitempty"`
	RetailerID    *uuid.UUID `json:"retailer_id,omitempty"`
	IsActive      bool       `json:"is_active"`
	LastLoginAt   *time.Time `json:"last_login_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CreateInput carries the fields needed to provision a user account.
type CreateInput struct {
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=8"`
	FullName      string     `json:"full_name" validate:"required"`
	Phone         *string    `json:"phone,omitempty"`
	Role          enums.Role `json:"role" validate:"required"`
	CooperativeID *uuid.UUID `json:"cooperative_id,omitempty"`
	RetailerID    *uuid.UUID `json:"retailer_id,omitempty"`
}

// UpdateInput carries partial edits to a user account.
type UpdateInput struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// FromModel converts a persisted user into its transport shape.
func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Phone:         u.Phone,
		Role:          u.Role,
		CooperativeID: u.CooperativeID,
		RetailerID:    u.RetailerID,
		IsActive:      u.IsActive,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
