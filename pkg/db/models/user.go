package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email         string     `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	FullName      string     `gorm:"column:full_name;not null"`
	Phone         *string    `gorm:"column:phone"`
	Role          enums.Role `gorm:"column:role;type:text;not null"`
	CooperativeID *uuid.UUID `gorm:"column:cooperative_id;type:uuid"`
	RetailerID    *uuid.UUID `gorm:"column:retailer_id;type:uuid"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true"`
	LastLoginAt   *time.Time `gorm:"column:last_login_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
