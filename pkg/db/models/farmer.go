package models

import (
	"time"

	"github.com/google/uuid"
)

// Farmer belongs to exactly one cooperative and supplies produce to it.
type Farmer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	CooperativeID uuid.UUID `gorm:"column:cooperative_id;type:uuid;not null;index"`
	Name          string    `gorm:"column:name;not null"`
	Phone         *string   `gorm:"column:phone"`
	Village       *string   `gorm:"column:village"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
