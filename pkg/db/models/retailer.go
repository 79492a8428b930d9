package models

import (
	"time"

	"github.com/google/uuid"
)

// Retailer is a downstream buyer that purchases aggregated produce.
type Retailer struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Code          string    `gorm:"column:code;type:text;not null;uniqueIndex"`
	District      string    `gorm:"column:district;not null"`
	ContactPhone  *string   `gorm:"column:contact_phone"`
	ContactPerson *string   `gorm:"column:contact_person"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
