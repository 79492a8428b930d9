package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a produce type traded across the network (for example onion, soybean).
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	Category  *string   `gorm:"column:category"`
	Unit      string    `gorm:"column:unit;not null;default:'quintal'"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
