package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// Sale records produce sold by a cooperative to the aggregator.
// Stock moves only on status transitions into and out of completed.
type Sale struct {
	ID              int64            `gorm:"column:id;primaryKey;autoIncrement:false"`
	CooperativeID   uuid.UUID        `gorm:"column:cooperative_id;type:uuid;not null;index"`
	CooperativeName string           `gorm:"column:cooperative_name;not null"`
	ProductID       uuid.UUID        `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName     string           `gorm:"column:product_name;not null"`
	Quantity        decimal.Decimal  `gorm:"column:quantity;type:numeric(14,3);not null"`
	Rate            decimal.Decimal  `gorm:"column:rate;type:numeric(14,2);not null"`
	Amount          decimal.Decimal  `gorm:"column:amount;type:numeric(16,2);not null"`
	Status          enums.SaleStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SoldOn          time.Time        `gorm:"column:sold_on;type:date;not null"`
	Notes           *string          `gorm:"column:notes"`
	CreatedBy       uuid.UUID        `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
