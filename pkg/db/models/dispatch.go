package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// Dispatch records produce shipped from the aggregator to a retailer.
// Whether a dispatch moves aggregator stock is controlled by a feature flag.
type Dispatch struct {
	ID           int64                `gorm:"column:id;primaryKey;autoIncrement:false"`
	RetailerID   uuid.UUID            `gorm:"column:retailer_id;type:uuid;not null;index"`
	RetailerName string               `gorm:"column:retailer_name;not null"`
	ProductID    uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName  string               `gorm:"column:product_name;not null"`
	Quantity     decimal.Decimal      `gorm:"column:quantity;type:numeric(14,3);not null"`
	Rate         decimal.Decimal      `gorm:"column:rate;type:numeric(14,2);not null"`
	Amount       decimal.Decimal      `gorm:"column:amount;type:numeric(16,2);not null"`
	Status       enums.DispatchStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	VehicleNo    *string              `gorm:"column:vehicle_no"`
	DispatchedOn time.Time            `gorm:"column:dispatched_on;type:date;not null"`
	Notes        *string              `gorm:"column:notes"`
	CreatedBy    uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
