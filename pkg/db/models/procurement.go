package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Procurement records produce bought from a farmer by a cooperative.
// Farmer and product fields are snapshotted at creation and never
// refreshed from the masters. IDs come from the procurement sequence.
type Procurement struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement:false"`
	CooperativeID uuid.UUID       `gorm:"column:cooperative_id;type:uuid;not null;index"`
	FarmerID      uuid.UUID       `gorm:"column:farmer_id;type:uuid;not null;index"`
	FarmerName    string          `gorm:"column:farmer_name;not null"`
	FarmerMobile  *string         `gorm:"column:farmer_mobile"`
	FarmerVillage *string         `gorm:"column:farmer_village"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index"`
	ProductName   string          `gorm:"column:product_name;not null"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null"`
	Rate          decimal.Decimal `gorm:"column:rate;type:numeric(14,2);not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(16,2);not null"`
	ProcuredOn    time.Time       `gorm:"column:procured_on;type:date;not null"`
	Notes         *string         `gorm:"column:notes"`
	CreatedBy     uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
