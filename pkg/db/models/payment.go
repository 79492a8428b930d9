package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// Payment records money settled against a farmer or a retailer.
type Payment struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Kind          enums.PaymentKind `gorm:"column:kind;type:text;not null"`
	CooperativeID uuid.UUID         `gorm:"column:cooperative_id;type:uuid;not null;index"`
	FarmerID      *uuid.UUID        `gorm:"column:farmer_id;type:uuid;index"`
	RetailerID    *uuid.UUID        `gorm:"column:retailer_id;type:uuid;index"`
	Amount        decimal.Decimal   `gorm:"column:amount;type:numeric(16,2);not null"`
	PaidOn        time.Time         `gorm:"column:paid_on;type:date;not null"`
	Note          *string           `gorm:"column:note"`
	CreatedBy     uuid.UUID         `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
