package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockRow tracks the live quantity held per cooperative and product.
// Rows are created lazily on the first increment. Product name and unit
// are denormalized from the product master at creation time.
type StockRow struct {
	CooperativeID uuid.UUID       `gorm:"column:cooperative_id;type:uuid;primaryKey"`
	ProductID     uuid.UUID       `gorm:"column:product_id;type:uuid;primaryKey"`
	ProductName   string          `gorm:"column:product_name;not null"`
	Unit          string          `gorm:"column:unit;not null;default:'quintal'"`
	Quantity      decimal.Decimal `gorm:"column:quantity;type:numeric(14,3);not null;default:0"`
	MinStock      decimal.Decimal `gorm:"column:min_stock;type:numeric(14,3);not null;default:0"`
	MaxStock      decimal.Decimal `gorm:"column:max_stock;type:numeric(14,3);not null;default:0"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the plural form used by raw ledger statements.
func (StockRow) TableName() string {
	return "stock_rows"
}
