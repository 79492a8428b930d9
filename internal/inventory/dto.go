package inventory

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Adjustment carries one signed ledger change for a (cooperative, product) key.
// ProductName and Unit seed the stock row when the increment creates it;
// existing rows keep their stored values.
type Adjustment struct {
	CooperativeID uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	Unit          string
	Delta         decimal.Decimal
	MinStock      decimal.Decimal
	MaxStock      decimal.Decimal
}

// SetAbsoluteInput overwrites a stock row directly, outside the
// procurement and sale flows.
type SetAbsoluteInput struct {
	CooperativeID uuid.UUID        `json:"cooperative_id" validate:"required"`
	ProductID     uuid.UUID        `json:"product_id" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity"`
	MinStock      *decimal.Decimal `json:"min_stock,omitempty"`
	MaxStock      *decimal.Decimal `json:"max_stock,omitempty"`
}

// ListFilter narrows stock reads.
type ListFilter struct {
	CooperativeID *uuid.UUID
	ProductID     *uuid.UUID
}
