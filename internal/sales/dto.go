package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// CreateInput records a sale from a cooperative to the aggregator.
// Sales start pending; stock only moves on completion.
type CreateInput struct {
	CooperativeID uuid.UUID       `json:"cooperative_id,omitempty"`
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	Rate          decimal.Decimal `json:"rate" validate:"required"`
	SoldOn        time.Time       `json:"sold_on" validate:"required"`
	Notes         *string         `json:"notes,omitempty"`
}

// UpdateInput edits quantity and rate on a pending sale.
type UpdateInput struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// TransitionInput moves a sale through its status machine.
type TransitionInput struct {
	Status enums.SaleStatus `json:"status" validate:"required"`
}

// ListFilter narrows sale reads.
type ListFilter struct {
	CooperativeID *uuid.UUID
	ProductID     *uuid.UUID
	Status        *enums.SaleStatus
	From          *time.Time
	To            *time.Time
	Limit         int
}
