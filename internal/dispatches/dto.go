package dispatches

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mahafpc/agrichain-backend/pkg/enums"
)

// CreateInput records goods shipped from the aggregator to a retailer.
type CreateInput struct {
	RetailerID   uuid.UUID       `json:"retailer_id" validate:"required"`
	ProductID    uuid.UUID       `json:"product_id" validate:"required"`
	Quantity     decimal.Decimal `json:"quantity" validate:"required"`
	Rate         decimal.Decimal `json:"rate" validate:"required"`
	DispatchedOn time.Time       `json:"dispatched_on" validate:"required"`
	VehicleNo    *string         `json:"vehicle_no,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

// UpdateInput edits quantity and rate on a pending dispatch.
type UpdateInput struct {
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Rate      *decimal.Decimal `json:"rate,omitempty"`
	VehicleNo *string          `json:"vehicle_no,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

// TransitionInput moves a dispatch through its status machine.
type TransitionInput struct {
	Status enums.DispatchStatus `json:"status" validate:"required"`
}

// ListFilter narrows dispatch reads.
type ListFilter struct {
	RetailerID *uuid.UUID
	ProductID  *uuid.UUID
	Status     *enums.DispatchStatus
	From       *time.Time
	To         *time.Time
	Limit      int
}
