package procurements

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInput records produce bought from a farmer. CooperativeID is
// taken from the caller's scope for cooperative users; aggregator and
// admin callers must name the cooperative explicitly.
type CreateInput struct {
	CooperativeID uuid.UUID       `json:"cooperative_id,omitempty"`
	FarmerID      uuid.UUID       `json:"farmer_id" validate:"required"`
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	Rate          decimal.Decimal `json:"rate" validate:"required"`
	ProcuredOn    time.Time       `json:"procured_on" validate:"required"`
	Notes         *string         `json:"notes,omitempty"`
}

// UpdateInput edits quantity and rate on an existing procurement.
// Quantity changes post a compensating delta to the stock ledger.
type UpdateInput struct {
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Rate     *decimal.Decimal `json:"rate,omitempty"`
	Notes    *string          `json:"notes,omitempty"`
}

// ListFilter narrows procurement reads.
type ListFilter struct {
	CooperativeID *uuid.UUID
	FarmerID      *uuid.UUID
	ProductID     *uuid.UUID
	From          *time.Time
	To            *time.Time
	Limit         int
}
