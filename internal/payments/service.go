package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/internal/activities"
	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

// CreateInput records a settlement against a farmer or a retailer.
type CreateInput struct {
	Kind          enums.PaymentKind `json:"kind" validate:"required"`
	CooperativeID uuid.UUID         `json:"cooperative_id,omitempty"`
	FarmerID      *uuid.UUID        `json:"farmer_id,omitempty"`
	RetailerID    *uuid.UUID        `json:"retailer_id,omitempty"`
	Amount        decimal.Decimal   `json:"amount" validate:"required"`
	PaidOn        time.Time         `json:"paid_on" validate:"required"`
	Note          *string           `json:"note,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// FarmerReader resolves farmer records for counterparty checks.
type FarmerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
}

// RetailerReader resolves retailer records for counterparty checks.
type RetailerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error)
}

// ActivityRecorder appends audit entries inside the payment transaction.
type ActivityRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input activities.RecordInput) error
}

// Service records and lists payments. Farmer payments settle procurement
// dues within a cooperative; retailer payments settle dispatch dues.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Payment, error)
	List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Payment, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	farmers   FarmerReader
	retailers RetailerReader
	audit     ActivityRecorder
}

// NewService builds a payment service with the required dependencies.
func NewService(repo Repository, tx txRunner, farmers FarmerReader, retailers RetailerReader, audit ActivityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if farmers == nil {
		return nil, fmt.Errorf("farmer reader required")
	}
	if retailers == nil {
		return nil, fmt.Errorf("retailer reader required")
	}
	if audit == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{repo: repo, tx: tx, farmers: farmers, retailers: retailers, audit: audit}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Payment, error) {
	if !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment kind %q", input.Kind))
	}
	cooperativeID, err := resolveCooperative(sc, input.CooperativeID)
	if err != nil {
		return nil, err
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.PaidOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "paid_on date required")
	}
	if err := sc.EnsureCooperativeWrite(cooperativeID); err != nil {
		return nil, err
	}

	switch input.Kind {
	case enums.PaymentKindFarmer:
		if input.FarmerID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id required for farmer payments")
		}
		if input.RetailerID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "retailer id not allowed on farmer payments")
		}
		farmer, err := s.farmers.FindByID(ctx, *input.FarmerID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farmer")
		}
		if farmer.CooperativeID != cooperativeID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer does not belong to the cooperative")
		}
	case enums.PaymentKindRetailer:
		if input.RetailerID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "retailer id required for retailer payments")
		}
		if input.FarmerID != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer id not allowed on retailer payments")
		}
		if _, err := s.retailers.FindByID(ctx, *input.RetailerID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
		}
	}

	payment := &models.Payment{
		ID:            uuid.New(),
		Kind:          input.Kind,
		CooperativeID: cooperativeID,
		FarmerID:      input.FarmerID,
		RetailerID:    input.RetailerID,
		Amount:        input.Amount,
		PaidOn:        input.PaidOn,
		Note:          input.Note,
		CreatedBy:     sc.UserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment")
		}
		entity := payment.ID.String()
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivityPaymentRecorded,
			ActorUserID:   sc.UserID,
			CooperativeID: &cooperativeID,
			EntityID:      &entity,
			Details: map[string]string{
				"kind":   payment.Kind.String(),
				"amount": payment.Amount.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Payment, error) {
	switch sc.Role {
	case enums.RoleAggregator, enums.RoleAdmin:
	case enums.RoleCooperative:
		if sc.CooperativeID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative scope missing")
		}
		if filter.CooperativeID != nil && *filter.CooperativeID != *sc.CooperativeID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative data not visible to caller")
		}
		filter.CooperativeID = sc.CooperativeID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payments not visible to caller")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return rows, nil
}

func resolveCooperative(sc scope.Scope, requested uuid.UUID) (uuid.UUID, error) {
	if sc.Role == enums.RoleCooperative {
		if sc.CooperativeID == nil {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative scope missing")
		}
		if requested != uuid.Nil && requested != *sc.CooperativeID {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative mismatch")
		}
		return *sc.CooperativeID, nil
	}
	if requested == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cooperative id required")
	}
	return requested, nil
}
