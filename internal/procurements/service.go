package procurements

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/internal/activities"
	"github.com/mahafpc/agrichain-backend/internal/inventory"
	"github.com/mahafpc/agrichain-backend/internal/sequence"
	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// FarmerReader resolves farmer masters for ownership checks and snapshots.
type FarmerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Farmer, error)
}

// ProductReader resolves product masters for snapshots.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// StockLedger is the slice of the inventory service the lifecycle needs.
type StockLedger interface {
	Increment(ctx context.Context, tx *gorm.DB, adj inventory.Adjustment) error
	Decrement(ctx context.Context, tx *gorm.DB, cooperativeID, productID uuid.UUID, delta decimal.Decimal) error
}

// ActivityRecorder appends audit entries inside the lifecycle transaction.
type ActivityRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input activities.RecordInput) error
}

type sequencer interface {
	NextIDTx(ctx context.Context, tx *gorm.DB, series string) (int64, error)
}

// Service drives the procurement lifecycle. Every mutation runs the
// event write, the ledger delta and the audit entry in one transaction.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Procurement, error)
	Update(ctx context.Context, sc scope.Scope, id int64, input UpdateInput) (*models.Procurement, error)
	Delete(ctx context.Context, sc scope.Scope, id int64) error
	FindByID(ctx context.Context, sc scope.Scope, id int64) (*models.Procurement, error)
	List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Procurement, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	seq      sequencer
	ledger   StockLedger
	farmers  FarmerReader
	products ProductReader
	audit    ActivityRecorder
}

// NewService builds a procurement service with the required dependencies.
func NewService(repo Repository, tx txRunner, seq sequencer, ledger StockLedger, farmers FarmerReader, products ProductReader, audit ActivityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("procurements repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequence service required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	if farmers == nil {
		return nil, fmt.Errorf("farmer reader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if audit == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		seq:      seq,
		ledger:   ledger,
		farmers:  farmers,
		products: products,
		audit:    audit,
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Procurement, error) {
	cooperativeID, err := resolveCooperative(sc, input.CooperativeID)
	if err != nil {
		return nil, err
	}
	if input.FarmerID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer and product ids required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Rate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
	}
	if input.ProcuredOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "procured_on date required")
	}
	if err := sc.EnsureCooperativeWrite(cooperativeID); err != nil {
		return nil, err
	}

	farmer, err := s.farmers.FindByID(ctx, input.FarmerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "farmer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load farmer")
	}
	if farmer.CooperativeID != cooperativeID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "farmer does not belong to the cooperative")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	procurement := &models.Procurement{
		CooperativeID: cooperativeID,
		FarmerID:      farmer.ID,
		FarmerName:    farmer.Name,
		FarmerMobile:  farmer.Phone,
		FarmerVillage: farmer.Village,
		ProductID:     product.ID,
		ProductName:   product.Name,
		Quantity:      input.Quantity,
		Rate:          input.Rate,
		Amount:        input.Quantity.Mul(input.Rate),
		ProcuredOn:    input.ProcuredOn,
		Notes:         input.Notes,
		CreatedBy:     sc.UserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := s.seq.NextIDTx(ctx, tx, sequence.SeriesProcurement)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue procurement id")
		}
		procurement.ID = id

		if err := s.repo.WithTx(tx).Create(ctx, procurement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist procurement")
		}
		if err := s.ledger.Increment(ctx, tx, inventory.Adjustment{
			CooperativeID: cooperativeID,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Unit:          product.Unit,
			Delta:         input.Quantity,
		}); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivityProcurementCreated,
			ActorUserID:   sc.UserID,
			CooperativeID: &cooperativeID,
			EntityID:      entityID(procurement.ID),
			Details: map[string]string{
				"product":  product.Name,
				"farmer":   farmer.Name,
				"quantity": input.Quantity.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return procurement, nil
}

func (s *service) Update(ctx context.Context, sc scope.Scope, id int64, input UpdateInput) (*models.Procurement, error) {
	procurement, err := s.findOwned(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	newQuantity := procurement.Quantity
	if input.Quantity != nil {
		if !input.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		newQuantity = *input.Quantity
	}
	newRate := procurement.Rate
	if input.Rate != nil {
		if !input.Rate.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
		}
		newRate = *input.Rate
	}

	diff := newQuantity.Sub(procurement.Quantity)
	procurement.Quantity = newQuantity
	procurement.Rate = newRate
	procurement.Amount = newQuantity.Mul(newRate)
	if input.Notes != nil {
		procurement.Notes = input.Notes
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, procurement); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update procurement")
		}
		switch {
		case diff.IsPositive():
			if err := s.ledger.Increment(ctx, tx, inventory.Adjustment{
				CooperativeID: procurement.CooperativeID,
				ProductID:     procurement.ProductID,
				ProductName:   procurement.ProductName,
				Delta:         diff,
			}); err != nil {
				return err
			}
		case diff.IsNegative():
			if err := s.ledger.Decrement(ctx, tx, procurement.CooperativeID, procurement.ProductID, diff.Abs()); err != nil {
				return err
			}
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivityProcurementUpdated,
			ActorUserID:   sc.UserID,
			CooperativeID: &procurement.CooperativeID,
			EntityID:      entityID(procurement.ID),
			Details:       map[string]string{"quantity_diff": diff.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return procurement, nil
}

func (s *service) Delete(ctx context.Context, sc scope.Scope, id int64) error {
	procurement, err := s.findOwned(ctx, sc, id)
	if err != nil {
		return err
	}

	// Reverse the stock contribution before removing the event so a
	// deleted procurement always nets out of the ledger.
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ledger.Decrement(ctx, tx, procurement.CooperativeID, procurement.ProductID, procurement.Quantity); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Delete(ctx, procurement.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete procurement")
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivityProcurementDeleted,
			ActorUserID:   sc.UserID,
			CooperativeID: &procurement.CooperativeID,
			EntityID:      entityID(procurement.ID),
			Details:       map[string]string{"quantity": procurement.Quantity.String()},
		})
	})
}

func (s *service) FindByID(ctx context.Context, sc scope.Scope, id int64) (*models.Procurement, error) {
	procurement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "procurement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load procurement")
	}
	if err := sc.EnsureCooperativeRead(procurement.CooperativeID); err != nil {
		return nil, err
	}
	return procurement, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Procurement, error) {
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
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "procurements not visible to caller")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list procurements")
	}
	return rows, nil
}

// findOwned loads a procurement and verifies write access in one place so
// an update-by-id can never skip the ownership check.
func (s *service) findOwned(ctx context.Context, sc scope.Scope, id int64) (*models.Procurement, error) {
	procurement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "procurement not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load procurement")
	}
	if err := sc.EnsureCooperativeWrite(procurement.CooperativeID); err != nil {
		return nil, err
	}
	return procurement, nil
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

func entityID(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}
