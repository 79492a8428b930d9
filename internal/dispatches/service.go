package dispatches

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

// ProductReader resolves product masters for snapshots.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// RetailerReader resolves retailer masters for snapshots.
type RetailerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Retailer, error)
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

// Options control whether completing a dispatch moves aggregator stock.
// When AdjustStock is set, AggregatorOrgID keys the aggregator's own rows
// in the stock ledger.
type Options struct {
	AdjustStock     bool
	AggregatorOrgID uuid.UUID
}

// Service drives the dispatch lifecycle: aggregator ships produce to a
// retailer. Retailers see their own dispatches; only the aggregator
// creates and transitions them.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Dispatch, error)
	Update(ctx context.Context, sc scope.Scope, id int64, input UpdateInput) (*models.Dispatch, error)
	Transition(ctx context.Context, sc scope.Scope, id int64, input TransitionInput) (*models.Dispatch, error)
	FindByID(ctx context.Context, sc scope.Scope, id int64) (*models.Dispatch, error)
	List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Dispatch, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	seq       sequencer
	ledger    StockLedger
	products  ProductReader
	retailers RetailerReader
	audit     ActivityRecorder
	opts      Options
}

// NewService builds a dispatch service with the required dependencies.
func NewService(repo Repository, tx txRunner, seq sequencer, ledger StockLedger, products ProductReader, retailers RetailerReader, audit ActivityRecorder, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dispatches repository required")
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
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if retailers == nil {
		return nil, fmt.Errorf("retailer reader required")
	}
	if audit == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if opts.AdjustStock && opts.AggregatorOrgID == uuid.Nil {
		return nil, fmt.Errorf("aggregator org id required when stock adjustment is enabled")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		seq:       seq,
		ledger:    ledger,
		products:  products,
		retailers: retailers,
		audit:     audit,
		opts:      opts,
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Dispatch, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	if input.RetailerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retailer id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if !input.Quantity.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if !input.Rate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
	}
	if input.DispatchedOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispatched_on date required")
	}

	retailer, err := s.retailers.FindByID(ctx, input.RetailerID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	if !retailer.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retailer is inactive")
	}
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	dispatch := &models.Dispatch{
		RetailerID:   retailer.ID,
		RetailerName: retailer.Name,
		ProductID:    product.ID,
		ProductName:  product.Name,
		Quantity:     input.Quantity,
		Rate:         input.Rate,
		Amount:       input.Quantity.Mul(input.Rate),
		Status:       enums.DispatchStatusPending,
		VehicleNo:    input.VehicleNo,
		DispatchedOn: input.DispatchedOn,
		Notes:        input.Notes,
		CreatedBy:    sc.UserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := s.seq.NextIDTx(ctx, tx, sequence.SeriesDispatch)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue dispatch id")
		}
		dispatch.ID = id

		if err := s.repo.WithTx(tx).Create(ctx, dispatch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist dispatch")
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:        enums.ActivityDispatchCreated,
			ActorUserID: sc.UserID,
			EntityID:    entityID(dispatch.ID),
			Details: map[string]string{
				"retailer": retailer.Name,
				"product":  product.Name,
				"quantity": input.Quantity.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return dispatch, nil
}

// Update edits figures while the dispatch is still pending.
func (s *service) Update(ctx context.Context, sc scope.Scope, id int64, input UpdateInput) (*models.Dispatch, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	dispatch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispatch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispatch")
	}
	if dispatch.Status != enums.DispatchStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending dispatches can be edited")
	}

	if input.Quantity != nil {
		if !input.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		dispatch.Quantity = *input.Quantity
	}
	if input.Rate != nil {
		if !input.Rate.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
		}
		dispatch.Rate = *input.Rate
	}
	dispatch.Amount = dispatch.Quantity.Mul(dispatch.Rate)
	if input.VehicleNo != nil {
		dispatch.VehicleNo = input.VehicleNo
	}
	if input.Notes != nil {
		dispatch.Notes = input.Notes
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, dispatch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dispatch")
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:        enums.ActivityDispatchStatus,
			ActorUserID: sc.UserID,
			EntityID:    entityID(dispatch.ID),
			Details:     map[string]string{"quantity": dispatch.Quantity.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return dispatch, nil
}

// Transition moves a dispatch between statuses. When stock adjustment is
// enabled, entering completed deducts from the aggregator's own ledger
// rows and leaving completed restores them.
func (s *service) Transition(ctx context.Context, sc scope.Scope, id int64, input TransitionInput) (*models.Dispatch, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid dispatch status %q", input.Status))
	}

	var result *models.Dispatch
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		dispatch, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "dispatch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispatch")
		}

		from := dispatch.Status
		to := input.Status
		if from == to {
			result = dispatch
			return nil
		}

		dispatch.Status = to
		if err := repo.Update(ctx, dispatch); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dispatch status")
		}

		if s.opts.AdjustStock {
			switch {
			case to == enums.DispatchStatusCompleted:
				if err := s.ledger.Decrement(ctx, tx, s.opts.AggregatorOrgID, dispatch.ProductID, dispatch.Quantity); err != nil {
					return err
				}
			case from == enums.DispatchStatusCompleted:
				if err := s.ledger.Increment(ctx, tx, inventory.Adjustment{
					CooperativeID: s.opts.AggregatorOrgID,
					ProductID:     dispatch.ProductID,
					ProductName:   dispatch.ProductName,
					Delta:         dispatch.Quantity,
				}); err != nil {
					return err
				}
			}
		}

		if err := s.audit.Record(ctx, tx, activities.RecordInput{
			Type:        enums.ActivityDispatchStatus,
			ActorUserID: sc.UserID,
			EntityID:    entityID(dispatch.ID),
			Details:     map[string]string{"from": from.String(), "to": to.String()},
		}); err != nil {
			return err
		}
		result = dispatch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) FindByID(ctx context.Context, sc scope.Scope, id int64) (*models.Dispatch, error) {
	dispatch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dispatch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dispatch")
	}
	switch sc.Role {
	case enums.RoleAggregator, enums.RoleAdmin:
	case enums.RoleRetailer:
		if sc.RetailerID == nil || *sc.RetailerID != dispatch.RetailerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dispatch not visible to caller")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dispatch not visible to caller")
	}
	return dispatch, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Dispatch, error) {
	switch sc.Role {
	case enums.RoleAggregator, enums.RoleAdmin:
	case enums.RoleRetailer:
		if sc.RetailerID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "retailer scope missing")
		}
		if filter.RetailerID != nil && *filter.RetailerID != *sc.RetailerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "retailer data not visible to caller")
		}
		filter.RetailerID = sc.RetailerID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dispatches not visible to caller")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dispatches")
	}
	return rows, nil
}

func entityID(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}
