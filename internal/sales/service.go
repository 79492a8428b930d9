package sales

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

// CooperativeReader resolves cooperative masters for snapshots.
type CooperativeReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cooperative, error)
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

// Options control whether completing a sale also credits the aggregator's
// own stock rows. When AdjustStock is set, AggregatorOrgID keys those rows
// in the ledger; the dispatch lifecycle debits them on the way out.
type Options struct {
	AdjustStock     bool
	AggregatorOrgID uuid.UUID
}

// Service drives the sale lifecycle. Stock moves only on transitions
// into and out of the completed status; the transition and the ledger
// delta commit in one transaction.
type Service interface {
	Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Sale, error)
	Update(ctx context.Context, sc scope.Scope, id int64, input UpdateInput) (*models.Sale, error)
	Transition(ctx context.Context, sc scope.Scope, id int64, input TransitionInput) (*models.Sale, error)
	FindByID(ctx context.Context, sc scope.Scope, id int64) (*models.Sale, error)
	List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Sale, error)
}

type service struct {
	repo         Repository
	tx           txRunner
	seq          sequencer
	ledger       StockLedger
	products     ProductReader
	cooperatives CooperativeReader
	audit        ActivityRecorder
	opts         Options
}

// NewService builds a sale service with the required dependencies.
func NewService(repo Repository, tx txRunner, seq sequencer, ledger StockLedger, products ProductReader, cooperatives CooperativeReader, audit ActivityRecorder, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
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
	if cooperatives == nil {
		return nil, fmt.Errorf("cooperative reader required")
	}
	if audit == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if opts.AdjustStock && opts.AggregatorOrgID == uuid.Nil {
		return nil, fmt.Errorf("aggregator org id required when stock adjustment is enabled")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		seq:          seq,
		ledger:       ledger,
		products:     products,
		cooperatives: cooperatives,
		audit:        audit,
		opts:         opts,
	}, nil
}

func (s *service) Create(ctx context.Context, sc scope.Scope, input CreateInput) (*models.Sale, error) {
	cooperativeID, err := resolveCooperative(sc, input.CooperativeID)
	if err != nil {
		return nil, err
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
	if input.SoldOn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sold_on date required")
	}
	if err := sc.EnsureCooperativeWrite(cooperativeID); err != nil {
		return nil, err
	}

	cooperative, err := s.cooperatives.FindByID(ctx, cooperativeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cooperative not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cooperative")
	}
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	sale := &models.Sale{
		CooperativeID:   cooperativeID,
		CooperativeName: cooperative.Name,
		ProductID:       product.ID,
		ProductName:     product.Name,
		Quantity:        input.Quantity,
		Rate:            input.Rate,
		Amount:          input.Quantity.Mul(input.Rate),
		Status:          enums.SaleStatusPending,
		SoldOn:          input.SoldOn,
		Notes:           input.Notes,
		CreatedBy:       sc.UserID,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		id, err := s.seq.NextIDTx(ctx, tx, sequence.SeriesSale)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "issue sale id")
		}
		sale.ID = id

		if err := s.repo.WithTx(tx).Create(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist sale")
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivitySaleCreated,
			ActorUserID:   sc.UserID,
			CooperativeID: &cooperativeID,
			EntityID:      entityID(sale.ID),
			Details: map[string]string{
				"product":  product.Name,
				"quantity": input.Quantity.String(),
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Update edits quantity and rate while the sale is still pending. Once a
// sale has been completed or rejected its figures are frozen; reopen it
// via a status transition first.
func (s *service) Update(ctx context.Context, sc scope.Scope, id int64, input UpdateInput) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	if err := sc.EnsureCooperativeWrite(sale.CooperativeID); err != nil {
		return nil, err
	}
	if sale.Status != enums.SaleStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only pending sales can be edited")
	}

	if input.Quantity != nil {
		if !input.Quantity.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		sale.Quantity = *input.Quantity
	}
	if input.Rate != nil {
		if !input.Rate.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate must be positive")
		}
		sale.Rate = *input.Rate
	}
	sale.Amount = sale.Quantity.Mul(sale.Rate)
	if input.Notes != nil {
		sale.Notes = input.Notes
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale")
		}
		return s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivitySaleUpdated,
			ActorUserID:   sc.UserID,
			CooperativeID: &sale.CooperativeID,
			EntityID:      entityID(sale.ID),
			Details:       map[string]string{"quantity": sale.Quantity.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

// Transition moves a sale between statuses. Only the aggregator drives
// transitions. Entering completed deducts cooperative stock (and, with
// stock adjustment enabled, credits the aggregator's row); leaving
// completed reverses both; every other pair leaves the ledger alone.
func (s *service) Transition(ctx context.Context, sc scope.Scope, id int64, input TransitionInput) (*models.Sale, error) {
	if err := sc.EnsureAggregator(); err != nil {
		return nil, err
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid sale status %q", input.Status))
	}

	var result *models.Sale
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindByID(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
		}

		from := sale.Status
		to := input.Status
		if from == to {
			result = sale
			return nil
		}

		sale.Status = to
		if err := repo.Update(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update sale status")
		}

		switch {
		case to == enums.SaleStatusCompleted:
			if err := s.ledger.Decrement(ctx, tx, sale.CooperativeID, sale.ProductID, sale.Quantity); err != nil {
				return err
			}
			// the produce is now held by the aggregator; dispatches
			// debit this row when stock adjustment is enabled
			if s.opts.AdjustStock {
				if err := s.ledger.Increment(ctx, tx, inventory.Adjustment{
					CooperativeID: s.opts.AggregatorOrgID,
					ProductID:     sale.ProductID,
					ProductName:   sale.ProductName,
					Delta:         sale.Quantity,
				}); err != nil {
					return err
				}
			}
		case from == enums.SaleStatusCompleted:
			if err := s.ledger.Increment(ctx, tx, inventory.Adjustment{
				CooperativeID: sale.CooperativeID,
				ProductID:     sale.ProductID,
				ProductName:   sale.ProductName,
				Delta:         sale.Quantity,
			}); err != nil {
				return err
			}
			if s.opts.AdjustStock {
				if err := s.ledger.Decrement(ctx, tx, s.opts.AggregatorOrgID, sale.ProductID, sale.Quantity); err != nil {
					return err
				}
			}
		}

		if err := s.audit.Record(ctx, tx, activities.RecordInput{
			Type:          enums.ActivitySaleStatusChanged,
			ActorUserID:   sc.UserID,
			CooperativeID: &sale.CooperativeID,
			EntityID:      entityID(sale.ID),
			Details:       map[string]string{"from": from.String(), "to": to.String()},
		}); err != nil {
			return err
		}
		result = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) FindByID(ctx context.Context, sc scope.Scope, id int64) (*models.Sale, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load sale")
	}
	if err := sc.EnsureCooperativeRead(sale.CooperativeID); err != nil {
		return nil, err
	}
	return sale, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.Sale, error) {
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
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "sales not visible to caller")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sales")
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

func entityID(id int64) *string {
	s := strconv.FormatInt(id, 10)
	return &s
}
