package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/logger"
	"github.com/mahafpc/agrichain-backend/pkg/metrics"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

// ProductReader resolves product masters for denormalized row creation.
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service is the authoritative stock ledger. The lifecycles call the
// tx-aware adjustment methods so the event write and the stock change
// commit together; the remaining methods back the HTTP read/edit surface.
type Service interface {
	Increment(ctx context.Context, tx *gorm.DB, adj Adjustment) error
	Decrement(ctx context.Context, tx *gorm.DB, cooperativeID, productID uuid.UUID, delta decimal.Decimal) error
	SetAbsolute(ctx context.Context, sc scope.Scope, input SetAbsoluteInput) (*models.StockRow, error)
	Get(ctx context.Context, sc scope.Scope, cooperativeID, productID uuid.UUID) (*models.StockRow, error)
	List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.StockRow, error)
}

type service struct {
	repo     Repository
	products ProductReader
	ledger   *metrics.LedgerMetrics
	logg     *logger.Logger
}

// NewService wires the stock ledger with its dependencies.
func NewService(repo Repository, products ProductReader, ledger *metrics.LedgerMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, products: products, ledger: ledger, logg: logg}, nil
}

func (s *service) Increment(ctx context.Context, tx *gorm.DB, adj Adjustment) error {
	if adj.CooperativeID == uuid.Nil || adj.ProductID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cooperative and product ids required")
	}
	if !adj.Delta.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "increment delta must be positive")
	}
	if adj.ProductName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required for stock row creation")
	}
	if adj.Unit == "" {
		adj.Unit = "quintal"
	}
	if err := s.repo.WithTx(tx).Increment(ctx, adj); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock increment")
	}
	s.ledger.IncAdjustment("increment")
	return nil
}

func (s *service) Decrement(ctx context.Context, tx *gorm.DB, cooperativeID, productID uuid.UUID, delta decimal.Decimal) error {
	if cooperativeID == uuid.Nil || productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cooperative and product ids required")
	}
	if !delta.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "decrement delta must be positive")
	}

	result, err := s.repo.WithTx(tx).Decrement(ctx, cooperativeID, productID, delta)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply stock decrement")
	}
	if !result.Found {
		// No row means nothing to decrement below zero. Absorbed, not surfaced.
		s.ledger.IncMissingRow()
		lctx := s.logg.WithFields(ctx, map[string]any{
			"cooperative_id": cooperativeID.String(),
			"product_id":     productID.String(),
			"delta":          delta.String(),
		})
		s.logg.Warn(lctx, "stock decrement targeted a missing row")
		return nil
	}
	s.ledger.IncAdjustment("decrement")
	if result.Clamped {
		s.ledger.IncClamp("insufficient_stock")
		lctx := s.logg.WithFields(ctx, map[string]any{
			"cooperative_id": cooperativeID.String(),
			"product_id":     productID.String(),
			"delta":          delta.String(),
		})
		s.logg.Warn(lctx, "stock decrement clamped at zero")
	}
	return nil
}

func (s *service) SetAbsolute(ctx context.Context, sc scope.Scope, input SetAbsoluteInput) (*models.StockRow, error) {
	if input.CooperativeID == uuid.Nil || input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cooperative and product ids required")
	}
	if input.Quantity.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if err := sc.EnsureCooperativeWrite(input.CooperativeID); err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	row := &models.StockRow{
		CooperativeID: input.CooperativeID,
		ProductID:     input.ProductID,
		ProductName:   product.Name,
		Unit:          product.Unit,
		Quantity:      input.Quantity,
	}
	if input.MinStock != nil {
		row.MinStock = *input.MinStock
	}
	if input.MaxStock != nil {
		row.MaxStock = *input.MaxStock
	}

	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert stock row")
	}
	s.ledger.IncAdjustment("set_absolute")

	return s.repo.Get(ctx, input.CooperativeID, input.ProductID)
}

func (s *service) Get(ctx context.Context, sc scope.Scope, cooperativeID, productID uuid.UUID) (*models.StockRow, error) {
	if err := sc.EnsureCooperativeRead(cooperativeID); err != nil {
		return nil, err
	}
	row, err := s.repo.Get(ctx, cooperativeID, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "stock row not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock row")
	}
	return row, nil
}

func (s *service) List(ctx context.Context, sc scope.Scope, filter ListFilter) ([]models.StockRow, error) {
	switch sc.Role {
	case enums.RoleAggregator, enums.RoleAdmin:
		// unrestricted
	case enums.RoleCooperative:
		if sc.CooperativeID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative scope missing")
		}
		if filter.CooperativeID != nil && *filter.CooperativeID != *sc.CooperativeID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cooperative data not visible to caller")
		}
		filter.CooperativeID = sc.CooperativeID
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "stock not visible to caller")
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock rows")
	}
	return rows, nil
}
