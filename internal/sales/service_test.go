package sales

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/internal/activities"
	"github.com/mahafpc/agrichain-backend/internal/cooperatives"
	"github.com/mahafpc/agrichain-backend/internal/inventory"
	"github.com/mahafpc/agrichain-backend/internal/products"
	"github.com/mahafpc/agrichain-backend/internal/sequence"
	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/logger"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

type testTx struct {
	db *gorm.DB
}

func (t *testTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := t.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

type fixture struct {
	db        *gorm.DB
	svc       Service
	ledger    inventory.Service
	coopID    uuid.UUID
	product   *models.Product
	coopScope scope.Scope
	aggScope  scope.Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithOptions(t, Options{})
}

func newFixtureWithOptions(t *testing.T, opts Options) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:sales_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Sale{}, &models.StockRow{}, &models.IDSequence{},
		&models.Activity{}, &models.Cooperative{}, &models.Product{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	coop := &models.Cooperative{ID: uuid.New(), Name: "Rahuri FPC", Code: "RFPC", District: "Ahmednagar", IsActive: true}
	product := &models.Product{ID: uuid.New(), Name: "Wheat", Unit: "ton", IsActive: true}
	if err := conn.Create(coop).Error; err != nil {
		t.Fatalf("seed cooperative: %v", err)
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}

	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	ledger, err := inventory.NewService(inventory.NewRepository(conn), products.NewRepository(conn), nil, logg)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	seq, err := sequence.NewService(sequence.NewRepository(conn))
	if err != nil {
		t.Fatalf("sequence service: %v", err)
	}
	audit, err := activities.NewService(activities.NewRepository(conn))
	if err != nil {
		t.Fatalf("activities service: %v", err)
	}
	svc, err := NewService(
		NewRepository(conn), &testTx{db: conn}, seq, ledger,
		products.NewRepository(conn), cooperatives.NewRepository(conn), audit, opts,
	)
	if err != nil {
		t.Fatalf("sale service: %v", err)
	}

	return &fixture{
		db:        conn,
		svc:       svc,
		ledger:    ledger,
		coopID:    coop.ID,
		product:   product,
		coopScope: scope.Scope{UserID: uuid.New(), Role: enums.RoleCooperative, CooperativeID: &coop.ID},
		aggScope:  scope.Scope{UserID: uuid.New(), Role: enums.RoleAggregator},
	}
}

func (f *fixture) seedStock(t *testing.T, qty int64) {
	t.Helper()
	if err := f.ledger.Increment(context.Background(), nil, inventory.Adjustment{
		CooperativeID: f.coopID,
		ProductID:     f.product.ID,
		ProductName:   f.product.Name,
		Unit:          f.product.Unit,
		Delta:         decimal.NewFromInt(qty),
	}); err != nil {
		t.Fatalf("seed stock: %v", err)
	}
}

func (f *fixture) stock(t *testing.T) decimal.Decimal {
	t.Helper()
	return f.stockOf(t, f.coopID)
}

func (f *fixture) stockOf(t *testing.T, orgID uuid.UUID) decimal.Decimal {
	t.Helper()
	var row models.StockRow
	err := f.db.Where("cooperative_id = ? AND product_id = ?", orgID, f.product.ID).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return decimal.Zero
	}
	if err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return row.Quantity
}

func TestSaleStatusMachineMovesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedStock(t, 15)

	sale, err := f.svc.Create(ctx, f.coopScope, CreateInput{
		ProductID: f.product.ID,
		Quantity:  decimal.NewFromInt(4),
		Rate:      decimal.NewFromInt(25),
		SoldOn:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sale.Status != enums.SaleStatusPending {
		t.Fatalf("expected pending, got %s", sale.Status)
	}
	if sale.CooperativeName != "Rahuri FPC" || sale.ProductName != "Wheat" {
		t.Fatalf("snapshot fields missing: %+v", sale)
	}
	// creation does not touch stock
	if !f.stock(t).Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected stock 15 after create, got %s", f.stock(t))
	}

	// pending -> completed deducts
	sale, err = f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusCompleted})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !f.stock(t).Equal(decimal.NewFromInt(11)) {
		t.Fatalf("expected stock 11 after completion, got %s", f.stock(t))
	}

	// completed -> completed is a no-op
	if _, err := f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusCompleted}); err != nil {
		t.Fatalf("repeat completion: %v", err)
	}
	if !f.stock(t).Equal(decimal.NewFromInt(11)) {
		t.Fatalf("repeat completion must not move stock, got %s", f.stock(t))
	}

	// completed -> rejected restores
	sale, err = f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusRejected})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !f.stock(t).Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected stock restored to 15, got %s", f.stock(t))
	}

	// rejected -> pending does not touch stock
	if _, err := f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusPending}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !f.stock(t).Equal(decimal.NewFromInt(15)) {
		t.Fatalf("pending transition must not move stock, got %s", f.stock(t))
	}
}

func TestCompletionCreditsAggregatorWhenAdjustEnabled(t *testing.T) {
	aggID := uuid.New()
	f := newFixtureWithOptions(t, Options{AdjustStock: true, AggregatorOrgID: aggID})
	ctx := context.Background()
	f.seedStock(t, 15)

	sale, err := f.svc.Create(ctx, f.coopScope, CreateInput{
		ProductID: f.product.ID,
		Quantity:  decimal.NewFromInt(4),
		Rate:      decimal.NewFromInt(25),
		SoldOn:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// completion moves the quantity from the cooperative to the aggregator
	sale, err = f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusCompleted})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !f.stock(t).Equal(decimal.NewFromInt(11)) {
		t.Fatalf("expected cooperative stock 11, got %s", f.stock(t))
	}
	if !f.stockOf(t, aggID).Equal(decimal.NewFromInt(4)) {
		t.Fatalf("expected aggregator stock 4, got %s", f.stockOf(t, aggID))
	}

	// reversal undoes both sides
	if _, err := f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if !f.stock(t).Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected cooperative stock restored to 15, got %s", f.stock(t))
	}
	if !f.stockOf(t, aggID).Equal(decimal.Zero) {
		t.Fatalf("expected aggregator stock back to zero, got %s", f.stockOf(t, aggID))
	}
}

func TestTransitionRequiresAggregator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.Create(ctx, f.coopScope, CreateInput{
		ProductID: f.product.ID,
		Quantity:  decimal.NewFromInt(2),
		Rate:      decimal.NewFromInt(10),
		SoldOn:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.Transition(ctx, f.coopScope, sale.ID, TransitionInput{Status: enums.SaleStatusCompleted})
	if err == nil {
		t.Fatal("cooperative must not drive transitions")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedStock(t, 20)

	sale, err := f.svc.Create(ctx, f.coopScope, CreateInput{
		ProductID: f.product.ID,
		Quantity:  decimal.NewFromInt(5),
		Rate:      decimal.NewFromInt(10),
		SoldOn:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	qty := decimal.NewFromInt(6)
	updated, err := f.svc.Update(ctx, f.coopScope, sale.ID, UpdateInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("pending edit: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected recomputed amount 60, got %s", updated.Amount)
	}

	if _, err := f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusCompleted}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	qty = decimal.NewFromInt(9)
	_, err = f.svc.Update(ctx, f.coopScope, sale.ID, UpdateInput{Quantity: &qty})
	if err == nil {
		t.Fatal("completed sale must not be editable")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCompletionClampsWhenStockShort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedStock(t, 3)

	sale, err := f.svc.Create(ctx, f.coopScope, CreateInput{
		ProductID: f.product.ID,
		Quantity:  decimal.NewFromInt(10),
		Rate:      decimal.NewFromInt(5),
		SoldOn:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := f.svc.Transition(ctx, f.aggScope, sale.ID, TransitionInput{Status: enums.SaleStatusCompleted}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !f.stock(t).Equal(decimal.Zero) {
		t.Fatalf("expected clamp to zero, got %s", f.stock(t))
	}
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.coopScope, CreateInput{
		ProductID: f.product.ID,
		Quantity:  decimal.NewFromInt(1),
		Rate:      decimal.NewFromInt(1),
		SoldOn:    time.Now(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := f.svc.List(ctx, f.coopScope, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(rows))
	}

	otherCoop := uuid.New()
	intruder := scope.Scope{UserID: uuid.New(), Role: enums.RoleCooperative, CooperativeID: &otherCoop}
	rows, err = f.svc.List(ctx, intruder, ListFilter{})
	if err != nil {
		t.Fatalf("intruder list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("other cooperative must see nothing, got %d", len(rows))
	}

	if _, err := f.svc.FindByID(ctx, intruder, 1); err == nil {
		t.Fatal("expected read denied for other cooperative")
	}
}
