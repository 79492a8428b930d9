package inventory

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/logger"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

type stubProducts struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProducts) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.StockRow{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func newTestService(t *testing.T, db *gorm.DB, products *stubProducts) Service {
	t.Helper()
	if products == nil {
		products = &stubProducts{products: map[uuid.UUID]*models.Product{}}
	}
	logg := logger.New(logger.Options{Level: zerolog.ErrorLevel, Output: io.Discard})
	svc, err := NewService(NewRepository(db), products, nil, logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func mustGet(t *testing.T, db *gorm.DB, coopID, productID uuid.UUID) models.StockRow {
	t.Helper()
	var row models.StockRow
	if err := db.Where("cooperative_id = ? AND product_id = ?", coopID, productID).First(&row).Error; err != nil {
		t.Fatalf("load stock row: %v", err)
	}
	return row
}

func TestIncrementCreatesAndAccumulates(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()
	coopID, productID := uuid.New(), uuid.New()

	adj := Adjustment{
		CooperativeID: coopID,
		ProductID:     productID,
		ProductName:   "Wheat",
		Unit:          "ton",
		Delta:         decimal.NewFromInt(10),
	}
	if err := svc.Increment(ctx, nil, adj); err != nil {
		t.Fatalf("first increment: %v", err)
	}

	row := mustGet(t, db, coopID, productID)
	if !row.Quantity.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("expected quantity 10, got %s", row.Quantity)
	}
	if row.ProductName != "Wheat" || row.Unit != "ton" {
		t.Fatalf("denormalized fields not set: %+v", row)
	}

	adj.Delta = decimal.NewFromInt(5)
	if err := svc.Increment(ctx, nil, adj); err != nil {
		t.Fatalf("second increment: %v", err)
	}
	row = mustGet(t, db, coopID, productID)
	if !row.Quantity.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected quantity 15, got %s", row.Quantity)
	}

	var count int64
	if err := db.Model(&models.StockRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one stock row, got %d", count)
	}
}

func TestIncrementRejectsNonPositiveDelta(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	err := svc.Increment(context.Background(), nil, Adjustment{
		CooperativeID: uuid.New(),
		ProductID:     uuid.New(),
		ProductName:   "Wheat",
		Delta:         decimal.Zero,
	})
	if err == nil {
		t.Fatal("expected validation error for zero delta")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecrementExactAndClamp(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()
	coopID, productID := uuid.New(), uuid.New()

	if err := svc.Increment(ctx, nil, Adjustment{
		CooperativeID: coopID,
		ProductID:     productID,
		ProductName:   "Wheat",
		Delta:         decimal.NewFromInt(15),
	}); err != nil {
		t.Fatalf("seed increment: %v", err)
	}

	if err := svc.Decrement(ctx, nil, coopID, productID, decimal.NewFromInt(4)); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	row := mustGet(t, db, coopID, productID)
	if !row.Quantity.Equal(decimal.NewFromInt(11)) {
		t.Fatalf("expected 11 after decrement, got %s", row.Quantity)
	}

	// larger than the balance: clamps at zero, never negative
	if err := svc.Decrement(ctx, nil, coopID, productID, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("oversized decrement: %v", err)
	}
	row = mustGet(t, db, coopID, productID)
	if !row.Quantity.Equal(decimal.Zero) {
		t.Fatalf("expected clamp to zero, got %s", row.Quantity)
	}
}

func TestDecrementMissingRowIsNoOp(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)

	if err := svc.Decrement(context.Background(), nil, uuid.New(), uuid.New(), decimal.NewFromInt(5)); err != nil {
		t.Fatalf("decrement on missing row should not error: %v", err)
	}

	var count int64
	if err := db.Model(&models.StockRow{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("no row should be created, got %d", count)
	}
}

func TestDecrementFractionalQuantities(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()
	coopID, productID := uuid.New(), uuid.New()

	if err := svc.Increment(ctx, nil, Adjustment{
		CooperativeID: coopID,
		ProductID:     productID,
		ProductName:   "Soybean",
		Delta:         decimal.RequireFromString("2.500"),
	}); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := svc.Decrement(ctx, nil, coopID, productID, decimal.RequireFromString("1.250")); err != nil {
		t.Fatalf("decrement: %v", err)
	}
	row := mustGet(t, db, coopID, productID)
	if !row.Quantity.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("expected 1.25, got %s", row.Quantity)
	}
}

func TestSetAbsolute(t *testing.T) {
	db := newTestDB(t)
	productID := uuid.New()
	products := &stubProducts{products: map[uuid.UUID]*models.Product{
		productID: {ID: productID, Name: "Onion", Unit: "quintal"},
	}}
	svc := newTestService(t, db, products)
	ctx := context.Background()
	coopID := uuid.New()
	sc := scope.Scope{Role: enums.RoleCooperative, CooperativeID: &coopID}

	minStock := decimal.NewFromInt(2)
	row, err := svc.SetAbsolute(ctx, sc, SetAbsoluteInput{
		CooperativeID: coopID,
		ProductID:     productID,
		Quantity:      decimal.NewFromInt(40),
		MinStock:      &minStock,
	})
	if err != nil {
		t.Fatalf("set absolute: %v", err)
	}
	if !row.Quantity.Equal(decimal.NewFromInt(40)) || row.ProductName != "Onion" {
		t.Fatalf("unexpected row %+v", row)
	}
	if !row.MinStock.Equal(minStock) {
		t.Fatalf("expected min stock 2, got %s", row.MinStock)
	}

	// overwrite, not accumulate
	row, err = svc.SetAbsolute(ctx, sc, SetAbsoluteInput{
		CooperativeID: coopID,
		ProductID:     productID,
		Quantity:      decimal.NewFromInt(7),
	})
	if err != nil {
		t.Fatalf("second set absolute: %v", err)
	}
	if !row.Quantity.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected overwrite to 7, got %s", row.Quantity)
	}

	// another cooperative may not write this row
	otherCoop := uuid.New()
	otherScope := scope.Scope{Role: enums.RoleCooperative, CooperativeID: &otherCoop}
	if _, err := svc.SetAbsolute(ctx, otherScope, SetAbsoluteInput{
		CooperativeID: coopID,
		ProductID:     productID,
		Quantity:      decimal.NewFromInt(1),
	}); err == nil {
		t.Fatal("expected cross-cooperative write to fail")
	}
}

func TestListScoping(t *testing.T) {
	db := newTestDB(t)
	svc := newTestService(t, db, nil)
	ctx := context.Background()
	coopA, coopB, productID := uuid.New(), uuid.New(), uuid.New()

	for _, coop := range []uuid.UUID{coopA, coopB} {
		if err := svc.Increment(ctx, nil, Adjustment{
			CooperativeID: coop,
			ProductID:     productID,
			ProductName:   "Wheat",
			Delta:         decimal.NewFromInt(3),
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	coopScope := scope.Scope{Role: enums.RoleCooperative, CooperativeID: &coopA}
	rows, err := svc.List(ctx, coopScope, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].CooperativeID != coopA {
		t.Fatalf("cooperative must only see its own rows, got %d", len(rows))
	}

	// a cooperative cannot request another cooperative's rows explicitly
	if _, err := svc.List(ctx, coopScope, ListFilter{CooperativeID: &coopB}); err == nil {
		t.Fatal("expected forbidden error")
	}

	aggScope := scope.Scope{Role: enums.RoleAggregator}
	rows, err = svc.List(ctx, aggScope, ListFilter{})
	if err != nil {
		t.Fatalf("aggregator list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("aggregator must see all rows, got %d", len(rows))
	}

	retID := uuid.New()
	retScope := scope.Scope{Role: enums.RoleRetailer, RetailerID: &retID}
	if _, err := svc.List(ctx, retScope, ListFilter{}); err == nil {
		t.Fatal("retailer must not read cooperative stock")
	}
}
