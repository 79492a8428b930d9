package payments

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/internal/activities"
	"github.com/mahafpc/agrichain-backend/internal/farmers"
	"github.com/mahafpc/agrichain-backend/internal/retailers"
	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
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
	db       *gorm.DB
	svc      Service
	coopID   uuid.UUID
	farmer   *models.Farmer
	retailer *models.Retailer
	scope    scope.Scope
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:payments_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Payment{}, &models.Activity{}, &models.Farmer{}, &models.Retailer{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	coopID := uuid.New()
	farmer := &models.Farmer{ID: uuid.New(), CooperativeID: coopID, Name: "Ramesh Pawar", IsActive: true}
	retailer := &models.Retailer{ID: uuid.New(), Name: "Kisan Mart", Code: "KM01", District: "Nagpur", IsActive: true}
	if err := conn.Create(farmer).Error; err != nil {
		t.Fatalf("seed farmer: %v", err)
	}
	if err := conn.Create(retailer).Error; err != nil {
		t.Fatalf("seed retailer: %v", err)
	}

	audit, err := activities.NewService(activities.NewRepository(conn))
	if err != nil {
		t.Fatalf("activities service: %v", err)
	}
	svc, err := NewService(
		NewRepository(conn), &testTx{db: conn},
		farmers.NewRepository(conn), retailers.NewRepository(conn), audit,
	)
	if err != nil {
		t.Fatalf("payment service: %v", err)
	}

	return &fixture{
		db:       conn,
		svc:      svc,
		coopID:   coopID,
		farmer:   farmer,
		retailer: retailer,
		scope:    scope.Scope{UserID: uuid.New(), Role: enums.RoleCooperative, CooperativeID: &coopID},
	}
}

func TestFarmerPaymentRecordedWithAudit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	payment, err := f.svc.Create(ctx, f.scope, CreateInput{
		Kind:     enums.PaymentKindFarmer,
		FarmerID: &f.farmer.ID,
		Amount:   decimal.NewFromInt(1500),
		PaidOn:   time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if payment.CooperativeID != f.coopID {
		t.Fatalf("expected cooperative from scope, got %s", payment.CooperativeID)
	}

	var auditCount int64
	if err := f.db.Model(&models.Activity{}).Where("type = ?", enums.ActivityPaymentRecorded).Count(&auditCount).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if auditCount != 1 {
		t.Fatalf("expected 1 audit entry, got %d", auditCount)
	}
}

func TestKindCounterpartyRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// farmer payment without a farmer
	_, err := f.svc.Create(ctx, f.scope, CreateInput{
		Kind:   enums.PaymentKindFarmer,
		Amount: decimal.NewFromInt(100),
		PaidOn: time.Now(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// retailer payment carrying a farmer id
	_, err = f.svc.Create(ctx, f.scope, CreateInput{
		Kind:       enums.PaymentKindRetailer,
		RetailerID: &f.retailer.ID,
		FarmerID:   &f.farmer.ID,
		Amount:     decimal.NewFromInt(100),
		PaidOn:     time.Now(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// farmer registered under a different cooperative
	otherCoop := uuid.New()
	stray := &models.Farmer{ID: uuid.New(), CooperativeID: otherCoop, Name: "Suresh", IsActive: true}
	if err := f.db.Create(stray).Error; err != nil {
		t.Fatalf("seed stray farmer: %v", err)
	}
	_, err = f.svc.Create(ctx, f.scope, CreateInput{
		Kind:     enums.PaymentKindFarmer,
		FarmerID: &stray.ID,
		Amount:   decimal.NewFromInt(100),
		PaidOn:   time.Now(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for stray farmer, got %v", err)
	}

	// unknown retailer
	strayID := uuid.New()
	_, err = f.svc.Create(ctx, f.scope, CreateInput{
		Kind:       enums.PaymentKindRetailer,
		RetailerID: &strayID,
		Amount:     decimal.NewFromInt(100),
		PaidOn:     time.Now(),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, f.scope, CreateInput{
		Kind:     enums.PaymentKindFarmer,
		FarmerID: &f.farmer.ID,
		Amount:   decimal.NewFromInt(250),
		PaidOn:   time.Now(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := f.svc.List(ctx, f.scope, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(rows))
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

	retID := uuid.New()
	retailer := scope.Scope{UserID: uuid.New(), Role: enums.RoleRetailer, RetailerID: &retID}
	if _, err := f.svc.List(ctx, retailer, ListFilter{}); err == nil {
		t.Fatal("retailer must not list payments")
	}
}
