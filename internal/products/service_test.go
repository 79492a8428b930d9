package products

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:products_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agg := scope.Scope{Role: enums.RoleAggregator}

	product, err := svc.Create(ctx, agg, CreateInput{Name: "Wheat", Unit: "ton"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.ID == uuid.Nil {
		t.Fatal("expected generated id")
	}

	// duplicate name conflicts
	if _, err := svc.Create(ctx, agg, CreateInput{Name: "Wheat"}); err == nil {
		t.Fatal("expected conflict for duplicate name")
	}

	rows, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 product, got %d", len(rows))
	}
}

func TestCreateRequiresAggregatorRole(t *testing.T) {
	svc := newTestService(t)
	coopID := uuid.New()
	coop := scope.Scope{Role: enums.RoleCooperative, CooperativeID: &coopID}

	_, err := svc.Create(context.Background(), coop, CreateInput{Name: "Onion"})
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateDeactivates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agg := scope.Scope{Role: enums.RoleAggregator}

	product, err := svc.Create(ctx, agg, CreateInput{Name: "Soybean"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	updated, err := svc.Update(ctx, agg, product.ID, UpdateInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected product to be deactivated")
	}

	rows, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("active-only list should be empty, got %d", len(rows))
	}

	if _, err := svc.Update(ctx, agg, uuid.New(), UpdateInput{}); err == nil {
		t.Fatal("expected not found for unknown id")
	}
}
