package cooperatives

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mahafpc/agrichain-backend/pkg/db/models"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	"github.com/mahafpc/agrichain-backend/pkg/scope"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:cooperatives_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Cooperative{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateOnboarding(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agg := scope.Scope{Role: enums.RoleAggregator}

	coop, err := svc.Create(ctx, agg, CreateInput{
		Name:     "Rahuri Farmers Producer Co",
		Code:     "rfpc",
		District: "Ahmednagar",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if coop.Code != "RFPC" {
		t.Fatalf("expected code upper-cased, got %q", coop.Code)
	}

	// duplicate codes conflict
	if _, err := svc.Create(ctx, agg, CreateInput{
		Name:     "Another",
		Code:     "RFPC",
		District: "Pune",
	}); err == nil {
		t.Fatal("expected conflict for duplicate code")
	}

	// cooperative role may not onboard members
	coopID := uuid.New()
	coopScope := scope.Scope{Role: enums.RoleCooperative, CooperativeID: &coopID}
	if _, err := svc.Create(ctx, coopScope, CreateInput{
		Name:     "Rogue",
		Code:     "RG",
		District: "Nashik",
	}); err == nil {
		t.Fatal("expected forbidden error")
	}
}

func TestUpdateAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	agg := scope.Scope{Role: enums.RoleAggregator}

	coop, err := svc.Create(ctx, agg, CreateInput{Name: "Rahuri FPC", Code: "RFPC", District: "Ahmednagar"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	if _, err := svc.Update(ctx, agg, coop.ID, UpdateInput{IsActive: &inactive}); err != nil {
		t.Fatalf("update: %v", err)
	}

	rows, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("active-only list should be empty, got %d", len(rows))
	}
}
