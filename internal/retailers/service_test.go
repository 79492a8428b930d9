package retailers

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

func newService(t *testing.T) Service {
	t.Helper()
	dsn := fmt.Sprintf("file:retailers_%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Retailer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func aggregatorScope() scope.Scope {
	return scope.Scope{UserID: uuid.New(), Role: enums.RoleAggregator}
}

func TestCreateNormalizesAndDeduplicates(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	sc := aggregatorScope()

	created, err := svc.Create(ctx, sc, CreateInput{Name: "  Deshmukh Traders ", Code: "dt01", District: "Pune"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Deshmukh Traders" || created.Code != "DT01" {
		t.Fatalf("normalization failed: %+v", created)
	}
	if !created.IsActive {
		t.Fatal("new retailer should be active")
	}

	_, err = svc.Create(ctx, sc, CreateInput{Name: "Other", Code: "DT01", District: "Nashik"})
	if err == nil {
		t.Fatal("expected duplicate code to conflict")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateRequiresAggregator(t *testing.T) {
	svc := newService(t)
	coopID := uuid.New()
	sc := scope.Scope{UserID: uuid.New(), Role: enums.RoleCooperative, CooperativeID: &coopID}

	_, err := svc.Create(context.Background(), sc, CreateInput{Name: "X", Code: "X1", District: "Pune"})
	if err == nil {
		t.Fatal("cooperative must not onboard retailers")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateAndDeactivate(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	sc := aggregatorScope()

	created, err := svc.Create(ctx, sc, CreateInput{Name: "Kisan Mart", Code: "KM01", District: "Nagpur"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inactive := false
	phone := "9822000000"
	updated, err := svc.Update(ctx, sc, created.ID, UpdateInput{ContactPhone: &phone, IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ContactPhone == nil || *updated.ContactPhone != phone || updated.IsActive {
		t.Fatalf("update not applied: %+v", updated)
	}

	active, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("deactivated retailer should not be listed, got %d", len(active))
	}

	if _, err := svc.Update(ctx, sc, uuid.New(), UpdateInput{}); err == nil {
		t.Fatal("expected not found for unknown id")
	}
}
