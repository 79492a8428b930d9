package scope

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mahafpc/agrichain-backend/pkg/auth"
	"github.com/mahafpc/agrichain-backend/pkg/enums"
	pkgerrors "github.com/mahafpc/agrichain-backend/pkg/errors"
)

func TestFromClaims(t *testing.T) {
	coopID := uuid.New()
	claims := &auth.AccessTokenClaims{
		UserID:        uuid.New(),
		Role:          enums.RoleCooperative,
		CooperativeID: &coopID,
	}

	s, err := FromClaims(claims)
	if err != nil {
		t.Fatalf("from claims: %v", err)
	}
	if s.CooperativeID == nil || *s.CooperativeID != coopID {
		t.Fatal("cooperative id not carried into scope")
	}

	if _, err := FromClaims(nil); err == nil {
		t.Fatal("expected error for nil claims")
	}
	if _, err := FromClaims(&auth.AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.RoleCooperative,
	}); err == nil {
		t.Fatal("expected error for cooperative claims without cooperative id")
	}
}

func TestEnsureCooperativeWrite(t *testing.T) {
	own := uuid.New()
	other := uuid.New()
	coopScope := Scope{Role: enums.RoleCooperative, CooperativeID: &own}

	if err := coopScope.EnsureCooperativeWrite(own); err != nil {
		t.Fatalf("expected own cooperative write to pass: %v", err)
	}

	err := coopScope.EnsureCooperativeWrite(other)
	if err == nil {
		t.Fatal("expected cross-cooperative write to fail")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden error, got %v", err)
	}

	if err := (Scope{Role: enums.RoleAggregator}).EnsureCooperativeWrite(other); err != nil {
		t.Fatalf("aggregator should write anywhere: %v", err)
	}
	retID := uuid.New()
	if err := (Scope{Role: enums.RoleRetailer, RetailerID: &retID}).EnsureCooperativeWrite(other); err == nil {
		t.Fatal("retailer must not write cooperative data")
	}
}

func TestEnsureCooperativeRead(t *testing.T) {
	own := uuid.New()
	coopScope := Scope{Role: enums.RoleCooperative, CooperativeID: &own}

	if err := coopScope.EnsureCooperativeRead(own); err != nil {
		t.Fatalf("own read: %v", err)
	}
	if err := coopScope.EnsureCooperativeRead(uuid.New()); err == nil {
		t.Fatal("expected cross-cooperative read to fail")
	}
	if err := (Scope{Role: enums.RoleAdmin}).EnsureCooperativeRead(uuid.New()); err != nil {
		t.Fatalf("admin read: %v", err)
	}
}

func TestEnsureAggregator(t *testing.T) {
	if err := (Scope{Role: enums.RoleAggregator}).EnsureAggregator(); err != nil {
		t.Fatalf("aggregator: %v", err)
	}
	if err := (Scope{Role: enums.RoleAdmin}).EnsureAggregator(); err != nil {
		t.Fatalf("admin: %v", err)
	}
	coopID := uuid.New()
	if err := (Scope{Role: enums.RoleCooperative, CooperativeID: &coopID}).EnsureAggregator(); err == nil {
		t.Fatal("cooperative must not pass aggregator check")
	}
}
