package enums

import "testing"

func TestParseRole(t *testing.T) {
	role, err := ParseRole("aggregator")
	if err != nil {
		t.Fatalf("parse role: %v", err)
	}
	if role != RoleAggregator {
		t.Fatalf("unexpected role %s", role)
	}
	if _, err := ParseRole("wholesaler"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestSaleStatusValidity(t *testing.T) {
	for _, status := range []SaleStatus{SaleStatusPending, SaleStatusCompleted, SaleStatusRejected} {
		if !status.IsValid() {
			t.Fatalf("expected %s to be valid", status)
		}
	}
	if SaleStatus("shipped").IsValid() {
		t.Fatal("unknown status should be invalid")
	}
}

func TestParseDispatchStatus(t *testing.T) {
	status, err := ParseDispatchStatus("completed")
	if err != nil {
		t.Fatalf("parse dispatch status: %v", err)
	}
	if status != DispatchStatusCompleted {
		t.Fatalf("unexpected status %s", status)
	}
}
