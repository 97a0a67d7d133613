package enums

import "testing"

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("PAID")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != OrderStatusPaid {
		t.Fatalf("unexpected status: %s", status)
	}
	if _, err := ParseOrderStatus("CANCELLED"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPurchaseOrderStatusValidity(t *testing.T) {
	if !PurchaseOrderStatusReceived.IsValid() {
		t.Fatal("RECEIVED should be valid")
	}
	if PurchaseOrderStatus("SHIPPED").IsValid() {
		t.Fatal("SHIPPED should not be valid")
	}
}

func TestPolicyParsing(t *testing.T) {
	if p, err := ParseReplenishPolicy("auto"); err != nil || p != ReplenishPolicyAuto {
		t.Fatalf("parse auto: %v %v", p, err)
	}
	if _, err := ParseReplenishPolicy("manual"); err == nil {
		t.Fatal("expected error for unknown replenish policy")
	}
	if p, err := ParseMissingRowPolicy("fail"); err != nil || p != MissingRowPolicyFail {
		t.Fatalf("parse fail: %v %v", p, err)
	}
}
