package enums

import "fmt"

// PurchaseOrderStatus tracks the one-way procurement lifecycle.
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusCreated  PurchaseOrderStatus = "CREATED"
	PurchaseOrderStatusReceived PurchaseOrderStatus = "RECEIVED"
)

var validPurchaseOrderStatuses = []PurchaseOrderStatus{
	PurchaseOrderStatusCreated,
	PurchaseOrderStatusReceived,
}

// String implements fmt.Stringer.
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PurchaseOrderStatus.
func (s PurchaseOrderStatus) IsValid() bool {
	for _, candidate := range validPurchaseOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePurchaseOrderStatus converts raw input into a PurchaseOrderStatus.
func ParsePurchaseOrderStatus(value string) (PurchaseOrderStatus, error) {
	for _, candidate := range validPurchaseOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid purchase order status %q", value)
}
