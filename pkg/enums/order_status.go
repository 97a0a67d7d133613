package enums

import "fmt"

// OrderStatus tracks the order lifecycle in the orders table.
type OrderStatus string

const (
	OrderStatusOpen OrderStatus = "OPEN"
	OrderStatusPaid OrderStatus = "PAID"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusOpen,
	OrderStatusPaid,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
