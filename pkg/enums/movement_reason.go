package enums

import "fmt"

// MovementReason explains why a stock movement row was recorded.
type MovementReason string

const (
	MovementReasonSale    MovementReason = "SALE"
	MovementReasonReceipt MovementReason = "RECEIPT"
)

var validMovementReasons = []MovementReason{
	MovementReasonSale,
	MovementReasonReceipt,
}

// IsValid reports whether the value is a known MovementReason.
func (r MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseMovementReason converts raw input into a MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
