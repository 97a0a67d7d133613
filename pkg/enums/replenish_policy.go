package enums

import "fmt"

// ReplenishPolicy decides what the inventory service does when a sale pushes a
// (branch, product) pair below its stock minimum: create the purchase order
// itself, or hand the under-minimum tuples back to the caller.
type ReplenishPolicy string

const (
	ReplenishPolicyAuto  ReplenishPolicy = "auto"
	ReplenishPolicyAlert ReplenishPolicy = "alert"
)

var validReplenishPolicies = []ReplenishPolicy{
	ReplenishPolicyAuto,
	ReplenishPolicyAlert,
}

// IsValid reports whether the value is a known ReplenishPolicy.
func (p ReplenishPolicy) IsValid() bool {
	for _, candidate := range validReplenishPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseReplenishPolicy converts raw input into a ReplenishPolicy.
func ParseReplenishPolicy(value string) (ReplenishPolicy, error) {
	for _, candidate := range validReplenishPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid replenish policy %q", value)
}
