package enums

import "fmt"

// MissingRowPolicy decides how ApplySale treats an order line whose
// (branch, product) pair has no inventory row.
type MissingRowPolicy string

const (
	MissingRowPolicySkip MissingRowPolicy = "skip"
	MissingRowPolicyFail MissingRowPolicy = "fail"
)

var validMissingRowPolicies = []MissingRowPolicy{
	MissingRowPolicySkip,
	MissingRowPolicyFail,
}

// IsValid reports whether the value is a known MissingRowPolicy.
func (p MissingRowPolicy) IsValid() bool {
	for _, candidate := range validMissingRowPolicies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseMissingRowPolicy converts raw input into a MissingRowPolicy.
func ParseMissingRowPolicy(value string) (MissingRowPolicy, error) {
	for _, candidate := range validMissingRowPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid missing row policy %q", value)
}
