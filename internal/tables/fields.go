package tables

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Timestamp layouts accepted when reading persisted tables. Values are always
// written back as RFC3339 UTC; the no-zone layout covers rows imported from
// older exports.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

const DateLayout = "2006-01-02"

// Int returns the column as an int, zero when missing or unparseable.
func Int(row Row, column string) int {
	value, err := strconv.Atoi(row[column])
	if err != nil {
		return 0
	}
	return value
}

// Decimal returns the column as a decimal, zero when missing or unparseable.
func Decimal(row Row, column string) decimal.Decimal {
	value, err := decimal.NewFromString(row[column])
	if err != nil {
		return decimal.Zero
	}
	return value
}

// Time returns the column as a UTC time, zero when missing or unparseable.
func Time(row Row, column string) time.Time {
	raw := row[column]
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Bool returns the column interpreted as a 0/1 flag.
func Bool(row Row, column string) bool {
	return Int(row, column) != 0
}

// FormatInt renders an int for persistence.
func FormatInt(value int) string {
	return strconv.Itoa(value)
}

// FormatDecimal renders a decimal for persistence.
func FormatDecimal(value decimal.Decimal) string {
	return value.String()
}

// FormatTime renders a timestamp as RFC3339 UTC.
func FormatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

// FormatBool renders a flag as 0/1, matching the persisted format.
func FormatBool(value bool) string {
	if value {
		return "1"
	}
	return "0"
}
