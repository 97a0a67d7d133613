// Package etl parses raw point-of-sale exports into typed lines usable by the
// master-data seeder and the historical order importer.
package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Line is one raw transaction line from a point-of-sale export.
type Line struct {
	CustomerName  string
	Item          string
	Category      string
	Quantity      int
	Price         decimal.Decimal
	OrderTS       time.Time
	PaymentMethod string
}

// LineTotal is quantity times unit price.
func (l Line) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

var rawTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
}

// Load reads a raw orders CSV. Header names are normalized (trimmed,
// lowercased, spaces to underscores); unparseable numeric cells coerce to
// zero rather than failing the whole file, matching the table-store policy.
func Load(r io.Reader) ([]Line, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("etl: read raw orders: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	index := make(map[string]int, len(records[0]))
	for i, column := range records[0] {
		index[normalizeHeader(column)] = i
	}

	lines := make([]Line, 0, len(records)-1)
	for _, record := range records[1:] {
		get := func(column string) string {
			i, ok := index[column]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		quantity, err := strconv.Atoi(get("quantity"))
		if err != nil {
			quantity = 0
		}
		price, err := decimal.NewFromString(get("price"))
		if err != nil {
			price = decimal.Zero
		}

		lines = append(lines, Line{
			CustomerName:  get("customer_name"),
			Item:          get("food_item"),
			Category:      get("category"),
			Quantity:      quantity,
			Price:         price,
			OrderTS:       parseRawTime(get("order_time")),
			PaymentMethod: get("payment_method"),
		})
	}
	return lines, nil
}

func normalizeHeader(column string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(column)), " ", "_")
}

func parseRawTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range rawTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
