package tables

import (
	"context"
	"strconv"
)

// Row is one record of a named table, keyed by column name. Values are the
// raw persisted strings; typed access goes through the field helpers.
type Row map[string]string

// Store is the flat-table persistence contract. Every write replaces the
// table wholesale; a missing table reads as empty, never as an error.
type Store interface {
	// Read returns the table's rows in persisted order, empty if absent.
	Read(ctx context.Context, table string) ([]Row, error)
	// Write replaces the table contents with rows, persisting columns in order.
	Write(ctx context.Context, table string, columns []string, rows []Row) error
	// Append reads the table, concatenates rows and writes the result back.
	Append(ctx context.Context, table string, columns []string, rows []Row) error
	// NextID returns the smallest unused integer >= start for idColumn.
	NextID(ctx context.Context, table, idColumn string, start int) (int, error)
}

// nextIDFromRows computes max(parseable values in idColumn, start-1) + 1.
// Blank and unparseable values are ignored rather than treated as errors.
func nextIDFromRows(rows []Row, idColumn string, start int) int {
	max := start - 1
	for _, row := range rows {
		raw, ok := row[idColumn]
		if !ok || raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if value > max {
			max = value
		}
	}
	return max + 1
}

func cloneRow(row Row) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

func cloneRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = cloneRow(row)
	}
	return out
}
