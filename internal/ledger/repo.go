package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

const TableLedgerEntries = "ledger_entries"

var entryColumns = []string{"entry_id", "entry_ts", "order_id", "entry_type", "amount", "note"}

// Entry is one immutable row of the accounting journal.
type Entry struct {
	ID      int                   `json:"entry_id"`
	TS      time.Time             `json:"entry_ts"`
	OrderID int                   `json:"order_id"`
	Type    enums.LedgerEntryType `json:"entry_type"`
	Amount  decimal.Decimal       `json:"amount"`
	Note    string                `json:"note"`
}

// CostLine is an order line joined with its product's unit cost. A line whose
// product no longer resolves carries a zero unit cost.
type CostLine struct {
	ProductID int
	Quantity  int
	UnitCost  decimal.Decimal
}

// Repository persists ledger entries and reads the order data a posting
// needs. Entries are append-only; nothing here mutates existing rows.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	NextEntryID(ctx context.Context) (int, error)
	List(ctx context.Context) ([]Entry, error)
	ForOrder(ctx context.Context, orderID int) ([]Entry, error)

	FindOrderTotal(ctx context.Context, orderID int) (decimal.Decimal, bool, error)
	CostLines(ctx context.Context, orderID int) ([]CostLine, error)
}

type repository struct {
	store tables.Store
}

// NewRepository returns a ledger repository bound to the provided store.
func NewRepository(store tables.Store) Repository {
	return &repository{store: store}
}

func entryFromRow(row tables.Row) Entry {
	entryType, _ := enums.ParseLedgerEntryType(row["entry_type"])
	return Entry{
		ID:      tables.Int(row, "entry_id"),
		TS:      tables.Time(row, "entry_ts"),
		OrderID: tables.Int(row, "order_id"),
		Type:    entryType,
		Amount:  tables.Decimal(row, "amount"),
		Note:    row["note"],
	}
}

func (e Entry) toRow() tables.Row {
	return tables.Row{
		"entry_id":   tables.FormatInt(e.ID),
		"entry_ts":   tables.FormatTime(e.TS),
		"order_id":   tables.FormatInt(e.OrderID),
		"entry_type": string(e.Type),
		"amount":     tables.FormatDecimal(e.Amount),
		"note":       e.Note,
	}
}

func (r *repository) Append(ctx context.Context, entry Entry) error {
	return r.store.Append(ctx, TableLedgerEntries, entryColumns, []tables.Row{entry.toRow()})
}

func (r *repository) NextEntryID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TableLedgerEntries, "entry_id", 1)
}

func (r *repository) List(ctx context.Context) ([]Entry, error) {
	rows, err := r.store.Read(ctx, TableLedgerEntries)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}
	return entries, nil
}

func (r *repository) ForOrder(ctx context.Context, orderID int) ([]Entry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]Entry, 0, 2)
	for _, entry := range entries {
		if entry.OrderID == orderID {
			matched = append(matched, entry)
		}
	}
	return matched, nil
}

func (r *repository) FindOrderTotal(ctx context.Context, orderID int) (decimal.Decimal, bool, error) {
	rows, err := r.store.Read(ctx, "orders")
	if err != nil {
		return decimal.Zero, false, err
	}
	for _, row := range rows {
		if tables.Int(row, "order_id") == orderID {
			return tables.Decimal(row, "total_amount"), true, nil
		}
	}
	return decimal.Zero, false, nil
}

// CostLines joins the order's items to products by id. The join is an indexed
// lookup so posting cost scales with order size, not table size.
func (r *repository) CostLines(ctx context.Context, orderID int) ([]CostLine, error) {
	productRows, err := r.store.Read(ctx, "products")
	if err != nil {
		return nil, err
	}
	unitCostByProduct := make(map[int]decimal.Decimal, len(productRows))
	for _, row := range productRows {
		unitCostByProduct[tables.Int(row, "product_id")] = tables.Decimal(row, "unit_cost")
	}

	itemRows, err := r.store.Read(ctx, "order_items")
	if err != nil {
		return nil, err
	}
	lines := make([]CostLine, 0, 4)
	for _, row := range itemRows {
		if tables.Int(row, "order_id") != orderID {
			continue
		}
		productID := tables.Int(row, "product_id")
		lines = append(lines, CostLine{
			ProductID: productID,
			Quantity:  tables.Int(row, "quantity"),
			UnitCost:  unitCostByProduct[productID],
		})
	}
	return lines, nil
}
