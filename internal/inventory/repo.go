package inventory

import (
	"context"

	"github.com/veronalabs/restops-backend/internal/tables"
)

// SaleLine is the slice of an order line the stock math needs.
type SaleLine struct {
	ProductID int
	Quantity  int
}

// Repository manages the inventory, movement and procurement tables, plus the
// order reads ApplySale needs. Inventory rows are replaced wholesale per call;
// movements and purchase orders are appended.
type Repository interface {
	ListRecords(ctx context.Context) ([]Record, error)
	ReplaceRecords(ctx context.Context, records []Record) error

	AppendMovements(ctx context.Context, movements []Movement) error
	NextMovementID(ctx context.Context) (int, error)
	ListMovements(ctx context.Context) ([]Movement, error)

	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
	AppendPurchaseOrder(ctx context.Context, po PurchaseOrder) error
	ReplacePurchaseOrders(ctx context.Context, pos []PurchaseOrder) error
	NextPOID(ctx context.Context) (int, error)

	ListPOItems(ctx context.Context) ([]PurchaseOrderItem, error)
	AppendPOItem(ctx context.Context, item PurchaseOrderItem) error
	NextPOItemID(ctx context.Context) (int, error)
	ItemsForPO(ctx context.Context, poID int) ([]PurchaseOrderItem, error)

	OrderBranch(ctx context.Context, orderID int) (int, bool, error)
	SaleLines(ctx context.Context, orderID int) ([]SaleLine, error)
}

type repository struct {
	store tables.Store
}

// NewRepository returns an inventory repository bound to the provided store.
func NewRepository(store tables.Store) Repository {
	return &repository{store: store}
}

func (r *repository) ListRecords(ctx context.Context) ([]Record, error) {
	rows, err := r.store.Read(ctx, TableInventory)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

func (r *repository) ReplaceRecords(ctx context.Context, records []Record) error {
	rows := make([]tables.Row, 0, len(records))
	for _, record := range records {
		rows = append(rows, record.toRow())
	}
	return r.store.Write(ctx, TableInventory, recordColumns, rows)
}

func (r *repository) AppendMovements(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]tables.Row, 0, len(movements))
	for _, movement := range movements {
		rows = append(rows, movement.toRow())
	}
	return r.store.Append(ctx, TableStockMovements, movementColumns, rows)
}

func (r *repository) NextMovementID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TableStockMovements, "movement_id", 1)
}

func (r *repository) ListMovements(ctx context.Context) ([]Movement, error) {
	rows, err := r.store.Read(ctx, TableStockMovements)
	if err != nil {
		return nil, err
	}
	movements := make([]Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, movementFromRow(row))
	}
	return movements, nil
}

func (r *repository) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	rows, err := r.store.Read(ctx, TablePurchaseOrders)
	if err != nil {
		return nil, err
	}
	pos := make([]PurchaseOrder, 0, len(rows))
	for _, row := range rows {
		pos = append(pos, purchaseOrderFromRow(row))
	}
	return pos, nil
}

func (r *repository) AppendPurchaseOrder(ctx context.Context, po PurchaseOrder) error {
	return r.store.Append(ctx, TablePurchaseOrders, poColumns, []tables.Row{po.toRow()})
}

func (r *repository) ReplacePurchaseOrders(ctx context.Context, pos []PurchaseOrder) error {
	rows := make([]tables.Row, 0, len(pos))
	for _, po := range pos {
		rows = append(rows, po.toRow())
	}
	return r.store.Write(ctx, TablePurchaseOrders, poColumns, rows)
}

func (r *repository) NextPOID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TablePurchaseOrders, "po_id", 1)
}

func (r *repository) ListPOItems(ctx context.Context) ([]PurchaseOrderItem, error) {
	rows, err := r.store.Read(ctx, TablePurchaseOrderItems)
	if err != nil {
		return nil, err
	}
	items := make([]PurchaseOrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, poItemFromRow(row))
	}
	return items, nil
}

func (r *repository) AppendPOItem(ctx context.Context, item PurchaseOrderItem) error {
	return r.store.Append(ctx, TablePurchaseOrderItems, poItemColumns, []tables.Row{item.toRow()})
}

func (r *repository) NextPOItemID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TablePurchaseOrderItems, "po_item_id", 1)
}

func (r *repository) ItemsForPO(ctx context.Context, poID int) ([]PurchaseOrderItem, error) {
	items, err := r.ListPOItems(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]PurchaseOrderItem, 0, 1)
	for _, item := range items {
		if item.POID == poID {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (r *repository) OrderBranch(ctx context.Context, orderID int) (int, bool, error) {
	rows, err := r.store.Read(ctx, "orders")
	if err != nil {
		return 0, false, err
	}
	for _, row := range rows {
		if tables.Int(row, "order_id") == orderID {
			return tables.Int(row, "branch_id"), true, nil
		}
	}
	return 0, false, nil
}

func (r *repository) SaleLines(ctx context.Context, orderID int) ([]SaleLine, error) {
	rows, err := r.store.Read(ctx, "order_items")
	if err != nil {
		return nil, err
	}
	lines := make([]SaleLine, 0, 4)
	for _, row := range rows {
		if tables.Int(row, "order_id") != orderID {
			continue
		}
		lines = append(lines, SaleLine{
			ProductID: tables.Int(row, "product_id"),
			Quantity:  tables.Int(row, "quantity"),
		})
	}
	return lines, nil
}
