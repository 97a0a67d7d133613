package inventory

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

const (
	TableInventory          = "inventory"
	TableStockMovements     = "stock_movements"
	TablePurchaseOrders     = "purchase_orders"
	TablePurchaseOrderItems = "purchase_order_items"
)

var (
	recordColumns   = []string{"branch_id", "product_id", "stock_on_hand", "stock_min", "reorder_qty"}
	movementColumns = []string{"movement_id", "movement_ts", "branch_id", "product_id", "qty_change", "reason", "ref_order_id", "ref_po_id"}
	poColumns       = []string{"po_id", "po_ts", "supplier_id", "branch_id", "status", "expected_date", "received_ts"}
	poItemColumns   = []string{"po_item_id", "po_id", "product_id", "qty_ordered", "unit_cost_est"}
)

// Record is the stock position for one (branch, product) pair.
type Record struct {
	BranchID    int `json:"branch_id"`
	ProductID   int `json:"product_id"`
	StockOnHand int `json:"stock_on_hand"`
	StockMin    int `json:"stock_min"`
	ReorderQty  int `json:"reorder_qty"`
}

// Movement is one audit-trail row for a stock change. RefOrderID is set for
// SALE rows, RefPOID for RECEIPT rows; the other stays zero.
type Movement struct {
	ID         int                  `json:"movement_id"`
	TS         time.Time            `json:"movement_ts"`
	BranchID   int                  `json:"branch_id"`
	ProductID  int                  `json:"product_id"`
	QtyChange  int                  `json:"qty_change"`
	Reason     enums.MovementReason `json:"reason"`
	RefOrderID int                  `json:"ref_order_id"`
	RefPOID    int                  `json:"ref_po_id"`
}

// PurchaseOrder is one procurement document; its items are fixed at creation.
type PurchaseOrder struct {
	ID           int                       `json:"po_id"`
	TS           time.Time                 `json:"po_ts"`
	SupplierID   int                       `json:"supplier_id"`
	BranchID     int                       `json:"branch_id"`
	Status       enums.PurchaseOrderStatus `json:"status"`
	ExpectedDate string                    `json:"expected_date"`
	ReceivedTS   time.Time                 `json:"received_ts"`
}

type PurchaseOrderItem struct {
	ID          int             `json:"po_item_id"`
	POID        int             `json:"po_id"`
	ProductID   int             `json:"product_id"`
	QtyOrdered  int             `json:"qty_ordered"`
	UnitCostEst decimal.Decimal `json:"unit_cost_est"`
}

// Alert is one under-minimum detection, the tuple handed to the caller under
// the alert-only replenishment policy.
type Alert struct {
	BranchID    int `json:"branch_id"`
	ProductID   int `json:"product_id"`
	StockOnHand int `json:"stock_on_hand"`
	StockMin    int `json:"stock_min"`
	ReorderQty  int `json:"reorder_qty"`
}

func recordFromRow(row tables.Row) Record {
	return Record{
		BranchID:    tables.Int(row, "branch_id"),
		ProductID:   tables.Int(row, "product_id"),
		StockOnHand: tables.Int(row, "stock_on_hand"),
		StockMin:    tables.Int(row, "stock_min"),
		ReorderQty:  tables.Int(row, "reorder_qty"),
	}
}

func (r Record) toRow() tables.Row {
	return tables.Row{
		"branch_id":     tables.FormatInt(r.BranchID),
		"product_id":    tables.FormatInt(r.ProductID),
		"stock_on_hand": tables.FormatInt(r.StockOnHand),
		"stock_min":     tables.FormatInt(r.StockMin),
		"reorder_qty":   tables.FormatInt(r.ReorderQty),
	}
}

func movementFromRow(row tables.Row) Movement {
	reason, _ := enums.ParseMovementReason(row["reason"])
	return Movement{
		ID:         tables.Int(row, "movement_id"),
		TS:         tables.Time(row, "movement_ts"),
		BranchID:   tables.Int(row, "branch_id"),
		ProductID:  tables.Int(row, "product_id"),
		QtyChange:  tables.Int(row, "qty_change"),
		Reason:     reason,
		RefOrderID: tables.Int(row, "ref_order_id"),
		RefPOID:    tables.Int(row, "ref_po_id"),
	}
}

func (m Movement) toRow() tables.Row {
	row := tables.Row{
		"movement_id": tables.FormatInt(m.ID),
		"movement_ts": tables.FormatTime(m.TS),
		"branch_id":   tables.FormatInt(m.BranchID),
		"product_id":  tables.FormatInt(m.ProductID),
		"qty_change":  tables.FormatInt(m.QtyChange),
		"reason":      string(m.Reason),
		"ref_order_id": "",
		"ref_po_id":    "",
	}
	if m.RefOrderID != 0 {
		row["ref_order_id"] = tables.FormatInt(m.RefOrderID)
	}
	if m.RefPOID != 0 {
		row["ref_po_id"] = tables.FormatInt(m.RefPOID)
	}
	return row
}

func purchaseOrderFromRow(row tables.Row) PurchaseOrder {
	status, _ := enums.ParsePurchaseOrderStatus(row["status"])
	return PurchaseOrder{
		ID:           tables.Int(row, "po_id"),
		TS:           tables.Time(row, "po_ts"),
		SupplierID:   tables.Int(row, "supplier_id"),
		BranchID:     tables.Int(row, "branch_id"),
		Status:       status,
		ExpectedDate: row["expected_date"],
		ReceivedTS:   tables.Time(row, "received_ts"),
	}
}

func (p PurchaseOrder) toRow() tables.Row {
	return tables.Row{
		"po_id":         tables.FormatInt(p.ID),
		"po_ts":         tables.FormatTime(p.TS),
		"supplier_id":   tables.FormatInt(p.SupplierID),
		"branch_id":     tables.FormatInt(p.BranchID),
		"status":        string(p.Status),
		"expected_date": p.ExpectedDate,
		"received_ts":   tables.FormatTime(p.ReceivedTS),
	}
}

func poItemFromRow(row tables.Row) PurchaseOrderItem {
	return PurchaseOrderItem{
		ID:          tables.Int(row, "po_item_id"),
		POID:        tables.Int(row, "po_id"),
		ProductID:   tables.Int(row, "product_id"),
		QtyOrdered:  tables.Int(row, "qty_ordered"),
		UnitCostEst: tables.Decimal(row, "unit_cost_est"),
	}
}

func (i PurchaseOrderItem) toRow() tables.Row {
	return tables.Row{
		"po_item_id":    tables.FormatInt(i.ID),
		"po_id":         tables.FormatInt(i.POID),
		"product_id":    tables.FormatInt(i.ProductID),
		"qty_ordered":   tables.FormatInt(i.QtyOrdered),
		"unit_cost_est": tables.FormatDecimal(i.UnitCostEst),
	}
}
