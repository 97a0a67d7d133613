package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

var orderColumns = []string{
	"order_id", "customer_id", "branch_id", "order_ts", "status",
	"payment_method", "total_amount", "is_synthetic",
}

var orderItemColumns = []string{
	"order_item_id", "order_id", "product_id", "quantity", "unit_price", "line_total",
}

// Order is one point-of-sale ticket. Synthetic marks seeded demo orders so
// the historical importer can tell them apart from real trade.
type Order struct {
	ID            int                 `json:"order_id"`
	CustomerID    int                 `json:"customer_id"`
	BranchID      int                 `json:"branch_id"`
	TS            time.Time           `json:"order_ts"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Synthetic     bool                `json:"is_synthetic"`
}

// OrderItem is one line of an order with the price snapshot taken at add time.
type OrderItem struct {
	ID        int             `json:"order_item_id"`
	OrderID   int             `json:"order_id"`
	ProductID int             `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func orderFromRow(row tables.Row) Order {
	return Order{
		ID:            tables.Int(row, "order_id"),
		CustomerID:    tables.Int(row, "customer_id"),
		BranchID:      tables.Int(row, "branch_id"),
		TS:            tables.Time(row, "order_ts"),
		Status:        enums.OrderStatus(row["status"]),
		PaymentMethod: enums.PaymentMethod(row["payment_method"]),
		TotalAmount:   tables.Decimal(row, "total_amount"),
		Synthetic:     tables.Bool(row, "is_synthetic"),
	}
}

func orderToRow(order Order) tables.Row {
	return tables.Row{
		"order_id":       tables.FormatInt(order.ID),
		"customer_id":    tables.FormatInt(order.CustomerID),
		"branch_id":      tables.FormatInt(order.BranchID),
		"order_ts":       tables.FormatTime(order.TS),
		"status":         string(order.Status),
		"payment_method": string(order.PaymentMethod),
		"total_amount":   tables.FormatDecimal(order.TotalAmount),
		"is_synthetic":   tables.FormatBool(order.Synthetic),
	}
}

func orderItemFromRow(row tables.Row) OrderItem {
	return OrderItem{
		ID:        tables.Int(row, "order_item_id"),
		OrderID:   tables.Int(row, "order_id"),
		ProductID: tables.Int(row, "product_id"),
		Quantity:  tables.Int(row, "quantity"),
		UnitPrice: tables.Decimal(row, "unit_price"),
		LineTotal: tables.Decimal(row, "line_total"),
	}
}

func orderItemToRow(item OrderItem) tables.Row {
	return tables.Row{
		"order_item_id": tables.FormatInt(item.ID),
		"order_id":      tables.FormatInt(item.OrderID),
		"product_id":    tables.FormatInt(item.ProductID),
		"quantity":      tables.FormatInt(item.Quantity),
		"unit_price":    tables.FormatDecimal(item.UnitPrice),
		"line_total":    tables.FormatDecimal(item.LineTotal),
	}
}
