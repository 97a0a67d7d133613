package orders

import (
	"context"
	"fmt"

	"github.com/veronalabs/restops-backend/internal/tables"
)

// Repository persists orders and order items through the table store.
type Repository interface {
	ListOrders(ctx context.Context) ([]Order, error)
	FindOrder(ctx context.Context, orderID int) (*Order, error)
	AppendOrders(ctx context.Context, orders []Order) error
	UpdateOrder(ctx context.Context, order Order) error
	NextOrderID(ctx context.Context) (int, error)
	HasRealOrders(ctx context.Context) (bool, error)

	ListItems(ctx context.Context) ([]OrderItem, error)
	ItemsForOrder(ctx context.Context, orderID int) ([]OrderItem, error)
	AppendItems(ctx context.Context, items []OrderItem) error
	NextItemID(ctx context.Context) (int, error)
}

type repository struct {
	store tables.Store
}

func NewRepository(store tables.Store) Repository {
	return &repository{store: store}
}

func (r *repository) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.store.Read(ctx, TableOrders)
	if err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}
	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, orderFromRow(row))
	}
	return orders, nil
}

func (r *repository) FindOrder(ctx context.Context, orderID int) (*Order, error) {
	orders, err := r.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], nil
		}
	}
	return nil, nil
}

func (r *repository) AppendOrders(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([]tables.Row, 0, len(orders))
	for _, order := range orders {
		rows = append(rows, orderToRow(order))
	}
	if err := r.store.Append(ctx, TableOrders, orderColumns, rows); err != nil {
		return fmt.Errorf("append orders: %w", err)
	}
	return nil
}

// UpdateOrder rewrites the orders table with the given order replacing its
// row. The store is wholesale write, so updates go through a full replace.
func (r *repository) UpdateOrder(ctx context.Context, order Order) error {
	orders, err := r.ListOrders(ctx)
	if err != nil {
		return err
	}
	replaced := false
	rows := make([]tables.Row, 0, len(orders))
	for _, existing := range orders {
		if existing.ID == order.ID {
			existing = order
			replaced = true
		}
		rows = append(rows, orderToRow(existing))
	}
	if !replaced {
		return fmt.Errorf("order %d not present", order.ID)
	}
	if err := r.store.Write(ctx, TableOrders, orderColumns, rows); err != nil {
		return fmt.Errorf("write orders: %w", err)
	}
	return nil
}

func (r *repository) NextOrderID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TableOrders, "order_id", 1)
}

// HasRealOrders reports whether any non-synthetic order exists. The
// historical importer uses it to refuse a second import.
func (r *repository) HasRealOrders(ctx context.Context) (bool, error) {
	orders, err := r.ListOrders(ctx)
	if err != nil {
		return false, err
	}
	for _, order := range orders {
		if !order.Synthetic {
			return true, nil
		}
	}
	return false, nil
}

func (r *repository) ListItems(ctx context.Context) ([]OrderItem, error) {
	rows, err := r.store.Read(ctx, TableOrderItems)
	if err != nil {
		return nil, fmt.Errorf("read order items: %w", err)
	}
	items := make([]OrderItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, orderItemFromRow(row))
	}
	return items, nil
}

func (r *repository) ItemsForOrder(ctx context.Context, orderID int) ([]OrderItem, error) {
	items, err := r.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]OrderItem, 0, len(items))
	for _, item := range items {
		if item.OrderID == orderID {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

func (r *repository) AppendItems(ctx context.Context, items []OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]tables.Row, 0, len(items))
	for _, item := range items {
		rows = append(rows, orderItemToRow(item))
	}
	if err := r.store.Append(ctx, TableOrderItems, orderItemColumns, rows); err != nil {
		return fmt.Errorf("append order items: %w", err)
	}
	return nil
}

func (r *repository) NextItemID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TableOrderItems, "order_item_id", 1)
}
