package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

func TestRepositoryRecordsRoundTrip(t *testing.T) {
	store := tables.NewMemoryStore()
	repo := NewRepository(store)
	ctx := context.Background()

	records := []Record{
		{BranchID: 1, ProductID: 1001, StockOnHand: 5, StockMin: 3, ReorderQty: 20},
		{BranchID: 2, ProductID: 1001, StockOnHand: 0, StockMin: 5, ReorderQty: 10},
	}
	require.NoError(t, repo.ReplaceRecords(ctx, records))

	got, err := repo.ListRecords(ctx)
	require.NoError(t, err)
	require.Equal(t, records, got)
}

func TestRepositoryMovements(t *testing.T) {
	store := tables.NewMemoryStore()
	repo := NewRepository(store)
	ctx := context.Background()

	id, err := repo.NextMovementID(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, id)

	ts := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	movements := []Movement{
		{ID: id, TS: ts, BranchID: 1, ProductID: 1001, QtyChange: -3, Reason: enums.MovementReasonSale, RefOrderID: 7},
		{ID: id + 1, TS: ts, BranchID: 1, ProductID: 1002, QtyChange: 20, Reason: enums.MovementReasonReceipt, RefPOID: 2},
	}
	require.NoError(t, repo.AppendMovements(ctx, movements))

	got, err := repo.ListMovements(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, -3, got[0].QtyChange)
	require.Equal(t, 7, got[0].RefOrderID)
	require.Zero(t, got[0].RefPOID)
	require.Equal(t, 2, got[1].RefPOID)
	require.Zero(t, got[1].RefOrderID)

	id, err = repo.NextMovementID(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, id)
}

func TestRepositoryPurchaseOrders(t *testing.T) {
	store := tables.NewMemoryStore()
	repo := NewRepository(store)
	ctx := context.Background()

	ts := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	po := PurchaseOrder{ID: 1, TS: ts, SupplierID: 5, BranchID: 1, Status: enums.PurchaseOrderStatusCreated, ExpectedDate: "2024-05-12"}
	require.NoError(t, repo.AppendPurchaseOrder(ctx, po))
	require.NoError(t, repo.AppendPOItem(ctx, PurchaseOrderItem{ID: 1, POID: 1, ProductID: 1001, QtyOrdered: 20, UnitCostEst: decimal.NewFromInt(6)}))
	require.NoError(t, repo.AppendPOItem(ctx, PurchaseOrderItem{ID: 2, POID: 2, ProductID: 1002, QtyOrdered: 5, UnitCostEst: decimal.NewFromInt(3)}))

	pos, err := repo.ListPurchaseOrders(ctx)
	require.NoError(t, err)
	require.Len(t, pos, 1)
	require.Equal(t, enums.PurchaseOrderStatusCreated, pos[0].Status)
	require.True(t, pos[0].ReceivedTS.IsZero())

	pos[0].Status = enums.PurchaseOrderStatusReceived
	pos[0].ReceivedTS = ts
	require.NoError(t, repo.ReplacePurchaseOrders(ctx, pos))

	pos, err = repo.ListPurchaseOrders(ctx)
	require.NoError(t, err)
	require.Equal(t, enums.PurchaseOrderStatusReceived, pos[0].Status)
	require.Equal(t, ts, pos[0].ReceivedTS.UTC())

	items, err := repo.ItemsForPO(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 1001, items[0].ProductID)
	require.True(t, items[0].UnitCostEst.Equal(decimal.NewFromInt(6)))

	nextPO, err := repo.NextPOID(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, nextPO)
	nextItem, err := repo.NextPOItemID(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, nextItem)
}

func TestRepositoryOrderReads(t *testing.T) {
	store := tables.NewMemoryStore()
	repo := NewRepository(store)
	ctx := context.Background()

	orderCols := []string{"order_id", "customer_id", "branch_id", "order_ts", "status", "payment_method", "total_amount"}
	require.NoError(t, store.Write(ctx, "orders", orderCols, []tables.Row{
		{"order_id": "7", "customer_id": "1", "branch_id": "2", "status": "OPEN", "total_amount": "0"},
	}))
	itemCols := []string{"order_item_id", "order_id", "product_id", "quantity", "unit_price", "line_total"}
	require.NoError(t, store.Write(ctx, "order_items", itemCols, []tables.Row{
		{"order_item_id": "1", "order_id": "7", "product_id": "1001", "quantity": "3", "unit_price": "10", "line_total": "30"},
		{"order_item_id": "2", "order_id": "8", "product_id": "1002", "quantity": "1", "unit_price": "4", "line_total": "4"},
	}))

	branch, found, err := repo.OrderBranch(ctx, 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, 2, branch)

	_, found, err = repo.OrderBranch(ctx, 99)
	require.NoError(t, err)
	require.False(t, found)

	lines, err := repo.SaleLines(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, []SaleLine{{ProductID: 1001, Quantity: 3}}, lines)
}
