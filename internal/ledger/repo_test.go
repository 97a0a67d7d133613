package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

func seedOrderTables(t *testing.T, store tables.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "orders", []string{"order_id", "total_amount"}, []tables.Row{
		{"order_id": "7", "total_amount": "30"},
	}))
	require.NoError(t, store.Write(ctx, "order_items", []string{"order_id", "product_id", "quantity"}, []tables.Row{
		{"order_id": "7", "product_id": "1001", "quantity": "3"},
		{"order_id": "7", "product_id": "9999", "quantity": "1"},
		{"order_id": "8", "product_id": "1001", "quantity": "5"},
	}))
	require.NoError(t, store.Write(ctx, "products", []string{"product_id", "unit_cost"}, []tables.Row{
		{"product_id": "1001", "unit_cost": "6"},
	}))
}

func TestRepositoryCostLines(t *testing.T) {
	store := tables.NewMemoryStore()
	seedOrderTables(t, store)
	repo := NewRepository(store)

	lines, err := repo.CostLines(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.True(t, lines[0].UnitCost.Equal(decimal.RequireFromString("6")))
	require.True(t, lines[1].UnitCost.IsZero(), "unmatched product contributes zero cost")
}

func TestRepositoryFindOrderTotal(t *testing.T) {
	store := tables.NewMemoryStore()
	seedOrderTables(t, store)
	repo := NewRepository(store)

	total, found, err := repo.FindOrderTotal(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, total.Equal(decimal.RequireFromString("30")))

	_, found, err = repo.FindOrderTotal(context.Background(), 404)
	require.NoError(t, err)
	require.False(t, found)
}

func TestRepositoryAppendAndForOrder(t *testing.T) {
	store := tables.NewMemoryStore()
	repo := NewRepository(store)
	ctx := context.Background()

	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, Entry{ID: 1, TS: ts, OrderID: 7, Type: enums.LedgerEntryTypeRevenue, Amount: decimal.RequireFromString("30")}))
	require.NoError(t, repo.Append(ctx, Entry{ID: 2, TS: ts, OrderID: 7, Type: enums.LedgerEntryTypeCOGS, Amount: decimal.RequireFromString("18")}))
	require.NoError(t, repo.Append(ctx, Entry{ID: 3, TS: ts, OrderID: 8, Type: enums.LedgerEntryTypeRevenue, Amount: decimal.RequireFromString("5")}))

	entries, err := repo.ForOrder(ctx, 7)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, ts, entries[0].TS)

	id, err := repo.NextEntryID(ctx)
	require.NoError(t, err)
	require.Equal(t, 4, id)
}
