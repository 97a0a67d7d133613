package tables

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCSVStore(t *testing.T) *CSVStore {
	t.Helper()
	store, err := NewCSVStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestCSVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	columns := []string{"product_id", "product_name", "sale_price"}
	require.NoError(t, store.Write(ctx, "products", columns, []Row{
		{"product_id": "1001", "product_name": "Margherita, large", "sale_price": "10.5"},
		{"product_id": "1002", "product_name": "Tiramisu", "sale_price": "6"},
	}))

	rows, err := store.Read(ctx, "products")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Margherita, large", rows[0]["product_name"])
	require.Equal(t, "6", rows[1]["sale_price"])
}

func TestCSVStoreMissingFileReadsEmpty(t *testing.T) {
	store := newTestCSVStore(t)
	rows, err := store.Read(context.Background(), "inventory")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestCSVStoreAppendReadsThenRewrites(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	columns := []string{"entry_id", "entry_type"}
	require.NoError(t, store.Append(ctx, "ledger_entries", columns, []Row{{"entry_id": "1", "entry_type": "REVENUE"}}))
	require.NoError(t, store.Append(ctx, "ledger_entries", columns, []Row{{"entry_id": "2", "entry_type": "COGS"}}))

	rows, err := store.Read(ctx, "ledger_entries")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "COGS", rows[1]["entry_type"])
}

func TestCSVStoreWriteIsWholesaleReplace(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewCSVStore(dir)
	require.NoError(t, err)

	columns := []string{"branch_id", "product_id", "stock_on_hand"}
	require.NoError(t, store.Write(ctx, "inventory", columns, []Row{
		{"branch_id": "1", "product_id": "1001", "stock_on_hand": "5"},
	}))
	require.NoError(t, store.Write(ctx, "inventory", columns, []Row{
		{"branch_id": "1", "product_id": "1001", "stock_on_hand": "2"},
	}))

	data, err := os.ReadFile(filepath.Join(dir, "inventory.csv"))
	require.NoError(t, err)
	require.Equal(t, "branch_id,product_id,stock_on_hand\n1,1001,2\n", string(data))
}

func TestCSVStoreTolerantOfShortRecords(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.csv"), []byte("order_id,status,total_amount\n1,OPEN\n"), 0o644))

	store, err := NewCSVStore(dir)
	require.NoError(t, err)

	rows, err := store.Read(ctx, "orders")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "", rows[0]["total_amount"])
}

func TestCSVStoreNextID(t *testing.T) {
	ctx := context.Background()
	store := newTestCSVStore(t)

	id, err := store.NextID(ctx, "purchase_orders", "po_id", 1)
	require.NoError(t, err)
	require.Equal(t, 1, id)

	require.NoError(t, store.Write(ctx, "purchase_orders", []string{"po_id"}, []Row{{"po_id": "4"}}))
	id, err = store.NextID(ctx, "purchase_orders", "po_id", 1)
	require.NoError(t, err)
	require.Equal(t, 5, id)
}
