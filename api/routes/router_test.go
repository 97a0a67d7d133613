package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/internal/ledger"
	"github.com/veronalabs/restops-backend/internal/orders"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/config"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	store := tables.NewMemoryStore()

	catalogRepo := catalog.NewRepository(store, 1001)
	catalogSvc, err := catalog.NewService(catalogRepo, nil)
	require.NoError(t, err)

	ledgerSvc, err := ledger.NewService(ledger.NewRepository(store), nil, nil)
	require.NoError(t, err)

	inventoryRepo := inventory.NewRepository(store)
	inventorySvc, err := inventory.NewService(inventory.ServiceParams{
		Repo:              inventoryRepo,
		Catalog:           catalogRepo,
		Replenish:         enums.ReplenishPolicyAlert,
		MissingRow:        enums.MissingRowPolicySkip,
		DefaultStockMin:   10,
		DefaultReorderQty: 20,
	})
	require.NoError(t, err)

	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(store),
		Products:  catalogRepo,
		Customers: catalogSvc,
		Stock:     inventorySvc,
		Ledger:    ledgerSvc,
		Inventory: inventorySvc,
	})
	require.NoError(t, err)

	require.NoError(t, catalogRepo.ReplaceProducts(ctx, []catalog.Product{
		{ID: 1001, Name: "Margherita", Category: "pizza", SalePrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6), SupplierID: 1, Active: true},
	}))
	require.NoError(t, inventoryRepo.ReplaceRecords(ctx, []inventory.Record{
		{BranchID: 1, ProductID: 1001, StockOnHand: 2, StockMin: 3, ReorderQty: 20},
	}))

	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	return NewRouter(cfg, nil, nil, orderSvc, catalogSvc, ledgerSvc, inventorySvc)
}

func getJSON(t *testing.T, handler http.Handler, path string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "GET %s", path)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestSnapshotEndpoints(t *testing.T) {
	handler := newTestRouter(t)

	for _, path := range []string{
		"/v1/orders",
		"/v1/order-items",
		"/v1/products",
		"/v1/inventory",
		"/v1/stock-movements",
		"/v1/ledger-entries",
		"/v1/purchase-orders",
	} {
		payload := getJSON(t, handler, path)
		_, ok := payload["data"]
		require.True(t, ok, "missing data envelope for %s", path)
	}

	products := getJSON(t, handler, "/v1/products")["data"].([]any)
	require.Len(t, products, 1)

	lowStock := getJSON(t, handler, "/v1/inventory/low-stock")["data"].([]any)
	require.Len(t, lowStock, 1)
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(t)
	payload := getJSON(t, handler, "/healthz")
	data := payload["data"].(map[string]any)
	require.Equal(t, "ok", data["status"])
}

func TestRequestIDHeaderEchoed(t *testing.T) {
	handler := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
