package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veronalabs/restops-backend/api/controllers"
	"github.com/veronalabs/restops-backend/api/middleware"
	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/internal/ledger"
	"github.com/veronalabs/restops-backend/internal/orders"
	"github.com/veronalabs/restops-backend/pkg/config"
	"github.com/veronalabs/restops-backend/pkg/logger"
)

// NewRouter assembles the read-only snapshot API. Mutations go through the
// CLI or the embedding process; the HTTP surface only exposes table state.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	gatherer prometheus.Gatherer,
	orderService orders.Service,
	catalogService catalog.Service,
	ledgerService ledger.Service,
	inventoryService inventory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/healthz", controllers.Healthz(cfg))
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/orders", controllers.ListOrders(orderService, logg))
		r.Get("/order-items", controllers.ListOrderItems(orderService, logg))
		r.Get("/products", controllers.ListProducts(catalogService, logg))
		r.Get("/inventory", controllers.ListInventory(inventoryService, logg))
		r.Get("/inventory/low-stock", controllers.ListLowStock(inventoryService, logg))
		r.Get("/stock-movements", controllers.ListStockMovements(inventoryService, logg))
		r.Get("/ledger-entries", controllers.ListLedgerEntries(ledgerService, logg))
		r.Get("/purchase-orders", controllers.ListPurchaseOrders(inventoryService, logg))
	})

	return r
}
