package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/veronalabs/restops-backend/api/routes"
	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/internal/ledger"
	"github.com/veronalabs/restops-backend/internal/orders"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/config"
	"github.com/veronalabs/restops-backend/pkg/logger"
	"github.com/veronalabs/restops-backend/pkg/metrics"
)

func newStore(cfg *config.Config) (tables.Store, error) {
	switch cfg.Tables.Backend {
	case "csv":
		return tables.NewCSVStore(cfg.Tables.Dir)
	case "memory":
		return tables.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown tables backend %q", cfg.Tables.Backend)
	}
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	store, err := newStore(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to open table store", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	cascade := metrics.NewCascadeMetrics(registry)

	catalogRepo := catalog.NewRepository(store, cfg.Catalog.ProductIDStart)
	catalogService, err := catalog.NewService(catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(store), logg, cascade)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:              inventory.NewRepository(store),
		Catalog:           catalogRepo,
		Replenish:         cfg.Inventory.Replenish(),
		MissingRow:        cfg.Inventory.MissingRowPolicy(),
		DefaultStockMin:   cfg.Inventory.DefaultStockMin,
		DefaultReorderQty: cfg.Inventory.DefaultReorderQty,
		Logger:            logg,
		Metrics:           cascade,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(store),
		Products:  catalogRepo,
		Customers: catalogService,
		Stock:     inventoryService,
		Ledger:    ledgerService,
		Inventory: inventoryService,
		Logger:    logg,
		Metrics:   cascade,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Tables.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, registry, orderService, catalogService, ledgerService, inventoryService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
