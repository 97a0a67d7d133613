package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/internal/ledger"
	"github.com/veronalabs/restops-backend/internal/orders"
	"github.com/veronalabs/restops-backend/internal/seed"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/config"
	"github.com/veronalabs/restops-backend/pkg/logger"
)

// app bundles the wired services for the CLI commands.
type app struct {
	cfg       *config.Config
	logg      *logger.Logger
	catalog   catalog.Service
	orders    orders.Service
	ledger    ledger.Service
	inventory inventory.Service
	seeder    *seed.Seeder
}

func buildApp() (*app, error) {
	logg := logger.New(logger.Options{ServiceName: "restopsctl"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "restopsctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	var store tables.Store
	switch cfg.Tables.Backend {
	case "csv":
		store, err = tables.NewCSVStore(cfg.Tables.Dir)
		if err != nil {
			return nil, fmt.Errorf("open table store: %w", err)
		}
	case "memory":
		store = tables.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown tables backend %q", cfg.Tables.Backend)
	}

	catalogRepo := catalog.NewRepository(store, cfg.Catalog.ProductIDStart)
	catalogService, err := catalog.NewService(catalogRepo, logg)
	if err != nil {
		return nil, err
	}

	ledgerService, err := ledger.NewService(ledger.NewRepository(store), logg, nil)
	if err != nil {
		return nil, err
	}

	inventoryRepo := inventory.NewRepository(store)
	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		Repo:              inventoryRepo,
		Catalog:           catalogRepo,
		Replenish:         cfg.Inventory.Replenish(),
		MissingRow:        cfg.Inventory.MissingRowPolicy(),
		DefaultStockMin:   cfg.Inventory.DefaultStockMin,
		DefaultReorderQty: cfg.Inventory.DefaultReorderQty,
		Logger:            logg,
	})
	if err != nil {
		return nil, err
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:      orders.NewRepository(store),
		Products:  catalogRepo,
		Customers: catalogService,
		Stock:     inventoryService,
		Ledger:    ledgerService,
		Inventory: inventoryService,
		Logger:    logg,
	})
	if err != nil {
		return nil, err
	}

	seeder, err := seed.NewSeeder(catalogRepo, inventoryRepo, cfg.Catalog.ProductIDStart, seed.DefaultSeed, logg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:       cfg,
		logg:      logg,
		catalog:   catalogService,
		orders:    orderService,
		ledger:    ledgerService,
		inventory: inventoryService,
		seeder:    seeder,
	}, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
