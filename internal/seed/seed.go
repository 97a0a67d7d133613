// Package seed bootstraps master data from a raw point-of-sale export:
// branches, one supplier per category, a priced product catalog and
// demand-scaled opening inventory.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/etl"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/pkg/logger"
)

// DefaultSeed keeps repeated bootstraps reproducible.
const DefaultSeed = 42

var defaultBranches = []catalog.Branch{
	{ID: 1, Name: "Central", City: "Quito"},
	{ID: 2, Name: "North", City: "Quito"},
	{ID: 3, Name: "Valley", City: "Cumbaya"},
}

// Result counts what one bootstrap wrote.
type Result struct {
	Branches  int `json:"branches"`
	Suppliers int `json:"suppliers"`
	Products  int `json:"products"`
	Inventory int `json:"inventory"`
}

// Seeder derives master data from raw transaction lines and writes it
// wholesale. The same seed and input always produce the same tables.
type Seeder struct {
	catalog        catalog.Repository
	inventory      inventory.Repository
	productIDStart int
	logg           *logger.Logger
	seed           int64
}

// NewSeeder wires a seeder. productIDStart is the first product id assigned.
func NewSeeder(catalogRepo catalog.Repository, inventoryRepo inventory.Repository, productIDStart int, seed int64, logg *logger.Logger) (*Seeder, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if productIDStart < 1 {
		productIDStart = 1
	}
	return &Seeder{
		catalog:        catalogRepo,
		inventory:      inventoryRepo,
		productIDStart: productIDStart,
		logg:           logg,
		seed:           seed,
	}, nil
}

type productKey struct {
	item     string
	category string
}

// Seed writes branches, suppliers, products and inventory derived from the
// raw lines. Unit costs come from a randomized 35-60% margin on the sale
// price; opening stock scales with observed demand, with per-branch jitter.
func (s *Seeder) Seed(ctx context.Context, lines []etl.Line) (Result, error) {
	if len(lines) == 0 {
		return Result{}, fmt.Errorf("no raw lines to seed from")
	}
	rng := rand.New(rand.NewSource(s.seed))

	categories := uniqueCategories(lines)
	suppliers := make([]catalog.Supplier, 0, len(categories))
	supplierByCategory := make(map[string]int, len(categories))
	for i, category := range categories {
		id := i + 1
		suppliers = append(suppliers, catalog.Supplier{
			ID:           id,
			Name:         "Supplier " + category,
			LeadTimeDays: 1 + rng.Intn(4),
			ContactEmail: fmt.Sprintf("purchasing_%s@supplier.example", strings.ToLower(category)),
		})
		supplierByCategory[category] = id
	}

	keys, prices, demand := collectProducts(lines)
	products := make([]catalog.Product, 0, len(keys))
	idByKey := make(map[productKey]int, len(keys))
	for i, key := range keys {
		margin := 0.35 + rng.Float64()*0.25
		price := prices[key]
		products = append(products, catalog.Product{
			ID:         s.productIDStart + i,
			Name:       key.item,
			Category:   key.category,
			SalePrice:  price,
			UnitCost:   price.Mul(decimal.NewFromFloat(1 - margin)).Round(2),
			SupplierID: supplierByCategory[key.category],
			Active:     true,
		})
		idByKey[key] = s.productIDStart + i
	}

	qmin, qmax := demandBounds(keys, demand)
	records := make([]inventory.Record, 0, len(keys)*len(defaultBranches))
	for _, key := range keys {
		base := 20
		if qmax > qmin {
			base += int(80 * float64(demand[key]-qmin) / float64(qmax-qmin))
		}
		stockMin := max(10, base/4)
		reorderQty := max(20, base*3/5)
		for _, branch := range defaultBranches {
			factor := 0.8 + rng.Float64()*0.4
			records = append(records, inventory.Record{
				BranchID:    branch.ID,
				ProductID:   idByKey[key],
				StockOnHand: int(float64(base) * factor),
				StockMin:    stockMin,
				ReorderQty:  reorderQty,
			})
		}
	}

	if err := s.catalog.ReplaceBranches(ctx, defaultBranches); err != nil {
		return Result{}, fmt.Errorf("write branches: %w", err)
	}
	if err := s.catalog.ReplaceSuppliers(ctx, suppliers); err != nil {
		return Result{}, fmt.Errorf("write suppliers: %w", err)
	}
	if err := s.catalog.ReplaceProducts(ctx, products); err != nil {
		return Result{}, fmt.Errorf("write products: %w", err)
	}
	if err := s.inventory.ReplaceRecords(ctx, records); err != nil {
		return Result{}, fmt.Errorf("write inventory: %w", err)
	}

	result := Result{
		Branches:  len(defaultBranches),
		Suppliers: len(suppliers),
		Products:  len(products),
		Inventory: len(records),
	}
	if s.logg != nil {
		fields := map[string]any{
			"suppliers": result.Suppliers,
			"products":  result.Products,
			"inventory": result.Inventory,
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "seed.master_data_written")
	}
	return result, nil
}

func uniqueCategories(lines []etl.Line) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, line := range lines {
		category := strings.TrimSpace(line.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// collectProducts returns distinct (item, category) pairs sorted by category
// then item, their first observed price, and total demanded quantity.
func collectProducts(lines []etl.Line) ([]productKey, map[productKey]decimal.Decimal, map[productKey]int) {
	prices := make(map[productKey]decimal.Decimal)
	demand := make(map[productKey]int)
	var keys []productKey
	for _, line := range lines {
		item := strings.TrimSpace(line.Item)
		category := strings.TrimSpace(line.Category)
		if item == "" || category == "" {
			continue
		}
		key := productKey{item: item, category: category}
		if _, ok := prices[key]; !ok {
			prices[key] = line.Price
			keys = append(keys, key)
		}
		demand[key] += line.Quantity
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].category != keys[j].category {
			return keys[i].category < keys[j].category
		}
		return keys[i].item < keys[j].item
	})
	return keys, prices, demand
}

func demandBounds(keys []productKey, demand map[productKey]int) (int, int) {
	if len(keys) == 0 {
		return 0, 0
	}
	qmin, qmax := demand[keys[0]], demand[keys[0]]
	for _, key := range keys[1:] {
		if demand[key] < qmin {
			qmin = demand[key]
		}
		if demand[key] > qmax {
			qmax = demand[key]
		}
	}
	return qmin, qmax
}
