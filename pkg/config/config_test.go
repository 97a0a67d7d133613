package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != "8080" {
		t.Fatalf("unexpected default port: %s", cfg.App.Port)
	}
	if cfg.Tables.Backend != "csv" || cfg.Tables.Dir != "tables_csv" {
		t.Fatalf("unexpected tables defaults: %+v", cfg.Tables)
	}
	if cfg.Catalog.ProductIDStart != 1001 {
		t.Fatalf("unexpected product id floor: %d", cfg.Catalog.ProductIDStart)
	}
	if cfg.Inventory.DefaultStockMin != 10 || cfg.Inventory.DefaultReorderQty != 20 {
		t.Fatalf("unexpected inventory defaults: %+v", cfg.Inventory)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RESTOPS_APP_ENV", "prod")
	t.Setenv("RESTOPS_INVENTORY_REPLENISH_POLICY", "auto")
	t.Setenv("RESTOPS_INVENTORY_MISSING_ROW", "fail")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatal("expected prod env")
	}
	if cfg.Inventory.Replenish() != "auto" {
		t.Fatalf("unexpected replenish policy: %s", cfg.Inventory.Replenish())
	}
	if cfg.Inventory.MissingRowPolicy() != "fail" {
		t.Fatalf("unexpected missing row policy: %s", cfg.Inventory.MissingRowPolicy())
	}
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	t.Setenv("RESTOPS_INVENTORY_REPLENISH_POLICY", "sometimes")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}
