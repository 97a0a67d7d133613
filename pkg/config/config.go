package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/veronalabs/restops-backend/pkg/enums"
)

const (
	EnvPrefix = "restops"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	Tables    TablesConfig
	Catalog   CatalogConfig
	Inventory InventoryConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Inventory.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RESTOPS_APP_ENV" default:"dev"`
	Port         string `envconfig:"RESTOPS_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"RESTOPS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RESTOPS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type TablesConfig struct {
	Backend string `envconfig:"RESTOPS_TABLES_BACKEND" default:"csv"`
	Dir     string `envconfig:"RESTOPS_TABLES_DIR" default:"tables_csv"`
}

type CatalogConfig struct {
	ProductIDStart int `envconfig:"RESTOPS_PRODUCT_ID_START" default:"1001"`
}

type InventoryConfig struct {
	ReplenishPolicy   string `envconfig:"RESTOPS_INVENTORY_REPLENISH_POLICY" default:"alert"`
	MissingRow        string `envconfig:"RESTOPS_INVENTORY_MISSING_ROW" default:"skip"`
	DefaultStockMin   int    `envconfig:"RESTOPS_INVENTORY_DEFAULT_STOCK_MIN" default:"10"`
	DefaultReorderQty int    `envconfig:"RESTOPS_INVENTORY_DEFAULT_REORDER_QTY" default:"20"`
}

// Replenish returns the parsed replenishment policy.
func (i InventoryConfig) Replenish() enums.ReplenishPolicy {
	policy, err := enums.ParseReplenishPolicy(i.ReplenishPolicy)
	if err != nil {
		return enums.ReplenishPolicyAlert
	}
	return policy
}

// MissingRowPolicy returns the parsed missing-inventory-row policy.
func (i InventoryConfig) MissingRowPolicy() enums.MissingRowPolicy {
	policy, err := enums.ParseMissingRowPolicy(i.MissingRow)
	if err != nil {
		return enums.MissingRowPolicySkip
	}
	return policy
}

func (i InventoryConfig) validate() error {
	if _, err := enums.ParseReplenishPolicy(i.ReplenishPolicy); err != nil {
		return fmt.Errorf("inventory config: %w", err)
	}
	if _, err := enums.ParseMissingRowPolicy(i.MissingRow); err != nil {
		return fmt.Errorf("inventory config: %w", err)
	}
	if i.DefaultStockMin < 0 || i.DefaultReorderQty < 0 {
		return fmt.Errorf("inventory config: default minimums must not be negative")
	}
	return nil
}
