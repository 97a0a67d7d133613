package catalog

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/veronalabs/restops-backend/internal/tables"
)

const (
	TableCustomers = "customers"
	TableProducts  = "products"
	TableBranches  = "branches"
	TableSuppliers = "suppliers"
)

var (
	customerColumns = []string{"customer_id", "customer_name", "created_at"}
	productColumns  = []string{"product_id", "product_name", "category", "sale_price", "unit_cost", "supplier_id", "is_active"}
	branchColumns   = []string{"branch_id", "branch_name", "city"}
	supplierColumns = []string{"supplier_id", "supplier_name", "lead_time_days", "contact_email"}
)

type Customer struct {
	ID        int       `json:"customer_id"`
	Name      string    `json:"customer_name"`
	CreatedAt time.Time `json:"created_at"`
}

type Product struct {
	ID         int             `json:"product_id"`
	Name       string          `json:"product_name"`
	Category   string          `json:"category"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	SupplierID int             `json:"supplier_id"`
	Active     bool            `json:"is_active"`
}

type Branch struct {
	ID   int    `json:"branch_id"`
	Name string `json:"branch_name"`
	City string `json:"city"`
}

type Supplier struct {
	ID           int    `json:"supplier_id"`
	Name         string `json:"supplier_name"`
	LeadTimeDays int    `json:"lead_time_days"`
	ContactEmail string `json:"contact_email"`
}

func customerFromRow(row tables.Row) Customer {
	return Customer{
		ID:        tables.Int(row, "customer_id"),
		Name:      row["customer_name"],
		CreatedAt: tables.Time(row, "created_at"),
	}
}

func (c Customer) toRow() tables.Row {
	return tables.Row{
		"customer_id":   tables.FormatInt(c.ID),
		"customer_name": c.Name,
		"created_at":    tables.FormatTime(c.CreatedAt),
	}
}

func productFromRow(row tables.Row) Product {
	active := true
	if row["is_active"] != "" {
		active = tables.Bool(row, "is_active")
	}
	return Product{
		ID:         tables.Int(row, "product_id"),
		Name:       row["product_name"],
		Category:   row["category"],
		SalePrice:  tables.Decimal(row, "sale_price"),
		UnitCost:   tables.Decimal(row, "unit_cost"),
		SupplierID: tables.Int(row, "supplier_id"),
		Active:     active,
	}
}

func (p Product) toRow() tables.Row {
	return tables.Row{
		"product_id":   tables.FormatInt(p.ID),
		"product_name": p.Name,
		"category":     p.Category,
		"sale_price":   tables.FormatDecimal(p.SalePrice),
		"unit_cost":    tables.FormatDecimal(p.UnitCost),
		"supplier_id":  tables.FormatInt(p.SupplierID),
		"is_active":    tables.FormatBool(p.Active),
	}
}

func branchFromRow(row tables.Row) Branch {
	return Branch{
		ID:   tables.Int(row, "branch_id"),
		Name: row["branch_name"],
		City: row["city"],
	}
}

func (b Branch) toRow() tables.Row {
	return tables.Row{
		"branch_id":   tables.FormatInt(b.ID),
		"branch_name": b.Name,
		"city":        b.City,
	}
}

func supplierFromRow(row tables.Row) Supplier {
	return Supplier{
		ID:           tables.Int(row, "supplier_id"),
		Name:         row["supplier_name"],
		LeadTimeDays: tables.Int(row, "lead_time_days"),
		ContactEmail: row["contact_email"],
	}
}

func (s Supplier) toRow() tables.Row {
	return tables.Row{
		"supplier_id":    tables.FormatInt(s.ID),
		"supplier_name":  s.Name,
		"lead_time_days": tables.FormatInt(s.LeadTimeDays),
		"contact_email":  s.ContactEmail,
	}
}
