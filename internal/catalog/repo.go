package catalog

import (
	"context"

	"github.com/veronalabs/restops-backend/internal/tables"
)

// Repository manages the master-data tables (customers, products, branches,
// suppliers) on top of the flat-table store.
type Repository interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	AppendCustomer(ctx context.Context, customer Customer) error
	NextCustomerID(ctx context.Context) (int, error)

	ListProducts(ctx context.Context) ([]Product, error)
	FindProduct(ctx context.Context, productID int) (*Product, error)
	AppendProduct(ctx context.Context, product Product) error
	ReplaceProducts(ctx context.Context, products []Product) error
	NextProductID(ctx context.Context) (int, error)

	ListBranches(ctx context.Context) ([]Branch, error)
	ReplaceBranches(ctx context.Context, branches []Branch) error

	ListSuppliers(ctx context.Context) ([]Supplier, error)
	FindSupplier(ctx context.Context, supplierID int) (*Supplier, error)
	ReplaceSuppliers(ctx context.Context, suppliers []Supplier) error
}

type repository struct {
	store          tables.Store
	productIDStart int
}

// NewRepository returns a catalog repository bound to the provided store.
// productIDStart is the id floor for allocated product ids.
func NewRepository(store tables.Store, productIDStart int) Repository {
	if productIDStart < 1 {
		productIDStart = 1
	}
	return &repository{store: store, productIDStart: productIDStart}
}

func (r *repository) ListCustomers(ctx context.Context) ([]Customer, error) {
	rows, err := r.store.Read(ctx, TableCustomers)
	if err != nil {
		return nil, err
	}
	customers := make([]Customer, 0, len(rows))
	for _, row := range rows {
		customers = append(customers, customerFromRow(row))
	}
	return customers, nil
}

func (r *repository) AppendCustomer(ctx context.Context, customer Customer) error {
	return r.store.Append(ctx, TableCustomers, customerColumns, []tables.Row{customer.toRow()})
}

func (r *repository) NextCustomerID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TableCustomers, "customer_id", 1)
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.store.Read(ctx, TableProducts)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, productFromRow(row))
	}
	return products, nil
}

func (r *repository) FindProduct(ctx context.Context, productID int) (*Product, error) {
	products, err := r.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == productID {
			return &products[i], nil
		}
	}
	return nil, nil
}

func (r *repository) AppendProduct(ctx context.Context, product Product) error {
	return r.store.Append(ctx, TableProducts, productColumns, []tables.Row{product.toRow()})
}

func (r *repository) ReplaceProducts(ctx context.Context, products []Product) error {
	rows := make([]tables.Row, 0, len(products))
	for _, product := range products {
		rows = append(rows, product.toRow())
	}
	return r.store.Write(ctx, TableProducts, productColumns, rows)
}

func (r *repository) NextProductID(ctx context.Context) (int, error) {
	return r.store.NextID(ctx, TableProducts, "product_id", r.productIDStart)
}

func (r *repository) ListBranches(ctx context.Context) ([]Branch, error) {
	rows, err := r.store.Read(ctx, TableBranches)
	if err != nil {
		return nil, err
	}
	branches := make([]Branch, 0, len(rows))
	for _, row := range rows {
		branches = append(branches, branchFromRow(row))
	}
	return branches, nil
}

func (r *repository) ReplaceBranches(ctx context.Context, branches []Branch) error {
	rows := make([]tables.Row, 0, len(branches))
	for _, branch := range branches {
		rows = append(rows, branch.toRow())
	}
	return r.store.Write(ctx, TableBranches, branchColumns, rows)
}

func (r *repository) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	rows, err := r.store.Read(ctx, TableSuppliers)
	if err != nil {
		return nil, err
	}
	suppliers := make([]Supplier, 0, len(rows))
	for _, row := range rows {
		suppliers = append(suppliers, supplierFromRow(row))
	}
	return suppliers, nil
}

func (r *repository) FindSupplier(ctx context.Context, supplierID int) (*Supplier, error) {
	suppliers, err := r.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range suppliers {
		if suppliers[i].ID == supplierID {
			return &suppliers[i], nil
		}
	}
	return nil, nil
}

func (r *repository) ReplaceSuppliers(ctx context.Context, suppliers []Supplier) error {
	rows := make([]tables.Row, 0, len(suppliers))
	for _, supplier := range suppliers {
		rows = append(rows, supplier.toRow())
	}
	return r.store.Write(ctx, TableSuppliers, supplierColumns, rows)
}
