package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	pkgerrors "github.com/veronalabs/restops-backend/pkg/errors"
	"github.com/veronalabs/restops-backend/pkg/logger"
)

// Service exposes master-data operations. Catalog mutation is the surface the
// dashboard layer drives; the order service only reads from it.
type Service interface {
	EnsureCustomer(ctx context.Context, name string) (int, error)
	CreateProduct(ctx context.Context, input CreateProductInput) (int, error)
	SetProductActive(ctx context.Context, productID int, active bool) error
	ListProducts(ctx context.Context) ([]Product, error)
	ListOrderable(ctx context.Context) ([]Product, error)
	ListBranches(ctx context.Context) ([]Branch, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)
}

// CreateProductInput carries the fields for a new catalog entry.
type CreateProductInput struct {
	Name       string          `validate:"required"`
	Category   string          `validate:"required"`
	SalePrice  decimal.Decimal `validate:"-"`
	UnitCost   decimal.Decimal `validate:"-"`
	SupplierID int             `validate:"gt=0"`
}

type service struct {
	repo     Repository
	logg     *logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		repo:     repo,
		logg:     logg,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// EnsureCustomer returns the id of the named customer, creating the row if
// absent. Name matching is case-insensitive so customer names stay unique.
func (s *service) EnsureCustomer(ctx context.Context, name string) (int, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}

	customers, err := s.repo.ListCustomers(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load customers")
	}
	for _, customer := range customers {
		if strings.EqualFold(customer.Name, trimmed) {
			return customer.ID, nil
		}
	}

	id, err := s.repo.NextCustomerID(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate customer id")
	}
	customer := Customer{ID: id, Name: trimmed, CreatedAt: s.now()}
	if err := s.repo.AppendCustomer(ctx, customer); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append customer")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "customer_id", id), "customer.created")
	}
	return id, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (int, error) {
	if err := s.validate.Struct(input); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product input")
	}
	if input.SalePrice.IsNegative() || input.UnitCost.IsNegative() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "prices must not be negative")
	}

	supplier, err := s.repo.FindSupplier(ctx, input.SupplierID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	if supplier == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}

	id, err := s.repo.NextProductID(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate product id")
	}
	product := Product{
		ID:         id,
		Name:       strings.TrimSpace(input.Name),
		Category:   strings.TrimSpace(input.Category),
		SalePrice:  input.SalePrice,
		UnitCost:   input.UnitCost,
		SupplierID: input.SupplierID,
		Active:     true,
	}
	if err := s.repo.AppendProduct(ctx, product); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append product")
	}
	return id, nil
}

// SetProductActive flips the active flag. Inactive products stay in the table
// so historical order items keep resolving.
func (s *service) SetProductActive(ctx context.Context, productID int, active bool) error {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	found := false
	for i := range products {
		if products[i].ID == productID {
			products[i].Active = active
			found = true
			break
		}
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := s.repo.ReplaceProducts(ctx, products); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist products")
	}
	return nil
}

func (s *service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

// ListOrderable filters to active products, the set the ordering UI offers.
func (s *service) ListOrderable(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	orderable := make([]Product, 0, len(products))
	for _, product := range products {
		if product.Active {
			orderable = append(orderable, product)
		}
	}
	return orderable, nil
}

func (s *service) ListBranches(ctx context.Context) ([]Branch, error) {
	return s.repo.ListBranches(ctx)
}

func (s *service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}
