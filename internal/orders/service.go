package orders

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/etl"
	"github.com/veronalabs/restops-backend/internal/inventory"
	"github.com/veronalabs/restops-backend/internal/ledger"
	"github.com/veronalabs/restops-backend/pkg/enums"
	pkgerrors "github.com/veronalabs/restops-backend/pkg/errors"
	"github.com/veronalabs/restops-backend/pkg/logger"
	"github.com/veronalabs/restops-backend/pkg/metrics"
)

// anonymousCustomer names imported lines that carry no customer.
const anonymousCustomer = "Anonymous"

// Service is the point-of-sale surface and the orchestrator of the
// checkout cascade into the ledger and inventory.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (int, error)
	AddItem(ctx context.Context, input AddItemInput) (OrderItem, error)
	Checkout(ctx context.Context, orderID int) (CheckoutResult, error)
	ImportHistorical(ctx context.Context, raw io.Reader) (int, error)

	ListOrders(ctx context.Context) ([]Order, error)
	ListOrderItems(ctx context.Context) ([]OrderItem, error)
}

// CreateOrderInput opens a ticket. Customer and branch existence is not
// verified against master data; the store keeps whatever ids it is given.
type CreateOrderInput struct {
	CustomerID    int                 `validate:"gt=0"`
	BranchID      int                 `validate:"gt=0"`
	PaymentMethod enums.PaymentMethod `validate:"required"`
}

// AddItemInput adds a priced line to an open ticket.
type AddItemInput struct {
	OrderID   int `validate:"gt=0"`
	ProductID int `validate:"gt=0"`
	Quantity  int `validate:"gt=0"`
}

// CheckoutResult reports everything the cascade did for one paid order.
type CheckoutResult struct {
	Order        Order                   `json:"order"`
	Ledger       ledger.RecordSaleResult `json:"ledger"`
	Alerts       []inventory.Alert       `json:"alerts"`
	CreatedPOIDs []int                   `json:"created_po_ids"`
}

// ProductReader is the catalog slice used for price snapshots and import
// matching.
type ProductReader interface {
	FindProduct(ctx context.Context, productID int) (*catalog.Product, error)
	ListProducts(ctx context.Context) ([]catalog.Product, error)
}

// CustomerEnsurer resolves a customer name to an id, creating the customer
// when absent.
type CustomerEnsurer interface {
	EnsureCustomer(ctx context.Context, name string) (int, error)
}

// StockChecker answers the add-item availability question.
type StockChecker interface {
	OnHand(ctx context.Context, branchID, productID int) (int, bool, error)
}

// SalePoster posts a paid order to the accounting journal.
type SalePoster interface {
	RecordSale(ctx context.Context, orderID int) (ledger.RecordSaleResult, error)
}

// StockApplier applies a paid order to inventory.
type StockApplier interface {
	ApplySale(ctx context.Context, orderID int) (inventory.ApplySaleResult, error)
}

// ServiceParams bundles the dependencies for NewService.
type ServiceParams struct {
	Repo      Repository
	Products  ProductReader
	Customers CustomerEnsurer
	Stock     StockChecker
	Ledger    SalePoster
	Inventory StockApplier
	Logger    *logger.Logger
	Metrics   *metrics.CascadeMetrics
}

type service struct {
	repo      Repository
	products  ProductReader
	customers CustomerEnsurer
	stock     StockChecker
	ledger    SalePoster
	inventory StockApplier
	logg      *logger.Logger
	metrics   *metrics.CascadeMetrics
	validate  *validator.Validate
	now       func() time.Time
}

// NewService wires the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer ensurer required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock checker required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("sale poster required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("stock applier required")
	}
	return &service{
		repo:      params.Repo,
		products:  params.Products,
		customers: params.Customers,
		stock:     params.Stock,
		ledger:    params.Ledger,
		inventory: params.Inventory,
		logg:      params.Logger,
		metrics:   params.Metrics,
		validate:  validator.New(),
		now:       time.Now,
	}, nil
}

// CreateOrder opens an OPEN order with a zero total.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (int, error) {
	if err := s.validate.Struct(input); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order input")
	}
	if !input.PaymentMethod.IsValid() {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}

	orderID, err := s.repo.NextOrderID(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order id")
	}
	order := Order{
		ID:            orderID,
		CustomerID:    input.CustomerID,
		BranchID:      input.BranchID,
		TS:            s.now(),
		Status:        enums.OrderStatusOpen,
		PaymentMethod: input.PaymentMethod,
	}
	if err := s.repo.AppendOrders(ctx, []Order{order}); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order")
	}
	s.metrics.IncOrderCreated()
	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, orderID), "orders.created")
	}
	return orderID, nil
}

// AddItem snapshots the current sale price onto a new line and recomputes the
// order total. Stock is checked up front and nothing is written on refusal;
// the decrement itself happens at checkout.
func (s *service) AddItem(ctx context.Context, input AddItemInput) (OrderItem, error) {
	if err := s.validate.Struct(input); err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item input")
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		return OrderItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	product, err := s.products.FindProduct(ctx, input.ProductID)
	if err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return OrderItem{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	onHand, tracked, err := s.stock.OnHand(ctx, order.BranchID, input.ProductID)
	if err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check stock")
	}
	if !tracked {
		return OrderItem{}, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("no inventory for product %d at branch %d", input.ProductID, order.BranchID))
	}
	if onHand < input.Quantity {
		return OrderItem{}, pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]int{"available": onHand, "requested": input.Quantity})
	}

	itemID, err := s.repo.NextItemID(ctx)
	if err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate item id")
	}
	item := OrderItem{
		ID:        itemID,
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  input.Quantity,
		UnitPrice: product.SalePrice,
	}
	item.LineTotal = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	if err := s.repo.AppendItems(ctx, []OrderItem{item}); err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append order item")
	}

	items, err := s.repo.ItemsForOrder(ctx, order.ID)
	if err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	total := decimal.Zero
	for _, line := range items {
		total = total.Add(line.LineTotal)
	}
	order.TotalAmount = total
	if err := s.repo.UpdateOrder(ctx, *order); err != nil {
		return OrderItem{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order total")
	}
	return item, nil
}

// Checkout flips the order to PAID exactly once, then runs the cascade:
// ledger posting first, inventory application second. The steps are not
// transactional; a failure after the flip leaves the order PAID and is
// returned to the caller.
func (s *service) Checkout(ctx context.Context, orderID int) (CheckoutResult, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return CheckoutResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order == nil {
		s.metrics.IncCheckout("not_found")
		return CheckoutResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.Status != enums.OrderStatusOpen {
		s.metrics.IncCheckout("conflict")
		return CheckoutResult{}, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order %d is %s, not OPEN", orderID, order.Status))
	}

	order.Status = enums.OrderStatusPaid
	if err := s.repo.UpdateOrder(ctx, *order); err != nil {
		s.metrics.IncCheckout("error")
		return CheckoutResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist paid order")
	}

	posted, err := s.ledger.RecordSale(ctx, orderID)
	if err != nil {
		s.metrics.IncCheckout("error")
		return CheckoutResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sale")
	}
	applied, err := s.inventory.ApplySale(ctx, orderID)
	if err != nil {
		s.metrics.IncCheckout("error")
		return CheckoutResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply sale to inventory")
	}

	s.metrics.IncCheckout("ok")
	if s.logg != nil {
		fields := map[string]any{
			"order_id": orderID,
			"total":    order.TotalAmount.String(),
			"alerts":   len(applied.Alerts),
		}
		s.logg.Info(s.logg.WithFields(ctx, fields), "orders.checked_out")
	}
	return CheckoutResult{
		Order:        *order,
		Ledger:       posted,
		Alerts:       applied.Alerts,
		CreatedPOIDs: applied.CreatedPOIDs,
	}, nil
}

// ImportHistorical loads a raw point-of-sale export as PAID single-line
// orders. It refuses to run twice: once any real order exists the import is
// a no-op, so re-running the bootstrap cannot duplicate history. Imported
// orders bypass the cascade; they are record, not new trade.
func (s *service) ImportHistorical(ctx context.Context, raw io.Reader) (int, error) {
	hasReal, err := s.repo.HasRealOrders(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "inspect existing orders")
	}
	if hasReal {
		if s.logg != nil {
			s.logg.Info(ctx, "orders.import_skipped_existing")
		}
		return 0, nil
	}

	lines, err := etl.Load(raw)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "parse raw orders")
	}
	if len(lines) == 0 {
		return 0, nil
	}

	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byNameCategory := make(map[string]int, len(products))
	for _, product := range products {
		byNameCategory[productKey(product.Name, product.Category)] = product.ID
	}

	orderID, err := s.repo.NextOrderID(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order id")
	}
	itemID, err := s.repo.NextItemID(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate item id")
	}

	branchPool := []int{1, 2, 3}
	var newOrders []Order
	var newItems []OrderItem
	for i, line := range lines {
		name := strings.TrimSpace(line.CustomerName)
		if name == "" {
			name = anonymousCustomer
		}
		customerID, err := s.customers.EnsureCustomer(ctx, name)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure customer")
		}

		productID, ok := byNameCategory[productKey(line.Item, line.Category)]
		if !ok {
			if s.logg != nil {
				fields := map[string]any{"item": line.Item, "category": line.Category}
				s.logg.Warn(s.logg.WithFields(ctx, fields), "orders.import_line_unmatched")
			}
			continue
		}

		ts := line.OrderTS
		if ts.IsZero() {
			ts = s.now()
		}
		payment, err := enums.ParsePaymentMethod(line.PaymentMethod)
		if err != nil {
			payment = enums.PaymentMethodCash
		}

		order := Order{
			ID:            orderID,
			CustomerID:    customerID,
			BranchID:      branchPool[i%len(branchPool)],
			TS:            ts,
			Status:        enums.OrderStatusPaid,
			PaymentMethod: payment,
			TotalAmount:   line.LineTotal(),
		}
		newOrders = append(newOrders, order)
		newItems = append(newItems, OrderItem{
			ID:        itemID,
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
			LineTotal: line.LineTotal(),
		})
		orderID++
		itemID++
	}

	if err := s.repo.AppendOrders(ctx, newOrders); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append imported orders")
	}
	if err := s.repo.AppendItems(ctx, newItems); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append imported items")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "count", len(newOrders)), "orders.imported")
	}
	return len(newOrders), nil
}

func (s *service) ListOrders(ctx context.Context) ([]Order, error) {
	return s.repo.ListOrders(ctx)
}

func (s *service) ListOrderItems(ctx context.Context) ([]OrderItem, error) {
	return s.repo.ListItems(ctx)
}

func productKey(name, category string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(category))
}
