package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/internal/tables"
	"github.com/veronalabs/restops-backend/pkg/enums"
	pkgerrors "github.com/veronalabs/restops-backend/pkg/errors"
	"github.com/veronalabs/restops-backend/pkg/logger"
	"github.com/veronalabs/restops-backend/pkg/metrics"
)

// Service defines the inventory and procurement operations.
type Service interface {
	ApplySale(ctx context.Context, orderID int) (ApplySaleResult, error)
	CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (int, error)
	ReceivePurchaseOrder(ctx context.Context, poID int) error
	LowStock(ctx context.Context) ([]Alert, error)
	OnHand(ctx context.Context, branchID, productID int) (int, bool, error)

	ListRecords(ctx context.Context) ([]Record, error)
	ListMovements(ctx context.Context) ([]Movement, error)
	ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error)
	ListPOItems(ctx context.Context) ([]PurchaseOrderItem, error)
}

// ApplySaleResult reports what a sale did to stock. CreatedPOIDs is populated
// under the auto policy, Alerts under both policies.
type ApplySaleResult struct {
	Alerts       []Alert `json:"alerts"`
	CreatedPOIDs []int   `json:"created_po_ids"`
}

// CreatePurchaseOrderInput carries the manual replenishment request.
// ExpectedDate is optional; when empty the supplier's lead time decides.
type CreatePurchaseOrderInput struct {
	BranchID     int    `validate:"gt=0"`
	ProductID    int    `validate:"gt=0"`
	Qty          int    `validate:"gt=0"`
	ExpectedDate string `validate:"omitempty,datetime=2006-01-02"`
}

// CatalogReader is the slice of the catalog this service needs to price and
// route replenishment.
type CatalogReader interface {
	FindProduct(ctx context.Context, productID int) (*catalog.Product, error)
	FindSupplier(ctx context.Context, supplierID int) (*catalog.Supplier, error)
}

// ServiceParams bundles the dependencies and policies for NewService.
type ServiceParams struct {
	Repo              Repository
	Catalog           CatalogReader
	Replenish         enums.ReplenishPolicy
	MissingRow        enums.MissingRowPolicy
	DefaultStockMin   int
	DefaultReorderQty int
	Logger            *logger.Logger
	Metrics           *metrics.CascadeMetrics
}

type service struct {
	repo              Repository
	catalog           CatalogReader
	replenish         enums.ReplenishPolicy
	missingRow        enums.MissingRowPolicy
	defaultStockMin   int
	defaultReorderQty int
	logg              *logger.Logger
	metrics           *metrics.CascadeMetrics
	validate          *validator.Validate
	now               func() time.Time
}

// NewService wires the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if !params.Replenish.IsValid() {
		return nil, fmt.Errorf("invalid replenish policy %q", params.Replenish)
	}
	if !params.MissingRow.IsValid() {
		return nil, fmt.Errorf("invalid missing row policy %q", params.MissingRow)
	}
	return &service{
		repo:              params.Repo,
		catalog:           params.Catalog,
		replenish:         params.Replenish,
		missingRow:        params.MissingRow,
		defaultStockMin:   params.DefaultStockMin,
		defaultReorderQty: params.DefaultReorderQty,
		logg:              params.Logger,
		metrics:           params.Metrics,
		validate:          validator.New(),
		now:               time.Now,
	}, nil
}

type recordKey struct {
	branchID  int
	productID int
}

// ApplySale decrements stock for every line of the order, records SALE
// movements and raises replenishment for pairs that fall under their minimum.
// The inventory table is persisted once per call. Stock is not re-checked
// here; the add-item pre-check is the enforcement point and this runs under
// the single-writer assumption.
func (s *service) ApplySale(ctx context.Context, orderID int) (ApplySaleResult, error) {
	branchID, found, err := s.repo.OrderBranch(ctx, orderID)
	if err != nil {
		return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !found {
		return ApplySaleResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	lines, err := s.repo.SaleLines(ctx, orderID)
	if err != nil {
		return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	if len(lines) == 0 {
		return ApplySaleResult{}, nil
	}

	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	index := make(map[recordKey]int, len(records))
	for i, record := range records {
		index[recordKey{record.BranchID, record.ProductID}] = i
	}

	if s.missingRow == enums.MissingRowPolicyFail {
		var missing error
		for _, line := range lines {
			if _, ok := index[recordKey{branchID, line.ProductID}]; !ok {
				missing = multierr.Append(missing, fmt.Errorf("no inventory row for branch %d product %d", branchID, line.ProductID))
			}
		}
		if missing != nil {
			return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, missing, "inventory rows missing for sale")
		}
	}

	now := s.now()
	movementID, err := s.repo.NextMovementID(ctx)
	if err != nil {
		return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate movement id")
	}

	var result ApplySaleResult
	var movements []Movement
	for _, line := range lines {
		i, ok := index[recordKey{branchID, line.ProductID}]
		if !ok {
			// skip policy: the documented weak spot, logged rather than fatal
			if s.logg != nil {
				fields := map[string]any{"order_id": orderID, "branch_id": branchID, "product_id": line.ProductID}
				s.logg.Warn(s.logg.WithFields(ctx, fields), "inventory.sale_line_skipped")
			}
			continue
		}

		records[i].StockOnHand -= line.Quantity
		movements = append(movements, Movement{
			ID:         movementID,
			TS:         now,
			BranchID:   branchID,
			ProductID:  line.ProductID,
			QtyChange:  -line.Quantity,
			Reason:     enums.MovementReasonSale,
			RefOrderID: orderID,
		})
		movementID++

		if records[i].StockOnHand < records[i].StockMin {
			result.Alerts = append(result.Alerts, Alert{
				BranchID:    branchID,
				ProductID:   line.ProductID,
				StockOnHand: records[i].StockOnHand,
				StockMin:    records[i].StockMin,
				ReorderQty:  records[i].ReorderQty,
			})
			s.metrics.IncLowStockAlert()
		}
	}

	if err := s.repo.ReplaceRecords(ctx, records); err != nil {
		return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist inventory")
	}
	if err := s.repo.AppendMovements(ctx, movements); err != nil {
		return ApplySaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock movements")
	}
	for range movements {
		s.metrics.IncStockMovement(string(enums.MovementReasonSale))
	}

	if s.replenish == enums.ReplenishPolicyAuto {
		for _, alert := range result.Alerts {
			poID, err := s.autoReorder(ctx, alert, now)
			if err != nil {
				// the sale already applied; reordering failure is surfaced via
				// logs and the pending alert, not by failing the checkout
				if s.logg != nil {
					s.logg.Error(s.logg.WithField(ctx, "product_id", alert.ProductID), "inventory.auto_reorder_failed", err)
				}
				continue
			}
			result.CreatedPOIDs = append(result.CreatedPOIDs, poID)
		}
	}

	return result, nil
}

func (s *service) autoReorder(ctx context.Context, alert Alert, now time.Time) (int, error) {
	product, err := s.catalog.FindProduct(ctx, alert.ProductID)
	if err != nil {
		return 0, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return 0, fmt.Errorf("product %d not in catalog", alert.ProductID)
	}
	supplier, err := s.catalog.FindSupplier(ctx, product.SupplierID)
	if err != nil {
		return 0, fmt.Errorf("load supplier: %w", err)
	}
	if supplier == nil {
		return 0, fmt.Errorf("supplier %d not in catalog", product.SupplierID)
	}

	expected := now.AddDate(0, 0, supplier.LeadTimeDays).UTC().Format(tables.DateLayout)
	poID, err := s.createPO(ctx, PurchaseOrder{
		TS:           now,
		SupplierID:   supplier.ID,
		BranchID:     alert.BranchID,
		Status:       enums.PurchaseOrderStatusCreated,
		ExpectedDate: expected,
	}, PurchaseOrderItem{
		ProductID:   alert.ProductID,
		QtyOrdered:  alert.ReorderQty,
		UnitCostEst: product.UnitCost,
	})
	if err != nil {
		return 0, err
	}
	s.metrics.IncPurchaseOrder("auto")
	if s.logg != nil {
		fields := map[string]any{"po_id": poID, "branch_id": alert.BranchID, "product_id": alert.ProductID, "qty": alert.ReorderQty}
		s.logg.Info(s.logg.WithFields(ctx, fields), "inventory.auto_reorder")
	}
	return poID, nil
}

func (s *service) createPO(ctx context.Context, po PurchaseOrder, item PurchaseOrderItem) (int, error) {
	poID, err := s.repo.NextPOID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate po id: %w", err)
	}
	po.ID = poID
	if err := s.repo.AppendPurchaseOrder(ctx, po); err != nil {
		return 0, fmt.Errorf("append purchase order: %w", err)
	}

	itemID, err := s.repo.NextPOItemID(ctx)
	if err != nil {
		return 0, fmt.Errorf("allocate po item id: %w", err)
	}
	item.ID = itemID
	item.POID = poID
	if err := s.repo.AppendPOItem(ctx, item); err != nil {
		return 0, fmt.Errorf("append purchase order item: %w", err)
	}
	return poID, nil
}

// CreatePurchaseOrder is the manual replenishment path.
func (s *service) CreatePurchaseOrder(ctx context.Context, input CreatePurchaseOrderInput) (int, error) {
	if err := s.validate.Struct(input); err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase order input")
	}

	product, err := s.catalog.FindProduct(ctx, input.ProductID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	now := s.now()
	expected := input.ExpectedDate
	if expected == "" {
		supplier, err := s.catalog.FindSupplier(ctx, product.SupplierID)
		if err != nil {
			return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}
		leadDays := 0
		if supplier != nil {
			leadDays = supplier.LeadTimeDays
		}
		expected = now.AddDate(0, 0, leadDays).UTC().Format(tables.DateLayout)
	}

	poID, err := s.createPO(ctx, PurchaseOrder{
		TS:           now,
		SupplierID:   product.SupplierID,
		BranchID:     input.BranchID,
		Status:       enums.PurchaseOrderStatusCreated,
		ExpectedDate: expected,
	}, PurchaseOrderItem{
		ProductID:   input.ProductID,
		QtyOrdered:  input.Qty,
		UnitCostEst: product.UnitCost,
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
	}
	s.metrics.IncPurchaseOrder("manual")
	return poID, nil
}

// ReceivePurchaseOrder credits stock for every item on the purchase order and
// closes it. Receiving is guarded: a RECEIVED order is never credited again.
func (s *service) ReceivePurchaseOrder(ctx context.Context, poID int) error {
	pos, err := s.repo.ListPurchaseOrders(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase orders")
	}
	poIndex := -1
	for i := range pos {
		if pos[i].ID == poID {
			poIndex = i
			break
		}
	}
	if poIndex < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
	}
	if pos[poIndex].Status == enums.PurchaseOrderStatusReceived {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order already received")
	}

	items, err := s.repo.ItemsForPO(ctx, poID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order items")
	}
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "purchase order has no items")
	}

	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	index := make(map[recordKey]int, len(records))
	for i, record := range records {
		index[recordKey{record.BranchID, record.ProductID}] = i
	}

	now := s.now()
	movementID, err := s.repo.NextMovementID(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate movement id")
	}

	branchID := pos[poIndex].BranchID
	var movements []Movement
	for _, item := range items {
		key := recordKey{branchID, item.ProductID}
		if i, ok := index[key]; ok {
			records[i].StockOnHand += item.QtyOrdered
		} else {
			records = append(records, Record{
				BranchID:    branchID,
				ProductID:   item.ProductID,
				StockOnHand: item.QtyOrdered,
				StockMin:    s.defaultStockMin,
				ReorderQty:  s.defaultReorderQty,
			})
			index[key] = len(records) - 1
		}
		movements = append(movements, Movement{
			ID:        movementID,
			TS:        now,
			BranchID:  branchID,
			ProductID: item.ProductID,
			QtyChange: item.QtyOrdered,
			Reason:    enums.MovementReasonReceipt,
			RefPOID:   poID,
		})
		movementID++
	}

	pos[poIndex].Status = enums.PurchaseOrderStatusReceived
	pos[poIndex].ReceivedTS = now

	if err := s.repo.ReplaceRecords(ctx, records); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist inventory")
	}
	if err := s.repo.AppendMovements(ctx, movements); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock movements")
	}
	if err := s.repo.ReplacePurchaseOrders(ctx, pos); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist purchase orders")
	}
	for range movements {
		s.metrics.IncStockMovement(string(enums.MovementReasonReceipt))
	}
	if s.logg != nil {
		fields := map[string]any{"po_id": poID, "branch_id": branchID, "items": len(items)}
		s.logg.Info(s.logg.WithFields(ctx, fields), "inventory.po_received")
	}
	return nil
}

// LowStock returns the current under-minimum pairs.
func (s *service) LowStock(ctx context.Context) ([]Alert, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	alerts := make([]Alert, 0)
	for _, record := range records {
		if record.StockOnHand < record.StockMin {
			alerts = append(alerts, Alert{
				BranchID:    record.BranchID,
				ProductID:   record.ProductID,
				StockOnHand: record.StockOnHand,
				StockMin:    record.StockMin,
				ReorderQty:  record.ReorderQty,
			})
		}
	}
	return alerts, nil
}

// OnHand reports the stock position for a pair, used by the add-item
// pre-check. The second return is false when no row exists.
func (s *service) OnHand(ctx context.Context, branchID, productID int) (int, bool, error) {
	records, err := s.repo.ListRecords(ctx)
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	for _, record := range records {
		if record.BranchID == branchID && record.ProductID == productID {
			return record.StockOnHand, true, nil
		}
	}
	return 0, false, nil
}

func (s *service) ListRecords(ctx context.Context) ([]Record, error) {
	return s.repo.ListRecords(ctx)
}

func (s *service) ListMovements(ctx context.Context) ([]Movement, error) {
	return s.repo.ListMovements(ctx)
}

func (s *service) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.repo.ListPurchaseOrders(ctx)
}

func (s *service) ListPOItems(ctx context.Context) ([]PurchaseOrderItem, error) {
	return s.repo.ListPOItems(ctx)
}
