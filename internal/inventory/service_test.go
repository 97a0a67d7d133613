package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/veronalabs/restops-backend/internal/catalog"
	"github.com/veronalabs/restops-backend/pkg/enums"
	pkgerrors "github.com/veronalabs/restops-backend/pkg/errors"
)

type fakeRepository struct {
	records   []Record
	movements []Movement
	pos       []PurchaseOrder
	items     []PurchaseOrderItem

	orderBranches map[int]int
	saleLines     map[int][]SaleLine

	replaceRecordCalls int
}

func (f *fakeRepository) ListRecords(ctx context.Context) ([]Record, error) {
	out := make([]Record, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeRepository) ReplaceRecords(ctx context.Context, records []Record) error {
	f.replaceRecordCalls++
	f.records = records
	return nil
}

func (f *fakeRepository) AppendMovements(ctx context.Context, movements []Movement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeRepository) NextMovementID(ctx context.Context) (int, error) {
	return len(f.movements) + 1, nil
}

func (f *fakeRepository) ListMovements(ctx context.Context) ([]Movement, error) {
	return f.movements, nil
}

func (f *fakeRepository) ListPurchaseOrders(ctx context.Context) ([]PurchaseOrder, error) {
	out := make([]PurchaseOrder, len(f.pos))
	copy(out, f.pos)
	return out, nil
}

func (f *fakeRepository) AppendPurchaseOrder(ctx context.Context, po PurchaseOrder) error {
	f.pos = append(f.pos, po)
	return nil
}

func (f *fakeRepository) ReplacePurchaseOrders(ctx context.Context, pos []PurchaseOrder) error {
	f.pos = pos
	return nil
}

func (f *fakeRepository) NextPOID(ctx context.Context) (int, error) {
	return len(f.pos) + 1, nil
}

func (f *fakeRepository) ListPOItems(ctx context.Context) ([]PurchaseOrderItem, error) {
	return f.items, nil
}

func (f *fakeRepository) AppendPOItem(ctx context.Context, item PurchaseOrderItem) error {
	f.items = append(f.items, item)
	return nil
}

func (f *fakeRepository) NextPOItemID(ctx context.Context) (int, error) {
	return len(f.items) + 1, nil
}

func (f *fakeRepository) ItemsForPO(ctx context.Context, poID int) ([]PurchaseOrderItem, error) {
	var out []PurchaseOrderItem
	for _, item := range f.items {
		if item.POID == poID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeRepository) OrderBranch(ctx context.Context, orderID int) (int, bool, error) {
	branch, ok := f.orderBranches[orderID]
	return branch, ok, nil
}

func (f *fakeRepository) SaleLines(ctx context.Context, orderID int) ([]SaleLine, error) {
	return f.saleLines[orderID], nil
}

type fakeCatalog struct {
	products  map[int]catalog.Product
	suppliers map[int]catalog.Supplier
}

func (f *fakeCatalog) FindProduct(ctx context.Context, productID int) (*catalog.Product, error) {
	if p, ok := f.products[productID]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeCatalog) FindSupplier(ctx context.Context, supplierID int) (*catalog.Supplier, error) {
	if s, ok := f.suppliers[supplierID]; ok {
		return &s, nil
	}
	return nil, nil
}

var testNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *fakeRepository, cat *fakeCatalog, params ServiceParams) *service {
	t.Helper()
	params.Repo = repo
	params.Catalog = cat
	if !params.Replenish.IsValid() {
		params.Replenish = enums.ReplenishPolicyAlert
	}
	if !params.MissingRow.IsValid() {
		params.MissingRow = enums.MissingRowPolicySkip
	}
	if params.DefaultStockMin == 0 {
		params.DefaultStockMin = 10
	}
	if params.DefaultReorderQty == 0 {
		params.DefaultReorderQty = 20
	}
	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return testNow }
	return impl
}

func standardCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int]catalog.Product{
			1001: {ID: 1001, Name: "Margherita", Category: "pizza", SalePrice: decimal.NewFromInt(10), UnitCost: decimal.NewFromInt(6), SupplierID: 5, Active: true},
		},
		suppliers: map[int]catalog.Supplier{
			5: {ID: 5, Name: "Dough Co", LeadTimeDays: 2},
		},
	}
}

func TestApplySaleDecrementsStockAndRaisesAlert(t *testing.T) {
	repo := &fakeRepository{
		records:       []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 5, StockMin: 3, ReorderQty: 20}},
		orderBranches: map[int]int{7: 1},
		saleLines:     map[int][]SaleLine{7: {{ProductID: 1001, Quantity: 3}}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	result, err := svc.ApplySale(context.Background(), 7)
	if err != nil {
		t.Fatalf("ApplySale: %v", err)
	}
	if got := repo.records[0].StockOnHand; got != 2 {
		t.Fatalf("stock on hand = %d, want 2", got)
	}
	if len(result.Alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(result.Alerts))
	}
	alert := result.Alerts[0]
	if alert.ProductID != 1001 || alert.StockOnHand != 2 || alert.StockMin != 3 {
		t.Fatalf("unexpected alert %+v", alert)
	}
	if len(result.CreatedPOIDs) != 0 {
		t.Fatalf("alert policy must not create purchase orders, got %v", result.CreatedPOIDs)
	}
	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want 1", len(repo.movements))
	}
	m := repo.movements[0]
	if m.QtyChange != -3 || m.Reason != enums.MovementReasonSale || m.RefOrderID != 7 {
		t.Fatalf("unexpected movement %+v", m)
	}
}

func TestApplySaleStaysQuietAboveMinimum(t *testing.T) {
	repo := &fakeRepository{
		records:       []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 50, StockMin: 3, ReorderQty: 20}},
		orderBranches: map[int]int{7: 1},
		saleLines:     map[int][]SaleLine{7: {{ProductID: 1001, Quantity: 3}}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{Replenish: enums.ReplenishPolicyAuto})

	result, err := svc.ApplySale(context.Background(), 7)
	if err != nil {
		t.Fatalf("ApplySale: %v", err)
	}
	if len(result.Alerts) != 0 || len(result.CreatedPOIDs) != 0 {
		t.Fatalf("expected no alerts or purchase orders, got %+v", result)
	}
}

func TestApplySaleAutoPolicyCreatesPurchaseOrder(t *testing.T) {
	repo := &fakeRepository{
		records:       []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 5, StockMin: 3, ReorderQty: 20}},
		orderBranches: map[int]int{7: 1},
		saleLines:     map[int][]SaleLine{7: {{ProductID: 1001, Quantity: 3}}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{Replenish: enums.ReplenishPolicyAuto})

	result, err := svc.ApplySale(context.Background(), 7)
	if err != nil {
		t.Fatalf("ApplySale: %v", err)
	}
	if len(result.CreatedPOIDs) != 1 {
		t.Fatalf("created POs = %v, want one", result.CreatedPOIDs)
	}
	if len(repo.pos) != 1 {
		t.Fatalf("persisted POs = %d, want 1", len(repo.pos))
	}
	po := repo.pos[0]
	if po.Status != enums.PurchaseOrderStatusCreated || po.SupplierID != 5 || po.BranchID != 1 {
		t.Fatalf("unexpected purchase order %+v", po)
	}
	if po.ExpectedDate != "2024-05-12" {
		t.Fatalf("expected date = %q, want 2024-05-12", po.ExpectedDate)
	}
	if len(repo.items) != 1 {
		t.Fatalf("po items = %d, want 1", len(repo.items))
	}
	item := repo.items[0]
	if item.POID != po.ID || item.ProductID != 1001 || item.QtyOrdered != 20 {
		t.Fatalf("unexpected po item %+v", item)
	}
	if !item.UnitCostEst.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("unit cost estimate = %s, want 6", item.UnitCostEst)
	}
}

func TestApplySaleSkipsMissingRows(t *testing.T) {
	repo := &fakeRepository{
		records:       []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 5, StockMin: 3, ReorderQty: 20}},
		orderBranches: map[int]int{7: 1},
		saleLines:     map[int][]SaleLine{7: {{ProductID: 1001, Quantity: 1}, {ProductID: 2002, Quantity: 4}}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	if _, err := svc.ApplySale(context.Background(), 7); err != nil {
		t.Fatalf("ApplySale: %v", err)
	}
	if len(repo.movements) != 1 {
		t.Fatalf("movements = %d, want only the tracked pair", len(repo.movements))
	}
	if repo.records[0].StockOnHand != 4 {
		t.Fatalf("stock on hand = %d, want 4", repo.records[0].StockOnHand)
	}
}

func TestApplySaleFailPolicyRejectsMissingRows(t *testing.T) {
	repo := &fakeRepository{
		records:       []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 5, StockMin: 3, ReorderQty: 20}},
		orderBranches: map[int]int{7: 1},
		saleLines:     map[int][]SaleLine{7: {{ProductID: 1001, Quantity: 1}, {ProductID: 2002, Quantity: 4}}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{MissingRow: enums.MissingRowPolicyFail})

	_, err := svc.ApplySale(context.Background(), 7)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
	if repo.replaceRecordCalls != 0 {
		t.Fatalf("inventory was written despite fail policy")
	}
	if len(repo.movements) != 0 {
		t.Fatalf("movements were written despite fail policy")
	}
}

func TestApplySaleOrderNotFound(t *testing.T) {
	repo := &fakeRepository{orderBranches: map[int]int{}}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	_, err := svc.ApplySale(context.Background(), 99)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestCreatePurchaseOrderManual(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	poID, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderInput{
		BranchID:     2,
		ProductID:    1001,
		Qty:          15,
		ExpectedDate: "2024-06-01",
	})
	if err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if poID != 1 {
		t.Fatalf("po id = %d, want 1", poID)
	}
	po := repo.pos[0]
	if po.ExpectedDate != "2024-06-01" || po.SupplierID != 5 || po.BranchID != 2 {
		t.Fatalf("unexpected purchase order %+v", po)
	}
	if repo.items[0].QtyOrdered != 15 {
		t.Fatalf("qty ordered = %d, want 15", repo.items[0].QtyOrdered)
	}
}

func TestCreatePurchaseOrderDefaultsExpectedDateFromLeadTime(t *testing.T) {
	repo := &fakeRepository{}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	if _, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderInput{BranchID: 1, ProductID: 1001, Qty: 5}); err != nil {
		t.Fatalf("CreatePurchaseOrder: %v", err)
	}
	if got := repo.pos[0].ExpectedDate; got != "2024-05-12" {
		t.Fatalf("expected date = %q, want 2024-05-12", got)
	}
}

func TestCreatePurchaseOrderValidation(t *testing.T) {
	svc := newTestService(t, &fakeRepository{}, standardCatalog(), ServiceParams{})

	_, err := svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderInput{BranchID: 1, ProductID: 1001, Qty: 0})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("err = %v, want VALIDATION_ERROR", err)
	}

	_, err = svc.CreatePurchaseOrder(context.Background(), CreatePurchaseOrderInput{BranchID: 1, ProductID: 4242, Qty: 5})
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}
}

func TestReceivePurchaseOrderCreditsStockOnce(t *testing.T) {
	repo := &fakeRepository{
		records: []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 2, StockMin: 3, ReorderQty: 20}},
		pos:     []PurchaseOrder{{ID: 1, TS: testNow, SupplierID: 5, BranchID: 1, Status: enums.PurchaseOrderStatusCreated, ExpectedDate: "2024-05-12"}},
		items:   []PurchaseOrderItem{{ID: 1, POID: 1, ProductID: 1001, QtyOrdered: 20, UnitCostEst: decimal.NewFromInt(6)}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	if err := svc.ReceivePurchaseOrder(context.Background(), 1); err != nil {
		t.Fatalf("ReceivePurchaseOrder: %v", err)
	}
	if got := repo.records[0].StockOnHand; got != 22 {
		t.Fatalf("stock on hand = %d, want 22", got)
	}
	if repo.pos[0].Status != enums.PurchaseOrderStatusReceived {
		t.Fatalf("status = %s, want RECEIVED", repo.pos[0].Status)
	}
	if repo.pos[0].ReceivedTS.IsZero() {
		t.Fatalf("received ts not set")
	}
	if len(repo.movements) != 1 || repo.movements[0].Reason != enums.MovementReasonReceipt || repo.movements[0].RefPOID != 1 {
		t.Fatalf("unexpected movements %+v", repo.movements)
	}

	err := svc.ReceivePurchaseOrder(context.Background(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("second receive err = %v, want STATE_CONFLICT", err)
	}
	if got := repo.records[0].StockOnHand; got != 22 {
		t.Fatalf("stock credited twice, on hand = %d", got)
	}
}

func TestReceivePurchaseOrderCreatesMissingRecord(t *testing.T) {
	repo := &fakeRepository{
		pos:   []PurchaseOrder{{ID: 1, BranchID: 3, SupplierID: 5, Status: enums.PurchaseOrderStatusCreated}},
		items: []PurchaseOrderItem{{ID: 1, POID: 1, ProductID: 1001, QtyOrdered: 12, UnitCostEst: decimal.NewFromInt(6)}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{DefaultStockMin: 10, DefaultReorderQty: 20})

	if err := svc.ReceivePurchaseOrder(context.Background(), 1); err != nil {
		t.Fatalf("ReceivePurchaseOrder: %v", err)
	}
	if len(repo.records) != 1 {
		t.Fatalf("records = %d, want a fresh row", len(repo.records))
	}
	r := repo.records[0]
	if r.BranchID != 3 || r.ProductID != 1001 || r.StockOnHand != 12 || r.StockMin != 10 || r.ReorderQty != 20 {
		t.Fatalf("unexpected record %+v", r)
	}
}

func TestReceivePurchaseOrderGuards(t *testing.T) {
	repo := &fakeRepository{
		pos: []PurchaseOrder{{ID: 1, BranchID: 1, Status: enums.PurchaseOrderStatusCreated}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	err := svc.ReceivePurchaseOrder(context.Background(), 42)
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("err = %v, want NOT_FOUND", err)
	}

	err = svc.ReceivePurchaseOrder(context.Background(), 1)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty po err = %v, want VALIDATION_ERROR", err)
	}
}

func TestLowStock(t *testing.T) {
	repo := &fakeRepository{
		records: []Record{
			{BranchID: 1, ProductID: 1001, StockOnHand: 2, StockMin: 3, ReorderQty: 20},
			{BranchID: 1, ProductID: 1002, StockOnHand: 9, StockMin: 3, ReorderQty: 20},
			{BranchID: 2, ProductID: 1001, StockOnHand: 0, StockMin: 5, ReorderQty: 10},
		},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	alerts, err := svc.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(alerts))
	}
}

func TestOnHand(t *testing.T) {
	repo := &fakeRepository{
		records: []Record{{BranchID: 1, ProductID: 1001, StockOnHand: 7, StockMin: 3, ReorderQty: 20}},
	}
	svc := newTestService(t, repo, standardCatalog(), ServiceParams{})

	qty, found, err := svc.OnHand(context.Background(), 1, 1001)
	if err != nil || !found || qty != 7 {
		t.Fatalf("OnHand = %d %v %v, want 7 true nil", qty, found, err)
	}
	_, found, err = svc.OnHand(context.Background(), 9, 1001)
	if err != nil || found {
		t.Fatalf("OnHand for unknown branch reported a row")
	}
}
