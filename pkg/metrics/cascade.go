package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CascadeMetrics records counters for the order-to-ledger-to-inventory flow.
type CascadeMetrics struct {
	ordersCreated  prometheus.Counter
	checkouts      *prometheus.CounterVec
	ledgerEntries  *prometheus.CounterVec
	stockMovements *prometheus.CounterVec
	purchaseOrders *prometheus.CounterVec
	lowStockAlerts prometheus.Counter
}

// NewCascadeMetrics registers the cascade metrics on the provided registerer.
func NewCascadeMetrics(reg prometheus.Registerer) *CascadeMetrics {
	if reg == nil {
		return &CascadeMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders created through the order service.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkouts_total",
		Help: "Checkout attempts by result.",
	}, []string{"result"})
	ledgerEntries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_entries_total",
		Help: "Ledger entries appended by type.",
	}, []string{"type"})
	stockMovements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Stock movements recorded by reason.",
	}, []string{"reason"})
	purchaseOrders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchase_orders_total",
		Help: "Purchase orders created by origin.",
	}, []string{"origin"})
	lowStockAlerts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "low_stock_alerts_total",
		Help: "Under-minimum detections raised by sales.",
	})
	reg.MustRegister(ordersCreated, checkouts, ledgerEntries, stockMovements, purchaseOrders, lowStockAlerts)
	return &CascadeMetrics{
		ordersCreated:  ordersCreated,
		checkouts:      checkouts,
		ledgerEntries:  ledgerEntries,
		stockMovements: stockMovements,
		purchaseOrders: purchaseOrders,
		lowStockAlerts: lowStockAlerts,
	}
}

// IncOrderCreated counts a new order.
func (m *CascadeMetrics) IncOrderCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncCheckout counts a checkout attempt with the given result label.
func (m *CascadeMetrics) IncCheckout(result string) {
	if m == nil || m.checkouts == nil {
		return
	}
	m.checkouts.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncLedgerEntry counts an appended ledger entry.
func (m *CascadeMetrics) IncLedgerEntry(entryType string) {
	if m == nil || m.ledgerEntries == nil {
		return
	}
	m.ledgerEntries.WithLabelValues(normalizeLabel(entryType)).Inc()
}

// IncStockMovement counts a recorded stock movement.
func (m *CascadeMetrics) IncStockMovement(reason string) {
	if m == nil || m.stockMovements == nil {
		return
	}
	m.stockMovements.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncPurchaseOrder counts a created purchase order ("auto" or "manual").
func (m *CascadeMetrics) IncPurchaseOrder(origin string) {
	if m == nil || m.purchaseOrders == nil {
		return
	}
	m.purchaseOrders.WithLabelValues(normalizeLabel(origin)).Inc()
}

// IncLowStockAlert counts an under-minimum detection.
func (m *CascadeMetrics) IncLowStockAlert() {
	if m == nil || m.lowStockAlerts == nil {
		return
	}
	m.lowStockAlerts.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
