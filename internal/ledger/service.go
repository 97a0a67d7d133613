package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/veronalabs/restops-backend/pkg/enums"
	pkgerrors "github.com/veronalabs/restops-backend/pkg/errors"
	"github.com/veronalabs/restops-backend/pkg/logger"
	"github.com/veronalabs/restops-backend/pkg/metrics"
)

// Service defines operations against the accounting journal.
type Service interface {
	RecordSale(ctx context.Context, orderID int) (RecordSaleResult, error)
	HasEntry(ctx context.Context, orderID int, entryType enums.LedgerEntryType) (bool, error)
	EntriesForOrder(ctx context.Context, orderID int) ([]Entry, error)
	List(ctx context.Context) ([]Entry, error)
}

// RecordSaleResult reports the amounts posted for a checked-out order.
type RecordSaleResult struct {
	Revenue decimal.Decimal `json:"revenue"`
	COGS    decimal.Decimal `json:"cogs"`
	Entries []Entry         `json:"entries"`
}

type service struct {
	repo    Repository
	logg    *logger.Logger
	metrics *metrics.CascadeMetrics
	now     func() time.Time
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository, logg *logger.Logger, cascade *metrics.CascadeMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{
		repo:    repo,
		logg:    logg,
		metrics: cascade,
		now:     time.Now,
	}, nil
}

// RecordSale appends one REVENUE entry equal to the order total and one COGS
// entry equal to the summed item cost basis. Both entries share a timestamp
// and reference the order. The journal is never read back for correction;
// repeated posting protection lives in the checkout orchestration.
func (s *service) RecordSale(ctx context.Context, orderID int) (RecordSaleResult, error) {
	total, found, err := s.repo.FindOrderTotal(ctx, orderID)
	if err != nil {
		return RecordSaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if !found {
		return RecordSaleResult{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	lines, err := s.repo.CostLines(ctx, orderID)
	if err != nil {
		return RecordSaleResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order cost lines")
	}
	cogs := decimal.Zero
	for _, line := range lines {
		cogs = cogs.Add(line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	now := s.now()

	revenue, err := s.append(ctx, Entry{
		TS:      now,
		OrderID: orderID,
		Type:    enums.LedgerEntryTypeRevenue,
		Amount:  total,
		Note:    "revenue for confirmed sale",
	})
	if err != nil {
		return RecordSaleResult{}, err
	}
	cost, err := s.append(ctx, Entry{
		TS:      now,
		OrderID: orderID,
		Type:    enums.LedgerEntryTypeCOGS,
		Amount:  cogs,
		Note:    "estimated cost of goods sold",
	})
	if err != nil {
		return RecordSaleResult{}, err
	}

	if s.logg != nil {
		fields := map[string]any{"order_id": orderID, "revenue": total.String(), "cogs": cogs.String()}
		s.logg.Info(s.logg.WithFields(ctx, fields), "ledger.sale_recorded")
	}
	return RecordSaleResult{
		Revenue: total,
		COGS:    cogs,
		Entries: []Entry{revenue, cost},
	}, nil
}

func (s *service) append(ctx context.Context, entry Entry) (Entry, error) {
	id, err := s.repo.NextEntryID(ctx)
	if err != nil {
		return Entry{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate entry id")
	}
	entry.ID = id
	if err := s.repo.Append(ctx, entry); err != nil {
		return Entry{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append ledger entry")
	}
	s.metrics.IncLedgerEntry(string(entry.Type))
	return entry, nil
}

func (s *service) HasEntry(ctx context.Context, orderID int, entryType enums.LedgerEntryType) (bool, error) {
	if !entryType.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry type %q", entryType))
	}
	entries, err := s.repo.ForOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Type == entryType {
			return true, nil
		}
	}
	return false, nil
}

func (s *service) EntriesForOrder(ctx context.Context, orderID int) ([]Entry, error) {
	return s.repo.ForOrder(ctx, orderID)
}

func (s *service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}
