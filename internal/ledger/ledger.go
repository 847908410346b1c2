// Package ledger owns the point-of-sale state: the catalog and every record
// set that moves stock. Each mutating method validates its whole input
// before the first write, so a rejected call leaves no partial change.
package ledger

import (
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/catalog"
	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/pricing"
	"vintagepos/backend/internal/xid"
)

type Ledger struct {
	mu          sync.RWMutex
	catalog     *catalog.Catalog
	soldItems   []domain.SoldItem
	invoices    []domain.Invoice
	purchases   []domain.PurchaseInvoice
	creditNotes []domain.CreditNote
	customers   []domain.Customer
	adjustments []domain.StockAdjustment

	taxRate decimal.Decimal
	now     func() time.Time
	newID   func(prefix string) string
}

type Option func(*Ledger)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(l *Ledger) { l.taxRate = rate }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithIDGenerator(newID func(prefix string) string) Option {
	return func(l *Ledger) { l.newID = newID }
}

// New builds a ledger from a stored snapshot. The snapshot is copied.
func New(snap domain.Snapshot, opts ...Option) *Ledger {
	l := &Ledger{
		taxRate: pricing.DefaultTaxRate,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   xid.New,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.restore(cloneSnapshot(snap))
	return l
}

func (l *Ledger) TaxRate() decimal.Decimal {
	return l.taxRate
}

// Snapshot returns a deep copy of the current state.
func (l *Ledger) Snapshot() domain.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneSnapshot(l.snapshotLocked())
}

func (l *Ledger) snapshotLocked() domain.Snapshot {
	return domain.Snapshot{
		Products:         l.catalog.List(),
		SoldItems:        l.soldItems,
		Invoices:         l.invoices,
		PurchaseInvoices: l.purchases,
		CreditNotes:      l.creditNotes,
		Customers:        l.customers,
		StockAdjustments: l.adjustments,
	}
}

func (l *Ledger) restore(snap domain.Snapshot) {
	l.catalog = catalog.New(snap.Products)
	l.soldItems = snap.SoldItems
	l.invoices = snap.Invoices
	l.purchases = snap.PurchaseInvoices
	l.creditNotes = snap.CreditNotes
	l.customers = snap.Customers
	l.adjustments = snap.StockAdjustments
}

func (l *Ledger) Invoices() []domain.Invoice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.Invoice, 0, len(l.invoices))
	for _, inv := range l.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out
}

func (l *Ledger) Invoice(id string) (domain.Invoice, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i := l.invoiceIndex(id)
	if i < 0 {
		return domain.Invoice{}, domain.ErrInvoiceNotFound
	}
	return cloneInvoice(l.invoices[i]), nil
}

func (l *Ledger) SoldItems() []domain.SoldItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.soldItems)
}

func (l *Ledger) CreditNotes() []domain.CreditNote {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.CreditNote, 0, len(l.creditNotes))
	for _, cn := range l.creditNotes {
		out = append(out, cloneCreditNote(cn))
	}
	return out
}

func (l *Ledger) Purchases() []domain.PurchaseInvoice {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.PurchaseInvoice, 0, len(l.purchases))
	for _, p := range l.purchases {
		out = append(out, clonePurchase(p))
	}
	return out
}

func (l *Ledger) Adjustments() []domain.StockAdjustment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.adjustments)
}

func (l *Ledger) invoiceIndex(id string) int {
	return slices.IndexFunc(l.invoices, func(inv domain.Invoice) bool { return inv.ID == id })
}

func cloneSnapshot(s domain.Snapshot) domain.Snapshot {
	out := domain.Snapshot{
		Products:         slices.Clone(s.Products),
		SoldItems:        slices.Clone(s.SoldItems),
		Customers:        slices.Clone(s.Customers),
		StockAdjustments: slices.Clone(s.StockAdjustments),
	}
	for _, inv := range s.Invoices {
		out.Invoices = append(out.Invoices, cloneInvoice(inv))
	}
	for _, p := range s.PurchaseInvoices {
		out.PurchaseInvoices = append(out.PurchaseInvoices, clonePurchase(p))
	}
	for _, cn := range s.CreditNotes {
		out.CreditNotes = append(out.CreditNotes, cloneCreditNote(cn))
	}
	return out
}

func cloneInvoice(src domain.Invoice) domain.Invoice {
	dst := src
	dst.Items = slices.Clone(src.Items)
	dst.Payments = slices.Clone(src.Payments)
	dst.CreditNoteIDs = slices.Clone(src.CreditNoteIDs)
	if src.CustomerID != nil {
		id := *src.CustomerID
		dst.CustomerID = &id
	}
	return dst
}

func clonePurchase(src domain.PurchaseInvoice) domain.PurchaseInvoice {
	dst := src
	dst.Items = slices.Clone(src.Items)
	dst.Payments = slices.Clone(src.Payments)
	return dst
}

func cloneCreditNote(src domain.CreditNote) domain.CreditNote {
	dst := src
	dst.Items = slices.Clone(src.Items)
	return dst
}
