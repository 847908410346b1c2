package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// KV is the persistence capability: named blobs read and written whole.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Record set names. Each is stored as one JSON blob.
const (
	KeyProducts         = "products"
	KeySoldItems        = "soldItems"
	KeyInvoices         = "invoices"
	KeyPurchaseInvoices = "purchaseInvoices"
	KeyCreditNotes      = "creditNotes"
	KeyCustomers        = "customers"
	KeyStockAdjustments = "stockAdjustments"
	KeyTheme            = "theme"
)

// LedgerKeys lists every record set that makes up a domain.Snapshot.
var LedgerKeys = []string{
	KeyProducts,
	KeySoldItems,
	KeyInvoices,
	KeyPurchaseInvoices,
	KeyCreditNotes,
	KeyCustomers,
	KeyStockAdjustments,
}
