package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vintagepos/backend/internal/domain"
)

// Records maps a domain.Snapshot onto named blobs in a KV.
type Records struct {
	kv     KV
	logger *zap.Logger
}

func NewRecords(kv KV, logger *zap.Logger) *Records {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Records{kv: kv, logger: logger.Named("records")}
}

// Load reads every record set concurrently. A missing key yields the
// default (seed products or an empty set). An unreadable key is logged
// and also falls back to the default, so Load never fails.
func (r *Records) Load(ctx context.Context, seed []domain.Product) domain.Snapshot {
	var (
		snap domain.Snapshot
		mu   sync.Mutex
	)
	targets := map[string]any{
		KeyProducts:         &snap.Products,
		KeySoldItems:        &snap.SoldItems,
		KeyInvoices:         &snap.Invoices,
		KeyPurchaseInvoices: &snap.PurchaseInvoices,
		KeyCreditNotes:      &snap.CreditNotes,
		KeyCustomers:        &snap.Customers,
		KeyStockAdjustments: &snap.StockAdjustments,
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, key := range LedgerKeys {
		key := key
		target := targets[key]
		g.Go(func() error {
			raw, err := r.kv.Get(gctx, key)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					r.logger.Warn("read record set", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			if err := json.Unmarshal(raw, target); err != nil {
				r.logger.Warn("decode record set", zap.String("key", key), zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	if snap.Products == nil {
		snap.Products = seed
	}
	return snap
}

// Save writes the named record sets of snap. All keys are attempted; the
// returned error joins every failure.
func (r *Records) Save(ctx context.Context, snap domain.Snapshot, keys ...string) error {
	var errs []error
	for _, key := range keys {
		value, err := encodeRecordSet(snap, key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.kv.Set(ctx, key, value); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

func (r *Records) LoadTheme(ctx context.Context) domain.Theme {
	raw, err := r.kv.Get(ctx, KeyTheme)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("read theme", zap.Error(err))
		}
		return domain.ThemeSystem
	}
	var theme domain.Theme
	if err := json.Unmarshal(raw, &theme); err != nil || !theme.Valid() {
		r.logger.Warn("decode theme", zap.ByteString("raw", raw), zap.Error(err))
		return domain.ThemeSystem
	}
	return theme
}

func (r *Records) SaveTheme(ctx context.Context, theme domain.Theme) error {
	raw, err := json.Marshal(theme)
	if err != nil {
		return err
	}
	return r.kv.Set(ctx, KeyTheme, raw)
}

func encodeRecordSet(snap domain.Snapshot, key string) ([]byte, error) {
	var v any
	switch key {
	case KeyProducts:
		v = nonNil(snap.Products)
	case KeySoldItems:
		v = nonNil(snap.SoldItems)
	case KeyInvoices:
		v = nonNil(snap.Invoices)
	case KeyPurchaseInvoices:
		v = nonNil(snap.PurchaseInvoices)
	case KeyCreditNotes:
		v = nonNil(snap.CreditNotes)
	case KeyCustomers:
		v = nonNil(snap.Customers)
	case KeyStockAdjustments:
		v = nonNil(snap.StockAdjustments)
	default:
		return nil, fmt.Errorf("unknown record set %q", key)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return raw, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
