package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vintagepos/backend/internal/catalog"
	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/store"
	"vintagepos/backend/internal/store/memory"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recordingNotifier) last() Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}
	}
	return r.notes[len(r.notes)-1]
}

type brokenKV struct {
	*memory.Store
}

func (brokenKV) Set(context.Context, string, []byte) error {
	return errors.New("storage quota exceeded")
}

func productA() domain.Product {
	return domain.Product{
		ID: 1, Design: "Product A", RetailID: "R-A", WholesaleID: "W-A",
		RetailPrice: decimal.NewFromInt(10), WholesalePrice: decimal.NewFromInt(4), Count: 5,
	}
}

func newTestService(t *testing.T, kv store.KV, confirm bool) (*Service, *recordingNotifier) {
	t.Helper()
	notifier := &recordingNotifier{}
	svc := New(context.Background(), store.NewRecords(kv, zap.NewNop()), Options{
		Seed:      []domain.Product{productA()},
		Confirmer: ConfirmFunc(func(context.Context, string) bool { return confirm }),
		Notifier:  notifier,
		Logger:    zap.NewNop(),
	})
	return svc, notifier
}

func cash(amount int64) []domain.Payment {
	return []domain.Payment{{Method: domain.PaymentCash, Amount: decimal.NewFromInt(amount)}}
}

func mustProduct(t *testing.T, svc *Service, id int) domain.Product {
	t.Helper()
	p, err := svc.GetProduct(context.Background(), id)
	if err != nil {
		t.Fatalf("get product %d: %v", id, err)
	}
	return p
}

func TestCheckoutSellsAndClearsCart(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t, memory.New(), true)

	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddToCartByRetailCode(ctx, "r-a"); err != nil {
		t.Fatalf("add by code: %v", err)
	}

	view, err := svc.Checkout(ctx, cash(20))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !view.Total.Equal(decimal.NewFromInt(22)) {
		t.Fatalf("expected total 22, got %s", view.Total)
	}
	if !view.Profit.Equal(decimal.NewFromInt(14)) {
		t.Fatalf("expected profit 14, got %s", view.Profit)
	}
	if view.Status != domain.StatusPartiallyPaid {
		t.Fatalf("expected partially paid, got %s", view.Status)
	}
	if !view.Outstanding.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("expected outstanding 2, got %s", view.Outstanding)
	}
	if got := mustProduct(t, svc, 1).Count; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
	if cart := svc.Cart(ctx); len(cart.Items) != 0 || !cart.Totals.Total.IsZero() {
		t.Fatalf("expected empty cart after checkout, got %+v", cart)
	}
	if n := notifier.last(); n.Level != NotifySuccess {
		t.Fatalf("expected success notification, got %+v", n)
	}
}

func TestZeroTaxRateIsHonoured(t *testing.T) {
	ctx := context.Background()
	zero := decimal.Zero
	svc := New(ctx, store.NewRecords(memory.New(), zap.NewNop()), Options{
		TaxRate: &zero,
		Seed:    []domain.Product{productA()},
	})

	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.SetDiscount(ctx, decimal.NewFromInt(20)); err != nil {
		t.Fatalf("discount: %v", err)
	}
	totals := svc.Cart(ctx).Totals
	if !totals.Tax.IsZero() {
		t.Fatalf("expected no tax at a zero rate, got %s", totals.Tax)
	}
	if !totals.Total.Equal(totals.Subtotal.Sub(totals.DiscountAmount)) || !totals.Total.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("expected total 8 (subtotal less discount), got %s", totals.Total)
	}

	inv, err := svc.Checkout(ctx, cash(8))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !inv.Tax.IsZero() || inv.Status != domain.StatusPaid {
		t.Fatalf("expected untaxed paid invoice, got tax=%s status=%s", inv.Tax, inv.Status)
	}
}

func TestNilTaxRateUsesDefault(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.New(), true)

	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if tax := svc.Cart(ctx).Totals.Tax; !tax.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected default 10%% tax of 1, got %s", tax)
	}
}

func TestCheckoutEmptyCartIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newTestService(t, memory.New(), true)

	_, err := svc.Checkout(ctx, cash(10))
	if !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if len(svc.ListInvoices(ctx)) != 0 {
		t.Fatalf("expected no invoices")
	}
	if got := mustProduct(t, svc, 1).Count; got != 5 {
		t.Fatalf("expected stock untouched, got %d", got)
	}
	if n := notifier.last(); n.Level != NotifyError {
		t.Fatalf("expected error notification, got %+v", n)
	}
}

func TestAddToCartStopsAtAvailableStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.New(), true)

	for i := 0; i < 5; i++ {
		if _, err := svc.AddToCart(ctx, 1); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	view, err := svc.AddToCart(ctx, 1)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity to stay at 5, got %d", view.Items[0].Quantity)
	}

	view, err = svc.SetCartQuantity(ctx, 1, 8)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected clamp error, got %v", err)
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("expected clamp to 5, got %d", view.Items[0].Quantity)
	}

	view, err = svc.SetCartQuantity(ctx, 1, 0)
	if err != nil || len(view.Items) != 0 {
		t.Fatalf("expected line removed, got %+v (%v)", view, err)
	}
}

func TestStatePersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	svc, _ := newTestService(t, kv, true)

	customer, err := svc.CreateCustomer(ctx, domain.Customer{Name: "Ana"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if _, err := svc.SelectCustomer(ctx, &customer.ID); err != nil {
		t.Fatalf("select customer: %v", err)
	}
	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	inv, err := svc.Checkout(ctx, cash(11))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := svc.ProcessReturn(ctx, inv.ID, []domain.ReturnLine{{ProductID: 1, Quantity: 1}}, "wrong size"); err != nil {
		t.Fatalf("return: %v", err)
	}
	if err := svc.SetTheme(ctx, domain.ThemeDark); err != nil {
		t.Fatalf("set theme: %v", err)
	}

	reloaded, _ := newTestService(t, kv, true)

	got, err := reloaded.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("reloaded invoice: %v", err)
	}
	if got.CustomerName != "Ana" || got.Items[0].ReturnedQuantity != 1 || len(got.CreditNoteIDs) != 1 {
		t.Fatalf("unexpected reloaded invoice %+v", got.Invoice)
	}
	if !got.Date.Equal(inv.Date) {
		t.Fatalf("expected date %v, got %v", inv.Date, got.Date)
	}
	if count := mustProduct(t, reloaded, 1).Count; count != 5 {
		t.Fatalf("expected stock 5 after return, got %d", count)
	}
	if len(reloaded.ListCreditNotes(ctx)) != 1 || len(reloaded.SoldItems(ctx)) != 1 {
		t.Fatalf("expected credit note and sold item to reload")
	}
	if reloaded.Theme(ctx) != domain.ThemeDark {
		t.Fatalf("expected dark theme, got %s", reloaded.Theme(ctx))
	}
}

func TestDestructiveActionsNeedConfirmation(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	svc, _ := newTestService(t, kv, true)

	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	inv, err := svc.Checkout(ctx, nil)
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	customer, err := svc.CreateCustomer(ctx, domain.Customer{Name: "Ben"})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}

	declining, _ := newTestService(t, kv, false)
	if err := declining.DeleteInvoice(ctx, inv.ID); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed for invoice, got %v", err)
	}
	if err := declining.DeleteProduct(ctx, 1); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed for product, got %v", err)
	}
	if err := declining.DeleteCustomer(ctx, customer.ID); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed for customer, got %v", err)
	}
	if len(declining.ListInvoices(ctx)) != 1 || len(declining.ListCustomers(ctx)) != 1 {
		t.Fatalf("declined deletes must not change state")
	}

	if err := svc.DeleteInvoice(ctx, inv.ID); err != nil {
		t.Fatalf("delete invoice: %v", err)
	}
	if got := mustProduct(t, svc, 1).Count; got != 5 {
		t.Fatalf("expected stock restored to 5, got %d", got)
	}
}

func TestDeleteProductDropsItFromCart(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.New(), true)

	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.DeleteProduct(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cart := svc.Cart(ctx); len(cart.Items) != 0 {
		t.Fatalf("expected product removed from cart")
	}
	if _, err := svc.Checkout(ctx, nil); !errors.Is(err, domain.ErrEmptyCart) {
		t.Fatalf("expected empty cart, got %v", err)
	}
}

func TestPersistenceFailureDoesNotBlockSale(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, brokenKV{Store: memory.New()}, true)

	if _, err := svc.AddToCart(ctx, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Checkout(ctx, cash(11)); err != nil {
		t.Fatalf("checkout should succeed despite storage errors: %v", err)
	}
	if got := mustProduct(t, svc, 1).Count; got != 4 {
		t.Fatalf("expected stock 4, got %d", got)
	}
}

func TestPurchaseThenDeleteClampsStock(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, memory.New(), true)

	pur, err := svc.CommitPurchase(ctx, PurchaseRequest{
		Supplier: "Acme",
		NewItems: []domain.NewProductLine{{
			Design: "Linen Shirt", RetailID: "R-LS", RetailPrice: decimal.NewFromInt(25),
			Quantity: 10, PurchasePrice: decimal.NewFromInt(5),
		}},
		ExistingItems: []domain.ExistingProductLine{{ProductID: 1, Quantity: 2, PurchasePrice: decimal.NewFromInt(4)}},
		Total:         decimal.NewFromInt(58),
	})
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if pur.Status != domain.StatusUnpaid || !pur.Outstanding.Equal(decimal.NewFromInt(58)) {
		t.Fatalf("unexpected purchase view %+v", pur)
	}
	newID := pur.Items[0].ProductID

	for i := 0; i < 4; i++ {
		if _, err := svc.AddToCart(ctx, newID); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if _, err := svc.Checkout(ctx, cash(110)); err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if err := svc.DeletePurchase(ctx, pur.ID); err != nil {
		t.Fatalf("delete purchase: %v", err)
	}
	if got := mustProduct(t, svc, newID).Count; got != 0 {
		t.Fatalf("expected clamped stock 0, got %d", got)
	}
	if got := mustProduct(t, svc, 1).Count; got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}
	if summary := svc.FinanceSummary(ctx); !summary.Payables.IsZero() {
		t.Fatalf("expected no payables after delete, got %s", summary.Payables)
	}
}

func TestReportsUseLedgerState(t *testing.T) {
	ctx := context.Background()
	svc := New(ctx, store.NewRecords(memory.New(), nil), Options{Seed: catalog.DefaultProducts()})

	if _, err := svc.AdjustStock(ctx, 7, -20, "water damage"); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if _, err := svc.AdjustStock(ctx, 7, 1, ""); !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("expected missing reason, got %v", err)
	}

	report := svc.InventoryReport(ctx)
	if len(report.LowStock) != 1 || report.LowStock[0].ID != 7 || report.LowStock[0].Count != 5 {
		t.Fatalf("unexpected low stock %+v", report.LowStock)
	}
	if len(report.RecentAdjustments) != 1 {
		t.Fatalf("expected one adjustment, got %d", len(report.RecentAdjustments))
	}

	summary := svc.FinanceSummary(ctx)
	if !summary.AdjustmentLoss.IsZero() {
		t.Fatalf("adjustment loss needs a sold line to price it, got %s", summary.AdjustmentLoss)
	}
	if err := svc.SetTheme(ctx, "neon"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid theme, got %v", err)
	}
}
