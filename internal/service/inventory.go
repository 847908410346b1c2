package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/finance"
	"vintagepos/backend/internal/ledger"
	"vintagepos/backend/internal/store"
)

type PurchaseRequest struct {
	Supplier      string                       `json:"supplier"`
	NewItems      []domain.NewProductLine      `json:"new_items"`
	ExistingItems []domain.ExistingProductLine `json:"existing_items"`
	Total         decimal.Decimal              `json:"total"`
	Payments      []domain.Payment             `json:"payments"`
}

type PurchaseView struct {
	domain.PurchaseInvoice
	Status      domain.PaymentStatus `json:"status"`
	Outstanding decimal.Decimal      `json:"outstanding"`
}

func (s *Service) CommitPurchase(ctx context.Context, req PurchaseRequest) (PurchaseView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.ledger.CommitPurchase(ledger.Purchase{
		Supplier: req.Supplier,
		Lines:    domain.PurchaseLines(req.NewItems, req.ExistingItems),
		Total:    req.Total,
		Payments: req.Payments,
	})
	if err != nil {
		return PurchaseView{}, s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts, store.KeyPurchaseInvoices)
	s.audit(ctx, "purchase_create", inv.ID, zap.String("supplier", inv.Supplier), zap.Int("lines", len(inv.Items)))
	s.notify(ctx, "Purchase invoice %s from %s has been saved.", inv.ID, inv.Supplier)
	return newPurchaseView(inv), nil
}

func (s *Service) ListPurchases(_ context.Context) []PurchaseView {
	purchases := s.ledger.Purchases()
	out := make([]PurchaseView, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, newPurchaseView(p))
	}
	return out
}

// DeletePurchase reverses a purchase after confirmation.
func (s *Service) DeletePurchase(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirmer.Confirm(ctx, fmt.Sprintf("delete purchase invoice %s", id)) {
		return ErrNotConfirmed
	}
	inv, err := s.ledger.DeletePurchase(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts, store.KeyPurchaseInvoices)
	s.audit(ctx, "purchase_delete", id, zap.String("supplier", inv.Supplier))
	s.notify(ctx, "Purchase invoice %s deleted and stock reduced.", id)
	return nil
}

func newPurchaseView(p domain.PurchaseInvoice) PurchaseView {
	return PurchaseView{
		PurchaseInvoice: p,
		Status:          p.Status(),
		Outstanding:     domain.Outstanding(p.Payments, p.Total),
	}
}

func (s *Service) AdjustStock(ctx context.Context, productID, quantity int, reason string) (domain.StockAdjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	adj, err := s.ledger.AdjustStock(productID, quantity, reason)
	if err != nil {
		return domain.StockAdjustment{}, s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts, store.KeyStockAdjustments)
	s.audit(ctx, "stock_adjust", adj.ID, zap.Int("product_id", productID), zap.Int("quantity", quantity), zap.String("reason", adj.Reason))
	s.notify(ctx, "Stock for %s adjusted by %d.", adj.ProductDesign, quantity)
	return adj, nil
}

func (s *Service) ListAdjustments(_ context.Context) []domain.StockAdjustment {
	return s.ledger.Adjustments()
}

func (s *Service) ListCustomers(_ context.Context) []domain.Customer {
	return s.ledger.Customers()
}

func (s *Service) CreateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created, err := s.ledger.CreateCustomer(c)
	if err != nil {
		return domain.Customer{}, s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyCustomers)
	s.audit(ctx, "customer_create", fmt.Sprint(created.ID))
	return created, nil
}

func (s *Service) UpdateCustomer(ctx context.Context, c domain.Customer) (domain.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.ledger.UpdateCustomer(c)
	if err != nil {
		return domain.Customer{}, s.fail(ctx, err)
	}
	if selected := s.cart.Customer(); selected != nil && selected.ID == updated.ID {
		s.cart.SetCustomer(&updated)
	}
	s.persist(ctx, store.KeyCustomers)
	s.audit(ctx, "customer_update", fmt.Sprint(updated.ID))
	return updated, nil
}

func (s *Service) DeleteCustomer(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirmer.Confirm(ctx, fmt.Sprintf("delete customer %d", id)) {
		return ErrNotConfirmed
	}
	if _, err := s.ledger.DeleteCustomer(id); err != nil {
		return s.fail(ctx, err)
	}
	if selected := s.cart.Customer(); selected != nil && selected.ID == id {
		s.cart.SetCustomer(nil)
	}
	s.persist(ctx, store.KeyCustomers)
	s.audit(ctx, "customer_delete", fmt.Sprint(id))
	return nil
}

func (s *Service) FinanceSummary(_ context.Context) finance.Summary {
	snap := s.ledger.Snapshot()
	return finance.Summarize(snap.Invoices, snap.PurchaseInvoices, snap.CreditNotes, snap.StockAdjustments)
}

func (s *Service) InventoryReport(_ context.Context) finance.Inventory {
	snap := s.ledger.Snapshot()
	return finance.InventoryReport(snap.Products, snap.StockAdjustments, s.lowStock, 20)
}

func (s *Service) Theme(_ context.Context) domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Service) SetTheme(ctx context.Context, theme domain.Theme) error {
	if !theme.Valid() {
		return s.fail(ctx, fmt.Errorf("%w: unknown theme %q", domain.ErrInvalidInput, theme))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.theme = theme
	if err := s.records.SaveTheme(ctx, theme); err != nil {
		s.logger.Error("persist theme", zap.Error(err))
	}
	return nil
}
