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

type CartView struct {
	Items    []domain.CartItem `json:"items"`
	Totals   domain.Totals     `json:"totals"`
	Customer *domain.Customer  `json:"customer,omitempty"`
}

type InvoiceView struct {
	domain.Invoice
	Status      domain.PaymentStatus `json:"status"`
	Paid        decimal.Decimal      `json:"paid"`
	Outstanding decimal.Decimal      `json:"outstanding"`
}

func newInvoiceView(inv domain.Invoice) InvoiceView {
	return InvoiceView{
		Invoice:     inv,
		Status:      inv.Status(),
		Paid:        domain.TotalPaid(inv.Payments),
		Outstanding: domain.Outstanding(inv.Payments, inv.Total),
	}
}

func (s *Service) Cart(_ context.Context) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartViewLocked()
}

func (s *Service) cartViewLocked() CartView {
	return CartView{
		Items:    s.cart.Items(),
		Totals:   s.cart.Totals(),
		Customer: s.cart.Customer(),
	}
}

// AddToCart adds one unit of the product, checked against live stock.
func (s *Service) AddToCart(ctx context.Context, productID int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.ledger.Product(productID)
	if err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	if err := s.cart.Add(product); err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	return s.cartViewLocked(), nil
}

// AddToCartByRetailCode resolves a scanned retail code and adds one unit.
func (s *Service) AddToCartByRetailCode(ctx context.Context, code string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.ledger.ProductByRetailCode(code)
	if err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	if err := s.cart.Add(product); err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	return s.cartViewLocked(), nil
}

// SetCartQuantity sets a line quantity. When stock is short the line is
// clamped and the StockError is returned alongside the updated cart.
func (s *Service) SetCartQuantity(ctx context.Context, productID, quantity int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.cart.Remove(productID)
		return s.cartViewLocked(), nil
	}
	product, err := s.ledger.Product(productID)
	if err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	if err := s.cart.SetQuantity(product, quantity); err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	return s.cartViewLocked(), nil
}

func (s *Service) RemoveFromCart(_ context.Context, productID int) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Remove(productID)
	return s.cartViewLocked()
}

func (s *Service) SetDiscount(ctx context.Context, percent decimal.Decimal) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cart.SetDiscount(percent); err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	return s.cartViewLocked(), nil
}

// SelectCustomer attaches a customer to the sale; nil clears the choice.
func (s *Service) SelectCustomer(ctx context.Context, customerID *int) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if customerID == nil {
		s.cart.SetCustomer(nil)
		return s.cartViewLocked(), nil
	}
	c, err := s.ledger.Customer(*customerID)
	if err != nil {
		return s.cartViewLocked(), s.fail(ctx, err)
	}
	s.cart.SetCustomer(&c)
	return s.cartViewLocked(), nil
}

// ClearCart abandons the sale in progress.
func (s *Service) ClearCart(_ context.Context) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Clear()
	return s.cartViewLocked()
}

// Checkout commits the cart as an invoice and clears the cart.
func (s *Service) Checkout(ctx context.Context, payments []domain.Payment) (InvoiceView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale := ledger.Sale{
		Items:           s.cart.Items(),
		Payments:        payments,
		DiscountPercent: s.cart.Discount(),
	}
	if c := s.cart.Customer(); c != nil {
		sale.CustomerID = &c.ID
	}
	inv, err := s.ledger.CommitSale(sale)
	if err != nil {
		return InvoiceView{}, s.fail(ctx, err)
	}
	s.cart.Clear()
	s.persist(ctx, store.KeyProducts, store.KeySoldItems, store.KeyInvoices)

	view := newInvoiceView(inv)
	s.audit(ctx, "checkout", inv.ID, zap.Stringer("total", inv.Total), zap.String("status", string(view.Status)))
	s.notify(ctx, "Transaction completed. Invoice %s created as %s.", inv.ID, view.Status)
	return view, nil
}

func (s *Service) ListInvoices(_ context.Context) []InvoiceView {
	invoices := s.ledger.Invoices()
	out := make([]InvoiceView, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, newInvoiceView(inv))
	}
	return out
}

func (s *Service) GetInvoice(_ context.Context, id string) (InvoiceView, error) {
	inv, err := s.ledger.Invoice(id)
	if err != nil {
		return InvoiceView{}, err
	}
	return newInvoiceView(inv), nil
}

// DeleteInvoice reverses a sale after confirmation.
func (s *Service) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.confirmer.Confirm(ctx, fmt.Sprintf("delete invoice %s", id)) {
		return ErrNotConfirmed
	}
	inv, err := s.ledger.DeleteInvoice(id)
	if err != nil {
		return s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts, store.KeySoldItems, store.KeyInvoices)
	s.audit(ctx, "invoice_delete", id, zap.Stringer("total", inv.Total), zap.Int("credit_notes", len(inv.CreditNoteIDs)))
	s.notify(ctx, "Invoice %s deleted and stock restored.", id)
	return nil
}

func (s *Service) ProcessReturn(ctx context.Context, invoiceID string, lines []domain.ReturnLine, reason string) (domain.CreditNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, err := s.ledger.ProcessReturn(invoiceID, lines, reason)
	if err != nil {
		return domain.CreditNote{}, s.fail(ctx, err)
	}
	s.persist(ctx, store.KeyProducts, store.KeyInvoices, store.KeyCreditNotes)
	s.audit(ctx, "return", note.ID, zap.String("invoice_id", invoiceID), zap.Stringer("refund", note.TotalRefund))
	s.notify(ctx, "Return processed. Credit note %s created for %s.", note.ID, note.TotalRefund.StringFixed(2))
	return note, nil
}

func (s *Service) ListCreditNotes(_ context.Context) []domain.CreditNote {
	return s.ledger.CreditNotes()
}

func (s *Service) SoldItems(_ context.Context) []finance.SoldItemRow {
	return finance.SoldItemReport(s.ledger.SoldItems(), s.ledger.Invoices())
}
