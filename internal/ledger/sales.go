package ledger

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/pricing"
	"vintagepos/backend/internal/xid"
)

type Sale struct {
	Items           []domain.CartItem
	Payments        []domain.Payment
	DiscountPercent decimal.Decimal
	CustomerID      *int
}

// CommitSale turns the cart lines into an invoice. Stock was checked when
// the lines entered the cart, so the commit only requires every product to
// still exist.
func (l *Ledger) CommitSale(sale Sale) (domain.Invoice, error) {
	if len(sale.Items) == 0 {
		return domain.Invoice{}, domain.ErrEmptyCart
	}
	payments, err := domain.NormalizePayments(sale.Payments)
	if err != nil {
		return domain.Invoice{}, err
	}
	seen := make(map[int]struct{}, len(sale.Items))
	for _, item := range sale.Items {
		if item.Quantity <= 0 {
			return domain.Invoice{}, fmt.Errorf("%w: quantity for %q must be positive", domain.ErrInvalidInput, item.Design)
		}
		// Returns are tracked per product line, so each product appears once.
		if _, dup := seen[item.ID]; dup {
			return domain.Invoice{}, fmt.Errorf("%w: product %d appears on more than one line", domain.ErrInvalidInput, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, item := range sale.Items {
		if _, ok := l.catalog.FindByID(item.ID); !ok {
			return domain.Invoice{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, item.ID)
		}
	}
	var customer *domain.Customer
	if sale.CustomerID != nil {
		c, ok := l.findCustomerLocked(*sale.CustomerID)
		if !ok {
			return domain.Invoice{}, fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, *sale.CustomerID)
		}
		customer = &c
	}

	now := l.now()
	items := slices.Clone(sale.Items)
	for i := range items {
		items[i].ReturnedQuantity = 0
	}
	totals := pricing.Compute(items, sale.DiscountPercent, l.taxRate)
	wholesaleTotal := pricing.WholesaleTotal(items)

	inv := domain.Invoice{
		ID:             l.newID(xid.PrefixInvoice),
		Items:          items,
		Subtotal:       totals.Subtotal,
		Discount:       totals.DiscountPercent,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		Total:          totals.Total,
		WholesaleTotal: wholesaleTotal,
		Profit:         totals.Total.Sub(wholesaleTotal),
		Payments:       payments,
		Date:           now,
	}
	if customer != nil {
		id := customer.ID
		inv.CustomerID = &id
		inv.CustomerName = customer.Name
	}

	for _, item := range items {
		l.catalog.AdjustCount(item.ID, -item.Quantity)
		l.soldItems = append(l.soldItems, domain.SoldItem{
			ID:        l.newID(xid.PrefixSoldItem),
			ProductID: item.ID,
			Design:    item.Design,
			RetailID:  item.RetailID,
			Quantity:  item.Quantity,
			SoldPrice: item.RetailPrice,
			Date:      now,
			InvoiceID: inv.ID,
		})
	}
	l.invoices = slices.Insert(l.invoices, 0, inv)
	return cloneInvoice(inv), nil
}

// DeleteInvoice reverses a sale: units not already brought back by a
// return go back to stock, and the invoice and its sold items are removed.
// Credit notes stay as issued.
func (l *Ledger) DeleteInvoice(id string) (domain.Invoice, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.invoiceIndex(id)
	if i < 0 {
		return domain.Invoice{}, fmt.Errorf("%w: %s", domain.ErrInvoiceNotFound, id)
	}
	inv := l.invoices[i]
	for _, item := range inv.Items {
		if restock := item.Returnable(); restock > 0 {
			l.catalog.AdjustCount(item.ID, restock)
		}
	}
	l.soldItems = slices.DeleteFunc(l.soldItems, func(s domain.SoldItem) bool { return s.InvoiceID == id })
	l.invoices = slices.Delete(l.invoices, i, i+1)
	return cloneInvoice(inv), nil
}
