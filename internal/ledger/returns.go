package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/pricing"
	"vintagepos/backend/internal/xid"
)

// ProcessReturn issues a credit note for units coming back from an
// invoice, restocks them and records the returned quantities on the
// invoice lines. Payments on the invoice are left untouched.
func (l *Ledger) ProcessReturn(invoiceID string, lines []domain.ReturnLine, reason string) (domain.CreditNote, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.CreditNote{}, domain.MissingField("reason")
	}
	requested, order, err := mergeReturnLines(lines)
	if err != nil {
		return domain.CreditNote{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.invoiceIndex(invoiceID)
	if i < 0 {
		return domain.CreditNote{}, fmt.Errorf("%w: %s", domain.ErrInvoiceNotFound, invoiceID)
	}
	inv := l.invoices[i]

	returned := make([]domain.ReturnedItem, 0, len(order))
	total := decimal.Zero
	for _, productID := range order {
		qty := requested[productID]
		line, ok := inv.Line(productID)
		if !ok {
			return domain.CreditNote{}, fmt.Errorf("%w: product %d is not on invoice %s", domain.ErrProductNotFound, productID, invoiceID)
		}
		if qty > line.Returnable() {
			return domain.CreditNote{}, fmt.Errorf("%w: %q has %d returnable, requested %d", domain.ErrOverReturn, line.Design, line.Returnable(), qty)
		}
		refund := pricing.LineRefund(inv, line, qty)
		total = total.Add(refund)
		returned = append(returned, domain.ReturnedItem{
			ProductID:    productID,
			Design:       line.Design,
			Quantity:     qty,
			RefundAmount: refund,
		})
	}

	note := domain.CreditNote{
		ID:                l.newID(xid.PrefixCreditNote),
		OriginalInvoiceID: invoiceID,
		Items:             returned,
		TotalRefund:       total,
		Date:              l.now(),
		Reason:            reason,
	}

	for _, item := range returned {
		l.catalog.AdjustCount(item.ProductID, item.Quantity)
	}
	inv = cloneInvoice(inv)
	for j := range inv.Items {
		inv.Items[j].ReturnedQuantity += requested[inv.Items[j].ID]
	}
	inv.CreditNoteIDs = append(inv.CreditNoteIDs, note.ID)
	l.invoices[i] = inv
	l.creditNotes = slices.Insert(l.creditNotes, 0, note)
	return cloneCreditNote(note), nil
}

// mergeReturnLines sums quantities per product, keeping first-seen order.
func mergeReturnLines(lines []domain.ReturnLine) (map[int]int, []int, error) {
	if len(lines) == 0 {
		return nil, nil, domain.MissingField("items")
	}
	requested := make(map[int]int, len(lines))
	order := make([]int, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, nil, fmt.Errorf("%w: return quantity must be positive", domain.ErrInvalidInput)
		}
		if _, seen := requested[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
	}
	return requested, order, nil
}
