package ledger

import (
	"fmt"
	"slices"
	"strings"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/xid"
)

// AdjustStock applies a signed, reason-coded correction to a product's
// count. No floor is enforced.
func (l *Ledger) AdjustStock(productID, quantity int, reason string) (domain.StockAdjustment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.StockAdjustment{}, domain.MissingField("reason")
	}
	if quantity == 0 {
		return domain.StockAdjustment{}, fmt.Errorf("%w: adjustment quantity must not be zero", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	product, ok := l.catalog.FindByID(productID)
	if !ok {
		return domain.StockAdjustment{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, productID)
	}
	adj := domain.StockAdjustment{
		ID:            l.newID(xid.PrefixAdjustment),
		ProductID:     productID,
		ProductDesign: product.Design,
		Quantity:      quantity,
		Reason:        reason,
		Date:          l.now(),
	}
	l.catalog.AdjustCount(productID, quantity)
	l.adjustments = slices.Insert(l.adjustments, 0, adj)
	return adj, nil
}
