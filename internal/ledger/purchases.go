package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/xid"
)

type Purchase struct {
	Supplier string
	Lines    []domain.PurchaseLine
	Total    decimal.Decimal
	Payments []domain.Payment
}

// CommitPurchase records a supplier invoice. New-product lines create
// catalog entries priced at the purchase price; existing-product lines
// add stock.
func (l *Ledger) CommitPurchase(p Purchase) (domain.PurchaseInvoice, error) {
	supplier := strings.TrimSpace(p.Supplier)
	if supplier == "" {
		return domain.PurchaseInvoice{}, domain.MissingField("supplier")
	}
	if len(p.Lines) == 0 {
		return domain.PurchaseInvoice{}, domain.MissingField("items")
	}
	if p.Total.IsNegative() {
		return domain.PurchaseInvoice{}, fmt.Errorf("%w: total must not be negative", domain.ErrInvalidInput)
	}
	payments, err := domain.NormalizePayments(p.Payments)
	if err != nil {
		return domain.PurchaseInvoice{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.validatePurchaseLinesLocked(p.Lines); err != nil {
		return domain.PurchaseInvoice{}, err
	}

	items := make([]domain.PurchaseItem, 0, len(p.Lines))
	for _, line := range p.Lines {
		switch line := line.(type) {
		case domain.NewProductLine:
			created := l.catalog.Create(normalizeProduct(domain.Product{
				Design:         line.Design,
				WholesaleID:    line.WholesaleID,
				RetailID:       line.RetailID,
				RetailPrice:    line.RetailPrice,
				WholesalePrice: line.PurchasePrice,
				Category:       line.Category,
				ImageURL:       line.ImageURL,
				Count:          line.Quantity,
			}))
			items = append(items, domain.PurchaseItem{
				ProductID:     created.ID,
				Design:        created.Design,
				Quantity:      line.Quantity,
				PurchasePrice: line.PurchasePrice,
			})
		case domain.ExistingProductLine:
			l.catalog.AdjustCount(line.ProductID, line.Quantity)
			product, _ := l.catalog.FindByID(line.ProductID)
			items = append(items, domain.PurchaseItem{
				ProductID:     line.ProductID,
				Design:        product.Design,
				Quantity:      line.Quantity,
				PurchasePrice: line.PurchasePrice,
			})
		}
	}

	inv := domain.PurchaseInvoice{
		ID:       l.newID(xid.PrefixPurchase),
		Supplier: supplier,
		Items:    items,
		Total:    p.Total,
		Payments: payments,
		Date:     l.now(),
	}
	l.purchases = slices.Insert(l.purchases, 0, inv)
	return clonePurchase(inv), nil
}

func (l *Ledger) validatePurchaseLinesLocked(lines []domain.PurchaseLine) error {
	codes := make(map[string]struct{})
	for _, line := range lines {
		if line == nil {
			return fmt.Errorf("%w: empty purchase line", domain.ErrInvalidInput)
		}
		if line.Qty() <= 0 {
			return fmt.Errorf("%w: purchase quantity must be positive", domain.ErrInvalidInput)
		}
		if line.UnitPrice().IsNegative() {
			return fmt.Errorf("%w: purchase price must not be negative", domain.ErrInvalidInput)
		}
		switch line := line.(type) {
		case domain.NewProductLine:
			design, code := strings.TrimSpace(line.Design), strings.TrimSpace(line.RetailID)
			if design == "" {
				return domain.MissingField("design")
			}
			if code == "" {
				return domain.MissingField("retail_id")
			}
			if line.RetailPrice.IsNegative() {
				return fmt.Errorf("%w: retail price must not be negative", domain.ErrInvalidInput)
			}
			key := strings.ToLower(code)
			if _, dup := codes[key]; dup || l.catalog.RetailCodeTaken(code, 0) {
				return fmt.Errorf("%w: retail code %q already in use", domain.ErrInvalidInput, code)
			}
			codes[key] = struct{}{}
		case domain.ExistingProductLine:
			if _, ok := l.catalog.FindByID(line.ProductID); !ok {
				return fmt.Errorf("%w: %d", domain.ErrProductNotFound, line.ProductID)
			}
		default:
			return fmt.Errorf("%w: unknown purchase line %T", domain.ErrInvalidInput, line)
		}
	}
	return nil
}

// DeletePurchase takes the purchased units back out of stock, never below
// zero, and removes the purchase invoice.
func (l *Ledger) DeletePurchase(id string) (domain.PurchaseInvoice, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.purchases, func(p domain.PurchaseInvoice) bool { return p.ID == id })
	if i < 0 {
		return domain.PurchaseInvoice{}, fmt.Errorf("%w: %s", domain.ErrPurchaseNotFound, id)
	}
	inv := l.purchases[i]
	for _, item := range inv.Items {
		l.catalog.AdjustCountClamped(item.ProductID, -item.Quantity)
	}
	l.purchases = slices.Delete(l.purchases, i, i+1)
	return clonePurchase(inv), nil
}
