// Package pricing holds the cart pricing formula and the refund proration
// used by returns. Both are pure functions over decimal amounts.
package pricing

import (
	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
)

// DefaultTaxRate is the sales tax applied after discount.
var DefaultTaxRate = decimal.RequireFromString("0.10")

var hundred = decimal.NewFromInt(100)

// Compute derives subtotal, discount, tax and total for the given lines.
func Compute(items []domain.CartItem, discountPercent, taxRate decimal.Decimal) domain.Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	discountAmount := subtotal.Mul(discountPercent).Div(hundred)
	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(taxRate)
	return domain.Totals{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		Taxable:         taxable,
		Tax:             tax,
		Total:           taxable.Add(tax),
	}
}

// WholesaleTotal is the cost basis of the lines.
func WholesaleTotal(items []domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.WholesalePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// UnitRefund is the amount refunded per returned unit of line, with the
// invoice discount and tax allocated in proportion to the line's share of
// the subtotal.
func UnitRefund(inv domain.Invoice, line domain.CartItem) decimal.Decimal {
	if inv.Subtotal.IsZero() || line.Quantity <= 0 {
		return line.RetailPrice
	}
	lineTotal := line.LineTotal()
	proportion := lineTotal.Div(inv.Subtotal)
	itemDiscount := inv.DiscountAmount.Mul(proportion)

	itemTax := decimal.Zero
	if taxable := inv.Subtotal.Sub(inv.DiscountAmount); !taxable.IsZero() {
		itemTax = lineTotal.Sub(itemDiscount).Mul(inv.Tax.Div(taxable))
	}
	return lineTotal.Sub(itemDiscount).Add(itemTax).Div(decimal.NewFromInt(int64(line.Quantity)))
}

// LineRefund is UnitRefund times the returned quantity.
func LineRefund(inv domain.Invoice, line domain.CartItem, returned int) decimal.Decimal {
	return UnitRefund(inv, line).Mul(decimal.NewFromInt(int64(returned)))
}
