package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagepos/backend/internal/domain"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func line(id int, retail, wholesale string, qty int) domain.CartItem {
	return domain.CartItem{
		Product:  domain.Product{ID: id, Design: "item", RetailPrice: d(retail), WholesalePrice: d(wholesale)},
		Quantity: qty,
	}
}

func invoiceFor(items []domain.CartItem, discount string) domain.Invoice {
	totals := Compute(items, d(discount), DefaultTaxRate)
	return domain.Invoice{
		Items:          items,
		Subtotal:       totals.Subtotal,
		Discount:       totals.DiscountPercent,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		Total:          totals.Total,
	}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func TestComputeNoDiscount(t *testing.T) {
	totals := Compute([]domain.CartItem{line(1, "10", "4", 2)}, decimal.Zero, DefaultTaxRate)

	assertDecimal(t, "20", totals.Subtotal)
	assertDecimal(t, "0", totals.DiscountAmount)
	assertDecimal(t, "2", totals.Tax)
	assertDecimal(t, "22", totals.Total)
}

func TestComputeWithDiscount(t *testing.T) {
	items := []domain.CartItem{line(1, "15.99", "7.5", 3), line(2, "49.99", "22", 1)}
	totals := Compute(items, d("12.5"), DefaultTaxRate)

	assertDecimal(t, "97.96", totals.Subtotal)
	assertDecimal(t, "12.245", totals.DiscountAmount)
	assertDecimal(t, "85.715", totals.Taxable)
	assertDecimal(t, "8.5715", totals.Tax)
	assert.True(t, totals.Total.Equal(totals.Subtotal.Sub(totals.DiscountAmount).Add(totals.Tax)))
}

func TestComputeEmpty(t *testing.T) {
	totals := Compute(nil, d("50"), DefaultTaxRate)
	assert.True(t, totals.Total.IsZero())
}

func TestWholesaleTotal(t *testing.T) {
	assertDecimal(t, "30.5", WholesaleTotal([]domain.CartItem{line(1, "10", "4", 2), line(2, "30", "22.5", 1)}))
}

func TestRefundSingleLineNoDiscountIsRetailPlusTax(t *testing.T) {
	items := []domain.CartItem{line(1, "10", "4", 2)}
	inv := invoiceFor(items, "0")

	assertDecimal(t, "11", LineRefund(inv, items[0], 1))
	assertDecimal(t, "22", LineRefund(inv, items[0], 2))
}

func TestRefundIsLinearInReturnedQuantity(t *testing.T) {
	items := []domain.CartItem{line(1, "15.99", "7.5", 6), line(2, "49.99", "22", 2)}
	inv := invoiceFor(items, "15")

	one := LineRefund(inv, items[0], 1)
	for k := 2; k <= 6; k++ {
		got := LineRefund(inv, items[0], k)
		assert.Truef(t, one.Mul(decimal.NewFromInt(int64(k))).Equal(got), "k=%d: %s", k, got)
	}
}

func TestRefundsOfAllLinesSumToInvoiceTotal(t *testing.T) {
	items := []domain.CartItem{line(1, "15.99", "7.5", 3), line(2, "49.99", "22", 1), line(3, "8.99", "3.5", 4)}
	inv := invoiceFor(items, "20")

	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(LineRefund(inv, item, item.Quantity))
	}
	assert.True(t, sum.Sub(inv.Total).Abs().LessThan(d("0.000001")), "sum %s total %s", sum, inv.Total)
}

func TestRefundZeroSubtotalUsesRetailPrice(t *testing.T) {
	items := []domain.CartItem{line(1, "0", "0", 2)}
	inv := invoiceFor(items, "0")
	require.True(t, inv.Subtotal.IsZero())

	assertDecimal(t, "0", LineRefund(inv, items[0], 1))

	inv.Subtotal = decimal.Zero
	priced := line(1, "7", "3", 2)
	assertDecimal(t, "14", LineRefund(inv, priced, 2))
}

func TestRefundFullDiscountHasNoTax(t *testing.T) {
	items := []domain.CartItem{line(1, "10", "4", 2)}
	inv := invoiceFor(items, "100")
	require.True(t, inv.Total.IsZero())

	assertDecimal(t, "0", LineRefund(inv, items[0], 2))
}
