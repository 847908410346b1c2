package finance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/pricing"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "want %s, got %s", want, got)
}

func item(id int, retail, wholesale string, qty int) domain.CartItem {
	return domain.CartItem{
		Product:  domain.Product{ID: id, Design: "p", RetailPrice: d(retail), WholesalePrice: d(wholesale)},
		Quantity: qty,
	}
}

func invoice(id string, items []domain.CartItem, discount string, paid string) domain.Invoice {
	totals := pricing.Compute(items, d(discount), pricing.DefaultTaxRate)
	wholesale := pricing.WholesaleTotal(items)
	inv := domain.Invoice{
		ID:             id,
		Items:          items,
		Subtotal:       totals.Subtotal,
		Discount:       totals.DiscountPercent,
		DiscountAmount: totals.DiscountAmount,
		Tax:            totals.Tax,
		Total:          totals.Total,
		WholesaleTotal: wholesale,
		Profit:         totals.Total.Sub(wholesale),
	}
	if paid != "" {
		inv.Payments = []domain.Payment{{Method: domain.PaymentCash, Amount: d(paid)}}
	}
	return inv
}

func TestSummarizeSingleSale(t *testing.T) {
	inv := invoice("INV-1", []domain.CartItem{item(1, "10", "4", 2)}, "0", "20")

	s := Summarize([]domain.Invoice{inv}, nil, nil, nil)

	assertDecimal(t, "22", s.NetRevenue)
	assertDecimal(t, "8", s.AdjustedCOGS)
	assertDecimal(t, "14", s.GrossProfit)
	assertDecimal(t, "2", s.Receivables)
	assert.Equal(t, 0, s.PaidInvoices)
	assert.Equal(t, 1, s.OpenInvoices)
	assert.Equal(t, 2, s.ItemsSold)
}

func TestSummarizeReturnsAndAdjustments(t *testing.T) {
	older := invoice("INV-1", []domain.CartItem{item(1, "10", "4", 2)}, "0", "22")
	newer := invoice("INV-2", []domain.CartItem{item(1, "10", "4.5", 1), item(2, "30", "12", 1)}, "10", "")
	notes := []domain.CreditNote{{
		ID:                "CN-1",
		OriginalInvoiceID: "INV-1",
		Items:             []domain.ReturnedItem{{ProductID: 1, Quantity: 1, RefundAmount: d("11")}},
		TotalRefund:       d("11"),
	}, {
		ID:                "CN-2",
		OriginalInvoiceID: "INV-gone",
		Items:             []domain.ReturnedItem{{ProductID: 1, Quantity: 1, RefundAmount: d("5")}},
		TotalRefund:       d("5"),
	}}
	adjustments := []domain.StockAdjustment{
		{ProductID: 1, Quantity: -3},
		{ProductID: 2, Quantity: 4},
		{ProductID: 99, Quantity: -2},
	}

	s := Summarize([]domain.Invoice{newer, older}, nil, notes, adjustments)

	// newer: subtotal 40, discount 4, tax 3.6, total 39.6
	assertDecimal(t, "61.6", s.GrossRevenue)
	assertDecimal(t, "16", s.TotalRefunds)
	assertDecimal(t, "45.6", s.NetRevenue)
	assertDecimal(t, "24.5", s.WholesaleCost)
	assertDecimal(t, "4", s.ReturnedCost)
	// newest invoice line for product 1 carries 4.5
	assertDecimal(t, "13.5", s.AdjustmentLoss)
	assertDecimal(t, "34", s.AdjustedCOGS)
	assertDecimal(t, "11.6", s.GrossProfit)
	assert.True(t, s.NetRevenue.Sub(s.AdjustedCOGS).Equal(s.GrossProfit))
	assert.Equal(t, 1, s.PaidInvoices)
	assert.Equal(t, 1, s.OpenInvoices)
	assertDecimal(t, "39.6", s.Receivables)
	assert.Equal(t, 4, s.ItemsSold)
}

func TestSummarizeMarginZeroWithoutRevenue(t *testing.T) {
	s := Summarize(nil, nil, nil, nil)
	assert.True(t, s.ProfitMargin.IsZero())
	assert.True(t, s.GrossProfit.IsZero())

	inv := invoice("INV-1", []domain.CartItem{item(1, "10", "4", 1)}, "0", "11")
	note := domain.CreditNote{OriginalInvoiceID: "INV-1", TotalRefund: d("11"),
		Items: []domain.ReturnedItem{{ProductID: 1, Quantity: 1}}}
	s = Summarize([]domain.Invoice{inv}, nil, []domain.CreditNote{note}, nil)
	assert.True(t, s.NetRevenue.IsZero())
	assert.True(t, s.ProfitMargin.IsZero())
}

func TestSummarizeMargin(t *testing.T) {
	inv := invoice("INV-1", []domain.CartItem{item(1, "10", "4", 2)}, "0", "22")
	s := Summarize([]domain.Invoice{inv}, nil, nil, nil)
	require.True(t, s.NetRevenue.Equal(d("22")))
	assertDecimal(t, "63.64", s.ProfitMargin.Round(2))
}

func TestSummarizePayables(t *testing.T) {
	purchases := []domain.PurchaseInvoice{
		{ID: "PUR-1", Total: d("100"), Payments: []domain.Payment{{Method: domain.PaymentCard, Amount: d("100")}}},
		{ID: "PUR-2", Total: d("80"), Payments: []domain.Payment{{Method: domain.PaymentCash, Amount: d("30")}}},
		{ID: "PUR-3", Total: d("20")},
	}
	s := Summarize(nil, purchases, nil, nil)

	assertDecimal(t, "200", s.TotalPurchases)
	assertDecimal(t, "70", s.Payables)
	assert.Equal(t, 1, s.PaidPurchases)
	assert.Equal(t, 2, s.OpenPurchases)
}

func TestInventoryReport(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	products := []domain.Product{
		{ID: 1, Count: 12, WholesalePrice: d("2")},
		{ID: 2, Count: 3, WholesalePrice: d("10")},
		{ID: 3, Count: -1, WholesalePrice: d("5")},
		{ID: 4, Count: 10, WholesalePrice: d("1")},
	}
	adjustments := []domain.StockAdjustment{
		{ID: "ADJ-1", Date: now.Add(-2 * time.Hour)},
		{ID: "ADJ-2", Date: now},
		{ID: "ADJ-3", Date: now.Add(-time.Hour)},
	}

	report := InventoryReport(products, adjustments, 10, 2)

	require.Len(t, report.LowStock, 3)
	assert.Equal(t, []int{3, 2, 4}, []int{report.LowStock[0].ID, report.LowStock[1].ID, report.LowStock[2].ID})
	assert.Equal(t, 25, report.TotalUnits)
	assertDecimal(t, "64", report.StockValue)
	require.Len(t, report.RecentAdjustments, 2)
	assert.Equal(t, "ADJ-2", report.RecentAdjustments[0].ID)
	assert.Equal(t, "ADJ-3", report.RecentAdjustments[1].ID)
}

func TestSoldItemReport(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	paid := invoice("INV-1", []domain.CartItem{item(1, "10", "4", 1)}, "0", "11")
	unpaid := invoice("INV-2", []domain.CartItem{item(1, "10", "4", 1)}, "0", "")
	items := []domain.SoldItem{
		{ID: "S-1", InvoiceID: "INV-1", Date: now.Add(-time.Hour)},
		{ID: "S-2", InvoiceID: "INV-2", Date: now},
	}

	rows := SoldItemReport(items, []domain.Invoice{paid, unpaid})

	require.Len(t, rows, 2)
	assert.Equal(t, "S-2", rows[0].ID)
	assert.Equal(t, domain.StatusUnpaid, rows[0].Status)
	assert.Equal(t, domain.StatusPaid, rows[1].Status)
}
