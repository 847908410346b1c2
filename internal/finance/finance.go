// Package finance reduces the ledgers to dashboard figures. Nothing here
// mutates state.
package finance

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
)

var hundred = decimal.NewFromInt(100)

type Summary struct {
	GrossRevenue   decimal.Decimal `json:"gross_revenue"`
	TotalRefunds   decimal.Decimal `json:"total_refunds"`
	NetRevenue     decimal.Decimal `json:"net_revenue"`
	WholesaleCost  decimal.Decimal `json:"wholesale_cost"`
	ReturnedCost   decimal.Decimal `json:"returned_cost"`
	AdjustmentLoss decimal.Decimal `json:"adjustment_loss"`
	AdjustedCOGS   decimal.Decimal `json:"adjusted_cogs"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	ProfitMargin   decimal.Decimal `json:"profit_margin"`
	ItemsSold      int             `json:"items_sold"`
	PaidInvoices   int             `json:"paid_invoices"`
	OpenInvoices   int             `json:"open_invoices"`
	Receivables    decimal.Decimal `json:"receivables"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	PaidPurchases  int             `json:"paid_purchases"`
	OpenPurchases  int             `json:"open_purchases"`
	Payables       decimal.Decimal `json:"payables"`
}

// Summarize computes revenue, cost and profit figures. Cost of goods sold
// is reduced by the wholesale cost of returned units and increased by
// stock written off through negative adjustments. Wholesale prices come
// from invoice lines rather than the live catalog.
func Summarize(invoices []domain.Invoice, purchases []domain.PurchaseInvoice, creditNotes []domain.CreditNote, adjustments []domain.StockAdjustment) Summary {
	s := Summary{
		GrossRevenue:   decimal.Zero,
		TotalRefunds:   decimal.Zero,
		WholesaleCost:  decimal.Zero,
		ReturnedCost:   decimal.Zero,
		AdjustmentLoss: decimal.Zero,
		ProfitMargin:   decimal.Zero,
		Receivables:    decimal.Zero,
		TotalPurchases: decimal.Zero,
		Payables:       decimal.Zero,
	}

	byID := make(map[string]domain.Invoice, len(invoices))
	for _, inv := range invoices {
		byID[inv.ID] = inv
		s.GrossRevenue = s.GrossRevenue.Add(inv.Total)
		s.WholesaleCost = s.WholesaleCost.Add(inv.WholesaleTotal)
		for _, item := range inv.Items {
			s.ItemsSold += item.Quantity
		}
		if inv.Total.IsPositive() && inv.Status() == domain.StatusPaid {
			s.PaidInvoices++
		}
		if inv.Status() != domain.StatusPaid {
			s.OpenInvoices++
			s.Receivables = s.Receivables.Add(domain.Outstanding(inv.Payments, inv.Total))
		}
	}

	for _, note := range creditNotes {
		s.TotalRefunds = s.TotalRefunds.Add(note.TotalRefund)
		inv, ok := byID[note.OriginalInvoiceID]
		if !ok {
			continue
		}
		for _, item := range note.Items {
			if line, ok := inv.Line(item.ProductID); ok {
				s.ReturnedCost = s.ReturnedCost.Add(line.WholesalePrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}
	}

	for _, adj := range adjustments {
		if adj.Quantity >= 0 {
			continue
		}
		if price, ok := wholesalePriceFromInvoices(invoices, adj.ProductID); ok {
			s.AdjustmentLoss = s.AdjustmentLoss.Add(price.Mul(decimal.NewFromInt(int64(-adj.Quantity))))
		}
	}

	for _, p := range purchases {
		s.TotalPurchases = s.TotalPurchases.Add(p.Total)
		if p.Total.IsPositive() && p.Status() == domain.StatusPaid {
			s.PaidPurchases++
		}
		if p.Status() != domain.StatusPaid {
			s.OpenPurchases++
			s.Payables = s.Payables.Add(domain.Outstanding(p.Payments, p.Total))
		}
	}

	s.NetRevenue = s.GrossRevenue.Sub(s.TotalRefunds)
	s.AdjustedCOGS = s.WholesaleCost.Sub(s.ReturnedCost).Add(s.AdjustmentLoss)
	s.GrossProfit = s.NetRevenue.Sub(s.AdjustedCOGS)
	if !s.NetRevenue.IsZero() {
		s.ProfitMargin = s.GrossProfit.Div(s.NetRevenue).Mul(hundred)
	}
	return s
}

// wholesalePriceFromInvoices returns the wholesale price on the first
// invoice line for productID, scanning in stored (newest first) order.
func wholesalePriceFromInvoices(invoices []domain.Invoice, productID int) (decimal.Decimal, bool) {
	for _, inv := range invoices {
		if line, ok := inv.Line(productID); ok {
			return line.WholesalePrice, true
		}
	}
	return decimal.Zero, false
}

type Inventory struct {
	LowStockThreshold int                      `json:"low_stock_threshold"`
	LowStock          []domain.Product         `json:"low_stock"`
	ProductCount      int                      `json:"product_count"`
	TotalUnits        int                      `json:"total_units"`
	StockValue        decimal.Decimal          `json:"stock_value"`
	RecentAdjustments []domain.StockAdjustment `json:"recent_adjustments"`
}

// InventoryReport lists products at or below threshold, lowest first, and
// values the units on hand at wholesale. Negative counts add no value.
func InventoryReport(products []domain.Product, adjustments []domain.StockAdjustment, threshold, recent int) Inventory {
	report := Inventory{
		LowStockThreshold: threshold,
		LowStock:          make([]domain.Product, 0),
		ProductCount:      len(products),
		StockValue:        decimal.Zero,
	}
	for _, p := range products {
		if p.Count <= threshold {
			report.LowStock = append(report.LowStock, p)
		}
		if p.Count > 0 {
			report.TotalUnits += p.Count
			report.StockValue = report.StockValue.Add(p.WholesalePrice.Mul(decimal.NewFromInt(int64(p.Count))))
		}
	}
	slices.SortStableFunc(report.LowStock, func(a, b domain.Product) int { return cmp.Compare(a.Count, b.Count) })

	sorted := slices.Clone(adjustments)
	slices.SortStableFunc(sorted, func(a, b domain.StockAdjustment) int { return b.Date.Compare(a.Date) })
	if recent > 0 && len(sorted) > recent {
		sorted = sorted[:recent]
	}
	report.RecentAdjustments = sorted
	return report
}

type SoldItemRow struct {
	domain.SoldItem
	Status domain.PaymentStatus `json:"status"`
}

// SoldItemReport pairs each sold item with its invoice's payment status,
// newest sale first.
func SoldItemReport(soldItems []domain.SoldItem, invoices []domain.Invoice) []SoldItemRow {
	status := make(map[string]domain.PaymentStatus, len(invoices))
	for _, inv := range invoices {
		status[inv.ID] = inv.Status()
	}
	rows := make([]SoldItemRow, 0, len(soldItems))
	for _, item := range soldItems {
		st, ok := status[item.InvoiceID]
		if !ok {
			st = domain.StatusUnpaid
		}
		rows = append(rows, SoldItemRow{SoldItem: item, Status: st})
	}
	slices.SortStableFunc(rows, func(a, b SoldItemRow) int { return b.Date.Compare(a.Date) })
	return rows
}
