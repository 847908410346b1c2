package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID             int             `json:"id"`
	Design         string          `json:"design"`
	WholesaleID    string          `json:"wholesale_id"`
	RetailID       string          `json:"retail_id"`
	RetailPrice    decimal.Decimal `json:"retail_price"`
	WholesalePrice decimal.Decimal `json:"wholesale_price"`
	Category       string          `json:"category"`
	ImageURL       string          `json:"image_url"`
	Count          int             `json:"count"`
}

// CartItem is a frozen product snapshot plus the quantity taken. On an
// invoice it also carries how many units have come back through returns.
type CartItem struct {
	Product
	Quantity         int `json:"quantity"`
	ReturnedQuantity int `json:"returned_quantity"`
}

// LineTotal is retail price times quantity.
func (c CartItem) LineTotal() decimal.Decimal {
	return c.RetailPrice.Mul(decimal.NewFromInt(int64(c.Quantity)))
}

// Returnable is the quantity still eligible for return.
func (c CartItem) Returnable() int {
	return c.Quantity - c.ReturnedQuantity
}

type Totals struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Taxable         decimal.Decimal `json:"taxable"`
	Tax             decimal.Decimal `json:"tax"`
	Total           decimal.Decimal `json:"total"`
}

type Invoice struct {
	ID             string          `json:"id"`
	Items          []CartItem      `json:"items"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`
	WholesaleTotal decimal.Decimal `json:"wholesale_total"`
	Profit         decimal.Decimal `json:"profit"`
	Payments       []Payment       `json:"payments"`
	Date           time.Time       `json:"date"`
	CreditNoteIDs  []string        `json:"credit_note_ids,omitempty"`
	CustomerID     *int            `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
}

// Status derives the payment status from payments and total.
func (i Invoice) Status() PaymentStatus {
	return StatusOf(i.Payments, i.Total)
}

// Line returns the invoice line for productID.
func (i Invoice) Line(productID int) (CartItem, bool) {
	for _, item := range i.Items {
		if item.ID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

type SoldItem struct {
	ID        string          `json:"id"`
	ProductID int             `json:"product_id"`
	Design    string          `json:"design"`
	RetailID  string          `json:"retail_id"`
	Quantity  int             `json:"quantity"`
	SoldPrice decimal.Decimal `json:"sold_price"`
	Date      time.Time       `json:"date"`
	InvoiceID string          `json:"invoice_id"`
}

type PurchaseItem struct {
	ProductID     int             `json:"product_id"`
	Design        string          `json:"design"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

type PurchaseInvoice struct {
	ID       string          `json:"id"`
	Supplier string          `json:"supplier"`
	Items    []PurchaseItem  `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Payments []Payment       `json:"payments"`
	Date     time.Time       `json:"date"`
}

func (p PurchaseInvoice) Status() PaymentStatus {
	return StatusOf(p.Payments, p.Total)
}

type ReturnLine struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type ReturnedItem struct {
	ProductID    int             `json:"product_id"`
	Design       string          `json:"design"`
	Quantity     int             `json:"quantity"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

type CreditNote struct {
	ID                string          `json:"id"`
	OriginalInvoiceID string          `json:"original_invoice_id"`
	Items             []ReturnedItem  `json:"items"`
	TotalRefund       decimal.Decimal `json:"total_refund"`
	Date              time.Time       `json:"date"`
	Reason            string          `json:"reason"`
}

type Customer struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type StockAdjustment struct {
	ID            string    `json:"id"`
	ProductID     int       `json:"product_id"`
	ProductDesign string    `json:"product_design"`
	Quantity      int       `json:"quantity"`
	Reason        string    `json:"reason"`
	Date          time.Time `json:"date"`
}

// Snapshot is the full ledger state as persisted, one field per record set.
type Snapshot struct {
	Products         []Product         `json:"products"`
	SoldItems        []SoldItem        `json:"sold_items"`
	Invoices         []Invoice         `json:"invoices"`
	PurchaseInvoices []PurchaseInvoice `json:"purchase_invoices"`
	CreditNotes      []CreditNote      `json:"credit_notes"`
	Customers        []Customer        `json:"customers"`
	StockAdjustments []StockAdjustment `json:"stock_adjustments"`
}

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return true
	default:
		return false
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
}

// Actor is the authenticated operator behind a request.
type Actor struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}
