package domain

import "github.com/shopspring/decimal"

// PurchaseLine is either a NewProductLine or an ExistingProductLine.
type PurchaseLine interface {
	purchaseLine()
	Qty() int
	UnitPrice() decimal.Decimal
}

// NewProductLine creates a catalog product as part of a purchase. The
// purchase price becomes the product's wholesale price.
type NewProductLine struct {
	Design        string          `json:"design"`
	WholesaleID   string          `json:"wholesale_id"`
	RetailID      string          `json:"retail_id"`
	RetailPrice   decimal.Decimal `json:"retail_price"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

// ExistingProductLine restocks a product already in the catalog.
type ExistingProductLine struct {
	ProductID     int             `json:"product_id"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
}

func (NewProductLine) purchaseLine()      {}
func (ExistingProductLine) purchaseLine() {}

func (l NewProductLine) Qty() int                        { return l.Quantity }
func (l NewProductLine) UnitPrice() decimal.Decimal      { return l.PurchasePrice }
func (l ExistingProductLine) Qty() int                   { return l.Quantity }
func (l ExistingProductLine) UnitPrice() decimal.Decimal { return l.PurchasePrice }

// PurchaseLines joins new and existing entries, new products first.
func PurchaseLines(newItems []NewProductLine, existingItems []ExistingProductLine) []PurchaseLine {
	lines := make([]PurchaseLine, 0, len(newItems)+len(existingItems))
	for _, item := range newItems {
		lines = append(lines, item)
	}
	for _, item := range existingItems {
		lines = append(lines, item)
	}
	return lines
}
