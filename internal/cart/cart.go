// Package cart holds the products selected for the sale in progress.
package cart

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/pricing"
)

var hundred = decimal.NewFromInt(100)

type Cart struct {
	taxRate  decimal.Decimal
	items    []domain.CartItem
	discount decimal.Decimal
	customer *domain.Customer
}

func New(taxRate decimal.Decimal) *Cart {
	return &Cart{taxRate: taxRate}
}

// Add puts one more unit of product in the cart. Availability is checked
// against the live product count passed in.
func (c *Cart) Add(product domain.Product) error {
	i := c.index(product.ID)
	if i < 0 {
		if product.Count <= 0 {
			return stockError(product)
		}
		c.items = append(c.items, domain.CartItem{Product: product, Quantity: 1})
		return nil
	}
	if c.items[i].Quantity >= product.Count {
		return stockError(product)
	}
	c.items[i].Product = product
	c.items[i].Quantity++
	return nil
}

// SetQuantity sets the line quantity. Zero or less removes the line; more
// than available clamps to the available count and returns a StockError.
func (c *Cart) SetQuantity(product domain.Product, quantity int) error {
	if quantity <= 0 {
		c.Remove(product.ID)
		return nil
	}
	var err error
	if quantity > product.Count {
		quantity = product.Count
		err = stockError(product)
	}
	i := c.index(product.ID)
	switch {
	case quantity <= 0:
		c.Remove(product.ID)
	case i < 0:
		c.items = append(c.items, domain.CartItem{Product: product, Quantity: quantity})
	default:
		c.items[i].Product = product
		c.items[i].Quantity = quantity
	}
	return err
}

func (c *Cart) Remove(productID int) {
	if i := c.index(productID); i >= 0 {
		c.items = slices.Delete(c.items, i, i+1)
	}
}

func (c *Cart) Items() []domain.CartItem {
	return slices.Clone(c.items)
}

func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// SetDiscount accepts a percentage between 0 and 100.
func (c *Cart) SetDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(hundred) {
		return fmt.Errorf("%w: discount must be between 0 and 100", domain.ErrInvalidInput)
	}
	c.discount = percent
	return nil
}

func (c *Cart) Discount() decimal.Decimal {
	return c.discount
}

// SetCustomer selects the customer for the sale; nil clears it.
func (c *Cart) SetCustomer(customer *domain.Customer) {
	if customer == nil {
		c.customer = nil
		return
	}
	cp := *customer
	c.customer = &cp
}

func (c *Cart) Customer() *domain.Customer {
	if c.customer == nil {
		return nil
	}
	cp := *c.customer
	return &cp
}

// Totals is recomputed on every call.
func (c *Cart) Totals() domain.Totals {
	return pricing.Compute(c.items, c.discount, c.taxRate)
}

// Clear empties the cart and resets discount and customer.
func (c *Cart) Clear() {
	c.items = nil
	c.discount = decimal.Zero
	c.customer = nil
}

func (c *Cart) index(productID int) int {
	return slices.IndexFunc(c.items, func(item domain.CartItem) bool { return item.ID == productID })
}

func stockError(p domain.Product) error {
	return &domain.StockError{ProductID: p.ID, Design: p.Design, Available: max(0, p.Count)}
}
