// Package catalog is the live set of sellable products and their stock
// counts. It is not safe for concurrent use; the ledger serialises access.
package catalog

import (
	"cmp"
	"slices"
	"strings"

	"vintagepos/backend/internal/domain"
)

type Catalog struct {
	products []domain.Product
}

func New(products []domain.Product) *Catalog {
	return &Catalog{products: slices.Clone(products)}
}

func (c *Catalog) List() []domain.Product {
	return slices.Clone(c.products)
}

func (c *Catalog) FindByID(id int) (domain.Product, bool) {
	if i := c.index(id); i >= 0 {
		return c.products[i], true
	}
	return domain.Product{}, false
}

// FindByRetailCode matches the retail code case-insensitively.
func (c *Catalog) FindByRetailCode(code string) (domain.Product, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Product{}, false
	}
	for _, p := range c.products {
		if strings.EqualFold(p.RetailID, code) {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Search matches design or retail code by case-insensitive substring. An
// empty term returns everything.
func (c *Catalog) Search(term string) []domain.Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return c.List()
	}
	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Design), term) || strings.Contains(strings.ToLower(p.RetailID), term) {
			out = append(out, p)
		}
	}
	return out
}

// LowStock returns products at or below threshold, lowest count first.
func (c *Catalog) LowStock(threshold int) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range c.products {
		if p.Count <= threshold {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b domain.Product) int {
		return cmp.Compare(a.Count, b.Count)
	})
	return out
}

// NextID is max(existing ids)+1, starting at 1.
func (c *Catalog) NextID() int {
	maxID := 0
	for _, p := range c.products {
		maxID = max(maxID, p.ID)
	}
	return maxID + 1
}

// Create assigns the next id and appends the product.
func (c *Catalog) Create(p domain.Product) domain.Product {
	p.ID = c.NextID()
	c.products = append(c.products, p)
	return p
}

// Update replaces the product with the same id. It reports false and
// changes nothing when the id is unknown.
func (c *Catalog) Update(p domain.Product) bool {
	i := c.index(p.ID)
	if i < 0 {
		return false
	}
	c.products[i] = p
	return true
}

func (c *Catalog) Delete(id int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.products = slices.Delete(c.products, i, i+1)
	return true
}

// AdjustCount adds delta to the product count without a floor.
func (c *Catalog) AdjustCount(id, delta int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.products[i].Count += delta
	return true
}

// AdjustCountClamped adds delta and floors the result at zero.
func (c *Catalog) AdjustCountClamped(id, delta int) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.products[i].Count = max(0, c.products[i].Count+delta)
	return true
}

// RetailCodeTaken reports whether another product already uses code.
func (c *Catalog) RetailCodeTaken(code string, exceptID int) bool {
	p, ok := c.FindByRetailCode(code)
	return ok && p.ID != exceptID
}

func (c *Catalog) index(id int) int {
	return slices.IndexFunc(c.products, func(p domain.Product) bool { return p.ID == id })
}
