package ledger

import (
	"fmt"
	"regexp"
	"strings"

	"vintagepos/backend/internal/domain"
)

var whitespace = regexp.MustCompile(`\s+`)

// DefaultImageURL is the placeholder image for a product without one.
func DefaultImageURL(design string) string {
	return "https://picsum.photos/seed/" + whitespace.ReplaceAllString(design, "-") + "/400/300"
}

func (l *Ledger) Products() []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.List()
}

func (l *Ledger) SearchProducts(term string) []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.Search(term)
}

func (l *Ledger) LowStock(threshold int) []domain.Product {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.catalog.LowStock(threshold)
}

func (l *Ledger) Product(id int) (domain.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.catalog.FindByID(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (l *Ledger) ProductByRetailCode(code string) (domain.Product, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.catalog.FindByRetailCode(code)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: retail code %q", domain.ErrProductNotFound, code)
	}
	return p, nil
}

func (l *Ledger) CreateProduct(p domain.Product) (domain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p = normalizeProduct(p)
	if err := l.validateProductLocked(p, 0); err != nil {
		return domain.Product{}, err
	}
	return l.catalog.Create(p), nil
}

func (l *Ledger) UpdateProduct(p domain.Product) (domain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.catalog.FindByID(p.ID); !ok {
		return domain.Product{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, p.ID)
	}
	p = normalizeProduct(p)
	if err := l.validateProductLocked(p, p.ID); err != nil {
		return domain.Product{}, err
	}
	l.catalog.Update(p)
	return p, nil
}

// DeleteProduct removes the product from the catalog. Historical records
// keep their own copies.
func (l *Ledger) DeleteProduct(id int) (domain.Product, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, ok := l.catalog.FindByID(id)
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	l.catalog.Delete(id)
	return p, nil
}

func normalizeProduct(p domain.Product) domain.Product {
	p.Design = strings.TrimSpace(p.Design)
	p.RetailID = strings.TrimSpace(p.RetailID)
	p.WholesaleID = strings.TrimSpace(p.WholesaleID)
	p.Category = strings.TrimSpace(p.Category)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	if p.ImageURL == "" && p.Design != "" {
		p.ImageURL = DefaultImageURL(p.Design)
	}
	return p
}

func (l *Ledger) validateProductLocked(p domain.Product, selfID int) error {
	switch {
	case p.Design == "":
		return domain.MissingField("design")
	case p.RetailID == "":
		return domain.MissingField("retail_id")
	case p.RetailPrice.IsNegative() || p.WholesalePrice.IsNegative():
		return fmt.Errorf("%w: prices must not be negative", domain.ErrInvalidInput)
	case p.Count < 0:
		return fmt.Errorf("%w: count must not be negative", domain.ErrInvalidInput)
	case l.catalog.RetailCodeTaken(p.RetailID, selfID):
		return fmt.Errorf("%w: retail code %q already in use", domain.ErrInvalidInput, p.RetailID)
	}
	return nil
}
