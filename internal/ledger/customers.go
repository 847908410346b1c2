package ledger

import (
	"fmt"
	"slices"
	"strings"

	"vintagepos/backend/internal/domain"
)

func (l *Ledger) Customers() []domain.Customer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.customers)
}

func (l *Ledger) Customer(id int) (domain.Customer, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	c, ok := l.findCustomerLocked(id)
	if !ok {
		return domain.Customer{}, fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, id)
	}
	return c, nil
}

func (l *Ledger) CreateCustomer(c domain.Customer) (domain.Customer, error) {
	c = normalizeCustomer(c)
	if c.Name == "" {
		return domain.Customer{}, domain.MissingField("name")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	maxID := 0
	for _, existing := range l.customers {
		maxID = max(maxID, existing.ID)
	}
	c.ID = maxID + 1
	l.customers = append(l.customers, c)
	return c, nil
}

func (l *Ledger) UpdateCustomer(c domain.Customer) (domain.Customer, error) {
	c = normalizeCustomer(c)
	if c.Name == "" {
		return domain.Customer{}, domain.MissingField("name")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.customers, func(existing domain.Customer) bool { return existing.ID == c.ID })
	if i < 0 {
		return domain.Customer{}, fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, c.ID)
	}
	l.customers[i] = c
	return c, nil
}

// DeleteCustomer removes the customer. Invoices keep the denormalised name.
func (l *Ledger) DeleteCustomer(id int) (domain.Customer, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := slices.IndexFunc(l.customers, func(existing domain.Customer) bool { return existing.ID == id })
	if i < 0 {
		return domain.Customer{}, fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, id)
	}
	c := l.customers[i]
	l.customers = slices.Delete(l.customers, i, i+1)
	return c, nil
}

func (l *Ledger) findCustomerLocked(id int) (domain.Customer, bool) {
	i := slices.IndexFunc(l.customers, func(c domain.Customer) bool { return c.ID == id })
	if i < 0 {
		return domain.Customer{}, false
	}
	return l.customers[i], true
}

func normalizeCustomer(c domain.Customer) domain.Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	return c
}
