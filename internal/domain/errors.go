package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMissingField      = errors.New("missing required field")
	ErrOverReturn        = errors.New("return quantity exceeds returnable quantity")
	ErrInvalidInput      = errors.New("invalid input")
	ErrProductNotFound   = errors.New("product not found")
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrPurchaseNotFound  = errors.New("purchase invoice not found")
)

// StockError names the product that ran out and how many units remain.
type StockError struct {
	ProductID int
	Design    string
	Available int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("not enough stock for %q: only %d available", e.Design, e.Available)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// MissingField wraps ErrMissingField with the field name.
func MissingField(name string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, name)
}

// IsValidation reports whether err is a caller mistake rather than a fault.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyCart,
		ErrInsufficientStock,
		ErrMissingField,
		ErrOverReturn,
		ErrInvalidInput,
		ErrProductNotFound,
		ErrCustomerNotFound,
		ErrInvoiceNotFound,
		ErrPurchaseNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err names a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrPurchaseNotFound)
}
