package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
)

type Payment struct {
	Method PaymentMethod   `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentStatus string

const (
	StatusUnpaid        PaymentStatus = "UNPAID"
	StatusPartiallyPaid PaymentStatus = "PARTIALLY PAID"
	StatusPaid          PaymentStatus = "PAID"
)

// TotalPaid sums all payment amounts.
func TotalPaid(payments []Payment) decimal.Decimal {
	paid := decimal.Zero
	for _, p := range payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// StatusOf is never stored; callers derive it wherever it is shown.
func StatusOf(payments []Payment, total decimal.Decimal) PaymentStatus {
	paid := TotalPaid(payments)
	switch {
	case paid.IsZero():
		return StatusUnpaid
	case paid.LessThan(total):
		return StatusPartiallyPaid
	default:
		return StatusPaid
	}
}

// Outstanding is the unpaid remainder, never negative.
func Outstanding(payments []Payment, total decimal.Decimal) decimal.Decimal {
	rest := total.Sub(TotalPaid(payments))
	if rest.IsNegative() {
		return decimal.Zero
	}
	return rest
}

// NormalizePayments lowercases methods, rejects unsupported methods and
// negative amounts, and drops zero-amount entries.
func NormalizePayments(payments []Payment) ([]Payment, error) {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		method := PaymentMethod(strings.ToLower(strings.TrimSpace(string(p.Method))))
		if !method.Supported() {
			return nil, fmt.Errorf("%w: unsupported payment method %q", ErrInvalidInput, p.Method)
		}
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: payment amount must not be negative", ErrInvalidInput)
		}
		if p.Amount.IsZero() {
			continue
		}
		out = append(out, Payment{Method: method, Amount: p.Amount})
	}
	return out, nil
}

func (m PaymentMethod) Supported() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentUPI:
		return true
	default:
		return false
	}
}
