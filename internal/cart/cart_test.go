package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vintagepos/backend/internal/domain"
	"vintagepos/backend/internal/pricing"
)

func product(id, count int, retail string) domain.Product {
	return domain.Product{
		ID:             id,
		Design:         "Design",
		RetailPrice:    decimal.RequireFromString(retail),
		WholesalePrice: decimal.RequireFromString("1"),
		Count:          count,
	}
}

func TestAddIncrementsUntilStockRunsOut(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	p := product(1, 2, "10")

	require.NoError(t, c.Add(p))
	require.NoError(t, c.Add(p))

	err := c.Add(p)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, stockErr.Available)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddOutOfStockProduct(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	assert.ErrorIs(t, c.Add(product(1, 0, "10")), domain.ErrInsufficientStock)
	assert.True(t, c.Empty())
}

func TestSetQuantity(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	p := product(1, 5, "10")
	require.NoError(t, c.Add(p))

	require.NoError(t, c.SetQuantity(p, 4))
	assert.Equal(t, 4, c.Items()[0].Quantity)

	err := c.SetQuantity(p, 9)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, 5, c.Items()[0].Quantity)

	require.NoError(t, c.SetQuantity(p, 0))
	assert.True(t, c.Empty())
}

func TestSetQuantityClampToZeroRemovesLine(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	require.NoError(t, c.Add(product(1, 1, "10")))

	err := c.SetQuantity(product(1, 0, "10"), 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, c.Empty())
}

func TestTotalsFollowCartChanges(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	a := product(1, 5, "10")
	b := product(2, 5, "30")
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(a))
	require.NoError(t, c.Add(b))

	totals := c.Totals()
	assert.True(t, totals.Subtotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, totals.Total.Equal(decimal.NewFromInt(55)))

	require.NoError(t, c.SetDiscount(decimal.NewFromInt(10)))
	totals = c.Totals()
	assert.True(t, totals.DiscountAmount.Equal(decimal.NewFromInt(5)))
	assert.True(t, totals.Total.Equal(decimal.RequireFromString("49.5")))

	c.Remove(2)
	assert.True(t, c.Totals().Subtotal.Equal(decimal.NewFromInt(20)))
}

func TestSetDiscountBounds(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	assert.ErrorIs(t, c.SetDiscount(decimal.NewFromInt(-1)), domain.ErrInvalidInput)
	assert.ErrorIs(t, c.SetDiscount(decimal.NewFromInt(101)), domain.ErrInvalidInput)
	assert.NoError(t, c.SetDiscount(decimal.NewFromInt(100)))
}

func TestClearResetsEverything(t *testing.T) {
	c := New(pricing.DefaultTaxRate)
	require.NoError(t, c.Add(product(1, 5, "10")))
	require.NoError(t, c.SetDiscount(decimal.NewFromInt(20)))
	c.SetCustomer(&domain.Customer{ID: 1, Name: "Ana"})

	c.Clear()

	assert.True(t, c.Empty())
	assert.True(t, c.Discount().IsZero())
	assert.Nil(t, c.Customer())
}
