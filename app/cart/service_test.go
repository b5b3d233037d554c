package cart_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/storefront/app/cart"
)

// countingSession records writes so tests can assert the single-save rule.
type countingSession struct {
	session
	sets, deletes int
}

func (s *countingSession) Set(key string, value any) { s.sets++; s.session.Set(key, value) }
func (s *countingSession) Delete(key string)         { s.deletes++; s.session.Delete(key) }

func newService(cat *catalog) *cart.Service {
	return cart.NewService(cart.NewEngine(cat), 3000)
}

func TestServiceAddSavesOnce(t *testing.T) {
	ctx := context.Background()
	x := product(1, 5999, 10)
	svc := newService(newCatalog(x))
	s := &countingSession{session: session{}}

	svc.Add(ctx, s, x, 2, false)
	assert.Equal(t, 1, s.sets)

	svc.Add(ctx, s, x, -5, false)
	assert.Equal(t, 2, s.sets, "saved even when the entry is deleted")
	assert.Zero(t, svc.Count(ctx, s))
}

func TestServiceRemoveSavesOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	x := product(1, 5999, 10)
	svc := newService(newCatalog(x))
	s := &countingSession{session: session{}}

	svc.Remove(ctx, s, x)
	assert.Zero(t, s.sets)

	svc.Add(ctx, s, x, 1, false)
	svc.RemoveByID(ctx, s, "1")
	assert.Equal(t, 2, s.sets)
}

func TestServiceAddOneRefusesNoStock(t *testing.T) {
	ctx := context.Background()
	x := product(1, 5999, 0)
	svc := newService(newCatalog(x))
	s := session{}

	_, err := svc.AddOne(ctx, s, x)
	assert.ErrorIs(t, err, cart.ErrOutOfStock)
	assert.Zero(t, svc.Count(ctx, s))
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()
	x := product(1, 5999, 4)
	svc := newService(newCatalog(x))
	s := session{}
	svc.Add(ctx, s, x, 1, false)

	res := svc.Update(ctx, s, x, 3)
	assert.Equal(t, 3, res.Quantity)
	assert.False(t, res.Clamped)

	res = svc.Update(ctx, s, x, 9)
	assert.True(t, res.Clamped)
	assert.Equal(t, 4, res.Quantity)
	assert.Equal(t, 4, svc.Count(ctx, s))

	res = svc.Update(ctx, s, x, 0)
	assert.True(t, res.Removed)
	assert.Zero(t, svc.Count(ctx, s))
}

func TestServiceUpdateWithNoStockRemoves(t *testing.T) {
	ctx := context.Background()
	x := product(1, 5999, 0)
	svc := newService(newCatalog(x))
	s := session{}
	svc.Add(ctx, s, x, 2, false)

	res := svc.Update(ctx, s, x, 2)
	assert.True(t, res.Clamped)
	assert.True(t, res.Removed)
}

func TestServiceSummary(t *testing.T) {
	ctx := context.Background()
	ok := product(1, 5000, 10)
	short := product(2, 2000, 1)
	gone := product(3, 1500, 5)
	cat := newCatalog(ok, short)
	svc := newService(cat)
	s := session{}

	svc.Add(ctx, s, ok, 2, false)
	svc.Add(ctx, s, short, 3, false)
	svc.Add(ctx, s, gone, 1, false)

	sum, err := svc.Summary(ctx, s)
	require.NoError(t, err)
	require.Len(t, sum.Lines, 3)
	assert.Equal(t, 6, sum.TotalQuantity)
	assert.Equal(t, "10000", sum.ProductsTotal.String())
	assert.Equal(t, "3000", sum.Shipping.String())
	assert.Equal(t, "13000", sum.GrandTotal.String())
	assert.True(t, sum.HasIssues)
	assert.Equal(t, 1, cat.calls)
}

func TestServiceSummaryNoShippingWhenNothingPriced(t *testing.T) {
	ctx := context.Background()
	short := product(2, 2000, 1)
	svc := newService(newCatalog(short))
	s := session{}
	svc.Add(ctx, s, short, 5, false)

	sum, err := svc.Summary(ctx, s)
	require.NoError(t, err)
	assert.True(t, sum.Shipping.IsZero())
	assert.True(t, sum.GrandTotal.IsZero())
}

func TestServiceResetsCorruptCart(t *testing.T) {
	ctx := context.Background()
	svc := newService(newCatalog())
	s := session{cart.SessionKey: 42}

	assert.Zero(t, svc.Current(ctx, s).Len())
	_, present := s[cart.SessionKey]
	assert.False(t, present)
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 3, cart.ParseQuantity("3", 1))
	assert.Equal(t, 3, cart.ParseQuantity(" 3 ", 1))
	assert.Equal(t, -2, cart.ParseQuantity("-2", 1))
	assert.Equal(t, 1, cart.ParseQuantity("three", 1))
	assert.Equal(t, 1, cart.ParseQuantity("", 1))
	assert.Equal(t, 1, cart.ParseQuantity("2.5", 1))
}
