package cart

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/logger"
)

// ErrOutOfStock is returned when adding a product that has no stock.
var ErrOutOfStock = errors.New("cart: product is out of stock")

// Service applies cart operations to a session: each call loads the cart
// once, applies one change and saves at most once.
type Service struct {
	engine   *Engine
	shipping decimal.Decimal
}

// NewService prices carts with engine and a flat shipping fee.
func NewService(engine *Engine, shippingFee int64) *Service {
	return &Service{engine: engine, shipping: decimal.NewFromInt(shippingFee)}
}

// Current returns the session's cart. A corrupt stored cart is logged and
// treated as empty.
func (s *Service) Current(ctx context.Context, sess SessionStore) Cart {
	c, err := Load(sess)
	if err != nil {
		logger.WithCtx(ctx).Warn("cart: resetting unreadable cart", "error", err)
		Drop(sess)
		return Cart{}
	}
	return c
}

// Add applies Cart.Add and saves the result, even when the entry was
// removed.
func (s *Service) Add(ctx context.Context, sess SessionStore, p models.Product, qty int, override bool) Cart {
	c := s.Current(ctx, sess).Add(p, qty, override)
	Save(sess, c)
	return c
}

// AddOne adds a single unit of p, refusing products with no stock.
func (s *Service) AddOne(ctx context.Context, sess SessionStore, p models.Product) (Cart, error) {
	if p.Stock <= 0 {
		return s.Current(ctx, sess), ErrOutOfStock
	}
	return s.Add(ctx, sess, p, 1, false), nil
}

// UpdateResult describes what Update stored.
type UpdateResult struct {
	Cart Cart
	// Quantity is the stored quantity, 0 when the entry was removed.
	Quantity int
	Removed  bool
	// Clamped is set when the request exceeded the available stock.
	Clamped bool
}

// Update sets p's quantity. Quantities below 1 remove the entry; quantities
// above the current stock are lowered to it.
func (s *Service) Update(ctx context.Context, sess SessionStore, p models.Product, qty int) UpdateResult {
	if qty < 1 {
		return UpdateResult{Cart: s.Remove(ctx, sess, p), Removed: true}
	}

	res := UpdateResult{Quantity: qty}
	if qty > p.Stock {
		res.Quantity = max(p.Stock, 0)
		res.Clamped = true
	}
	res.Cart = s.Add(ctx, sess, p, res.Quantity, true)
	res.Removed = !res.Cart.Has(p.Key())
	return res
}

// Remove drops p, saving only when the cart changed.
func (s *Service) Remove(ctx context.Context, sess SessionStore, p models.Product) Cart {
	return s.RemoveByID(ctx, sess, p.Key())
}

// RemoveByID drops id, saving only when the cart changed.
func (s *Service) RemoveByID(ctx context.Context, sess SessionStore, id string) Cart {
	c := s.Current(ctx, sess)
	if !c.Has(id) {
		return c
	}
	c = c.RemoveByID(id)
	Save(sess, c)
	return c
}

// Clear deletes the whole cart.
func (s *Service) Clear(sess SessionStore) { Drop(sess) }

// Count is the raw number of items in the cart.
func (s *Service) Count(ctx context.Context, sess SessionStore) int {
	return s.Current(ctx, sess).TotalQuantity()
}

// Summary reconciles and prices the session's cart.
func (s *Service) Summary(ctx context.Context, sess SessionStore) (Summary, error) {
	return s.engine.Summarize(ctx, s.Current(ctx, sess), s.shipping)
}

// ParseQuantity reads a form quantity, falling back to def when raw is not
// an integer.
func ParseQuantity(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}
