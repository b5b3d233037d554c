package cart

import (
	"context"
	"fmt"
	"iter"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/collection"
)

// Status classifies a reconciled line.
type Status int

const (
	StatusValid Status = iota
	StatusMissing
	StatusInsufficientStock
)

func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusMissing:
		return "missing"
	case StatusInsufficientStock:
		return "insufficient_stock"
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Line is a cart entry joined against the current catalog.
type Line struct {
	ProductID string
	// Product is nil when Status is StatusMissing.
	Product  *models.Product
	Quantity int
	// UnitPrice is the current product price, or the stored snapshot for a
	// missing product.
	UnitPrice decimal.Decimal
	// TotalPrice is zero unless Status is StatusValid.
	TotalPrice decimal.Decimal
	Status     Status
}

// ProductFinder loads products by id in one round trip. Unknown ids are
// left out of the result.
type ProductFinder interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
}

// Engine reconciles carts against a catalog.
type Engine struct {
	products ProductFinder
}

func NewEngine(products ProductFinder) *Engine {
	return &Engine{products: products}
}

// Reconcile loads every product the cart references with one FindByIDs
// call and returns the classified lines in cart order. The sequence can be
// ranged over any number of times; each call to Reconcile reads the catalog
// again.
func (e *Engine) Reconcile(ctx context.Context, c Cart) (iter.Seq[Line], error) {
	entries := c.Entries()

	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		if id, err := strconv.ParseUint(entry.ProductID, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}

	var byKey map[string]models.Product
	if len(ids) > 0 {
		products, err := e.products.FindByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("cart: load products: %w", err)
		}
		byKey = collection.KeyBy(products, models.Product.Key)
	}

	return func(yield func(Line) bool) {
		for _, entry := range entries {
			p, ok := byKey[entry.ProductID]
			if !yield(classify(entry, p, ok)) {
				return
			}
		}
	}, nil
}

func classify(entry Entry, p models.Product, found bool) Line {
	line := Line{ProductID: entry.ProductID, Quantity: entry.Quantity, TotalPrice: decimal.Zero}

	if !found {
		line.Status = StatusMissing
		line.UnitPrice = snapshotPrice(entry.Price)
		return line
	}

	line.Product = &p
	line.UnitPrice = p.Price
	if entry.Quantity > p.Stock || p.Stock <= 0 {
		line.Status = StatusInsufficientStock
		return line
	}

	line.Status = StatusValid
	line.TotalPrice = p.Price.Mul(decimal.NewFromInt(int64(entry.Quantity)))
	return line
}

func snapshotPrice(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// TotalPrice sums the line totals of the reconciled cart.
func (e *Engine) TotalPrice(ctx context.Context, c Cart) (decimal.Decimal, error) {
	lines, err := e.Reconcile(ctx, c)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for line := range lines {
		total = total.Add(line.TotalPrice)
	}
	return total, nil
}
