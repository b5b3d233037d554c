package cart

import (
	"context"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/gamevault/storefront/pkg/metrics"
)

// Summary is the priced view of a cart.
type Summary struct {
	Lines         []Line
	TotalQuantity int
	ProductsTotal decimal.Decimal
	// Shipping is the flat fee, charged only when ProductsTotal is positive.
	Shipping   decimal.Decimal
	GrandTotal decimal.Decimal
	// HasIssues is set when any line is missing or short on stock.
	HasIssues bool
}

// Summarize reconciles c and prices it with a flat shipping fee.
func (e *Engine) Summarize(ctx context.Context, c Cart, shippingFee decimal.Decimal) (Summary, error) {
	seq, err := e.Reconcile(ctx, c)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Lines:         slices.Collect(seq),
		TotalQuantity: c.TotalQuantity(),
		ProductsTotal: decimal.Zero,
		Shipping:      decimal.Zero,
	}
	for _, line := range s.Lines {
		metrics.CartLines.WithLabelValues(line.Status.String()).Inc()
		s.ProductsTotal = s.ProductsTotal.Add(line.TotalPrice)
		if line.Status != StatusValid {
			s.HasIssues = true
		}
	}
	if s.ProductsTotal.IsPositive() {
		s.Shipping = shippingFee
	}
	s.GrandTotal = s.ProductsTotal.Add(s.Shipping)
	return s, nil
}
