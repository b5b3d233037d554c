// Package cart implements the session cart and its reconciliation against
// the live catalog.
//
// A Cart is a value: every mutation returns a new Cart and leaves the
// receiver untouched. The session is read by Load and written by Save, and
// nothing else in this package touches it.
package cart

import (
	"slices"

	"github.com/gamevault/storefront/app/models"
)

// Entry is one stored cart row. Price is the product price when the row was
// first added; totals never use it.
type Entry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// Cart is an insertion-ordered set of entries, each with Quantity >= 1.
type Cart struct {
	entries []Entry
}

// FromEntries builds a cart from stored rows, dropping rows with quantity
// below 1, blank ids and repeated ids.
func FromEntries(entries []Entry) Cart {
	var c Cart
	for _, e := range entries {
		if e.ProductID == "" || e.Quantity < 1 || c.index(e.ProductID) >= 0 {
			continue
		}
		c.entries = append(c.entries, e)
	}
	return c
}

func (c Cart) index(id string) int {
	return slices.IndexFunc(c.entries, func(e Entry) bool { return e.ProductID == id })
}

// Add puts p in the cart. With override the quantity replaces the stored
// one, otherwise it is added to it (negative values decrement). A result
// below 1 removes the entry. Stock is not checked.
func (c Cart) Add(p models.Product, qty int, override bool) Cart {
	out := Cart{entries: slices.Clone(c.entries)}

	key := p.Key()
	i := out.index(key)
	if i < 0 {
		out.entries = append(out.entries, Entry{ProductID: key, Price: p.Price.String()})
		i = len(out.entries) - 1
	}

	if override {
		out.entries[i].Quantity = qty
	} else {
		out.entries[i].Quantity += qty
	}

	if out.entries[i].Quantity < 1 {
		out.entries = slices.Delete(out.entries, i, i+1)
	}
	return out
}

// Remove drops p's entry if present.
func (c Cart) Remove(p models.Product) Cart { return c.RemoveByID(p.Key()) }

// RemoveByID drops the entry for id if present. The product does not have
// to exist any more.
func (c Cart) RemoveByID(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	return Cart{entries: slices.Delete(slices.Clone(c.entries), i, i+1)}
}

// Has reports whether id is in the cart.
func (c Cart) Has(id string) bool { return c.index(id) >= 0 }

// Get returns the entry for id.
func (c Cart) Get(id string) (Entry, bool) {
	if i := c.index(id); i >= 0 {
		return c.entries[i], true
	}
	return Entry{}, false
}

// TotalQuantity sums stored quantities, including entries whose product is
// gone or out of stock.
func (c Cart) TotalQuantity() int {
	total := 0
	for _, e := range c.entries {
		total += e.Quantity
	}
	return total
}

// Len is the number of distinct products in the cart.
func (c Cart) Len() int { return len(c.entries) }

// Entries returns a copy of the stored rows in insertion order.
func (c Cart) Entries() []Entry { return slices.Clone(c.entries) }
