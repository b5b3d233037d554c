package controllers

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gamevault/storefront/app/cart"
	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/app/resources"
	"github.com/gamevault/storefront/pkg/ctx"
	"github.com/gamevault/storefront/pkg/resource"
)

// CartController edits the session cart. Every handler loads the cart once
// and writes it back at most once.
type CartController struct {
	cart    *cart.Service
	catalog *services.CatalogService
	summary resource.Transformer[cart.Summary]
}

func NewCartController(carts *cart.Service, catalog *services.CatalogService) *CartController {
	return &CartController{cart: carts, catalog: catalog, summary: resources.Summary(catalog.ImageURL)}
}

// Show reconciles the cart against the live catalog.
func (cc *CartController) Show(c *ctx.Context) {
	cc.respondSummary(c, nil)
}

// Add puts one unit of a product in the cart.
func (cc *CartController) Add(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := cc.catalog.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	updated, err := cc.cart.AddOne(c.Context(), c.Session(), p)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Map{"count": updated.TotalQuantity(), "message": fmt.Sprintf("%s added to your cart.", p.Name)})
}

// Remove drops a product that still exists in the catalog.
func (cc *CartController) Remove(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := cc.catalog.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	updated := cc.cart.Remove(c.Context(), c.Session(), p)
	c.Success(resource.Map{"count": updated.TotalQuantity()})
}

// RemoveByID drops a cart entry without looking the product up, so entries
// for deleted products can be cleared.
func (cc *CartController) RemoveByID(c *ctx.Context) {
	updated := cc.cart.RemoveByID(c.Context(), c.Session(), c.Param("id"))
	c.Success(resource.Map{"count": updated.TotalQuantity()})
}

// Update sets a product's quantity from a "quantity" form field or JSON
// body. Values below 1 remove the line; values above stock are lowered.
func (cc *CartController) Update(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := cc.catalog.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}

	qty, ok := requestedQuantity(c)
	if !ok {
		return
	}
	res := cc.cart.Update(c.Context(), c.Session(), p, qty)

	var warning any
	if res.Clamped {
		warning = fmt.Sprintf("Only %d of %s in stock; quantity adjusted.", max(p.Stock, 0), p.Name)
	}
	cc.respondSummary(c, resource.Map{
		"quantity": res.Quantity,
		"removed":  res.Removed,
		"clamped":  res.Clamped,
		"warning":  warning,
	})
}

// Clear empties the cart.
func (cc *CartController) Clear(c *ctx.Context) {
	cc.cart.Clear(c.Session())
	c.NoContent()
}

// Count returns the raw item count shown in the header badge.
func (cc *CartController) Count(c *ctx.Context) {
	c.Success(resource.Map{"count": cc.cart.Count(c.Context(), c.Session())})
}

func (cc *CartController) respondSummary(c *ctx.Context, extra resource.Map) {
	summary, err := cc.cart.Summary(c.Context(), c.Session())
	if err != nil {
		fail(c, err)
		return
	}
	out := cc.summary(summary)
	for k, v := range extra {
		out[k] = v
	}
	c.Success(out)
}

func requestedQuantity(c *ctx.Context) (int, bool) {
	if !strings.HasPrefix(c.R.Header.Get("Content-Type"), "application/json") {
		return cart.ParseQuantity(c.R.FormValue("quantity"), 1), true
	}
	var body struct {
		Quantity json.Number `json:"quantity"`
	}
	if !c.DecodeJSON(&body) {
		return 0, false
	}
	return cart.ParseQuantity(body.Quantity.String(), 1), true
}
