package controllers

import (
	"github.com/gamevault/storefront/app/catalog"
	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/app/resources"
	"github.com/gamevault/storefront/pkg/ctx"
	"github.com/gamevault/storefront/pkg/resource"
)

// StoreController serves the public catalog.
type StoreController struct {
	catalog *services.CatalogService
}

func NewStoreController(catalog *services.CatalogService) *StoreController {
	return &StoreController{catalog: catalog}
}

// Products lists the catalog filtered by the query string:
// ?q=&platform=&format=&genres=1,2&price_min=&price_max=
func (s *StoreController) Products(c *ctx.Context) {
	criteria := catalog.ParseCriteria(c.R.URL.Query())
	products, err := s.catalog.List(c.Context(), criteria)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.WithMeta(
		resource.Collection(products, resources.Product(s.catalog.ImageURL)),
		resource.Map{"count": len(products), "filtered": !criteria.IsZero()},
	))
}

func (s *StoreController) Product(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := s.catalog.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(p, resources.Product(s.catalog.ImageURL)))
}

func (s *StoreController) Genres(c *ctx.Context) {
	genres, err := s.catalog.Genres(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Collection(genres, resources.Genre))
}
