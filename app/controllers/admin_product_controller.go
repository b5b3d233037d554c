package controllers

import (
	"errors"
	"net/http"

	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/app/resources"
	"github.com/gamevault/storefront/pkg/ctx"
	"github.com/gamevault/storefront/pkg/resource"
)

// MaxImageBytes caps an uploaded product image.
const MaxImageBytes = 5 << 20

// AdminProductController manages the inventory. Routes are guarded by
// middleware.Auth and rbac.
type AdminProductController struct {
	catalog *services.CatalogService
}

func NewAdminProductController(catalog *services.CatalogService) *AdminProductController {
	return &AdminProductController{catalog: catalog}
}

func (a *AdminProductController) Index(c *ctx.Context) {
	products, err := a.catalog.AdminList(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.Collection(products, resources.Product(a.catalog.ImageURL)))
}

func (a *AdminProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.DecodeJSON(&in) {
		return
	}
	p, err := a.catalog.Create(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resource.One(p, resources.Product(a.catalog.ImageURL)))
}

func (a *AdminProductController) Update(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var in services.ProductInput
	if !c.DecodeJSON(&in) {
		return
	}
	p, err := a.catalog.Update(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(p, resources.Product(a.catalog.ImageURL)))
}

func (a *AdminProductController) Destroy(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := a.catalog.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.NoContent()
}

// UploadImage accepts a multipart "image" file.
func (a *AdminProductController) UploadImage(c *ctx.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	c.R.Body = http.MaxBytesReader(c.W, c.R.Body, MaxImageBytes)
	file, header, err := c.R.FormFile("image")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.ValidationError(map[string]string{"image": "The image must not be larger than 5 MB."})
			return
		}
		c.ValidationError(map[string]string{"image": "The image field is required."})
		return
	}
	defer file.Close()

	p, err := a.catalog.SetImage(c.Context(), id, header.Filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(p, resources.Product(a.catalog.ImageURL)))
}
