package controllers

import (
	"errors"
	"net/http"

	"github.com/gamevault/storefront/app/cart"
	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/ctx"
)

// fail maps service errors onto HTTP responses. Anything unrecognised is
// logged and hidden behind a 500.
func fail(c *ctx.Context, err error) {
	var verrs models.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.ValidationError(verrs)
	case errors.Is(err, models.ErrProductNotFound):
		c.NotFound("Product not found")
	case errors.Is(err, models.ErrUserNotFound):
		c.NotFound("User not found")
	case errors.Is(err, models.ErrDuplicateProduct):
		c.ValidationError(map[string]string{"name": models.ErrDuplicateProduct.Error()})
	case errors.Is(err, models.ErrEmailTaken):
		c.ValidationError(map[string]string{"email": models.ErrEmailTaken.Error()})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.Unauthorized(models.ErrInvalidCredentials.Error())
	case errors.Is(err, cart.ErrOutOfStock):
		c.Error(http.StatusConflict, "This product is out of stock")
	default:
		c.ServerError(err)
	}
}

// productID reads the {id} path parameter, answering 404 when it is not a
// valid id.
func productID(c *ctx.Context) (uint, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.NotFound("Product not found")
	}
	return id, ok
}
