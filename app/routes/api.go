// Package routes maps the JSON API onto controllers.
package routes

import (
	"github.com/gamevault/storefront/app/controllers"
	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/ctx"
	"github.com/gamevault/storefront/pkg/middleware"
	"github.com/gamevault/storefront/pkg/rbac"
	"github.com/gamevault/storefront/pkg/router"
)

// PermManageProducts guards the admin inventory routes.
const PermManageProducts = "products.manage"

// Controllers are the handlers Register mounts.
type Controllers struct {
	Store *controllers.StoreController
	Cart  *controllers.CartController
	Admin *controllers.AdminProductController
	Auth  *controllers.AuthController
}

func init() {
	rbac.Grant(models.RoleAdmin, rbac.Wildcard)
}

// Register mounts every /api route on r.
func Register(r *router.Router, c Controllers) {
	api := r.Group("/api")

	api.Get("/products", "store.products", ctx.Wrap(c.Store.Products))
	api.Get("/products/{id}", "store.product", ctx.Wrap(c.Store.Product))
	api.Get("/genres", "store.genres", ctx.Wrap(c.Store.Genres))

	carts := api.Group("/cart")
	carts.Get("/", "cart.show", ctx.Wrap(c.Cart.Show))
	carts.Delete("/", "cart.clear", ctx.Wrap(c.Cart.Clear))
	carts.Get("/count", "cart.count", ctx.Wrap(c.Cart.Count))
	carts.Post("/add/{id}", "cart.add", ctx.Wrap(c.Cart.Add))
	carts.Post("/remove/{id}", "cart.remove", ctx.Wrap(c.Cart.Remove))
	carts.Post("/remove-id/{id}", "cart.remove_id", ctx.Wrap(c.Cart.RemoveByID))
	carts.Post("/update/{id}", "cart.update", ctx.Wrap(c.Cart.Update))

	api.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	api.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))
	api.Post("/logout", "auth.logout", ctx.Wrap(c.Auth.Logout))
	api.Get("/account", "auth.account", ctx.Wrap(c.Auth.Account), middleware.Auth)

	admin := api.Group("/admin", middleware.Auth, rbac.Allow(PermManageProducts))
	admin.Get("/products", "admin.products.index", ctx.Wrap(c.Admin.Index))
	admin.Post("/products", "admin.products.store", ctx.Wrap(c.Admin.Store))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(c.Admin.Update))
	admin.Delete("/products/{id}", "admin.products.destroy", ctx.Wrap(c.Admin.Destroy))
	admin.Post("/products/{id}/image", "admin.products.image", ctx.Wrap(c.Admin.UploadImage))
}
