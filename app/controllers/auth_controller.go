package controllers

import (
	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/app/resources"
	"github.com/gamevault/storefront/pkg/ctx"
	"github.com/gamevault/storefront/pkg/resource"
)

// SessionUserKey holds the signed-in user's id in the session.
const SessionUserKey = "user_id"

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

func (a *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.DecodeJSON(&in) {
		return
	}
	user, err := a.auth.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(resource.One(user, resources.User))
}

// Login issues a JWT and also signs the browser session in.
func (a *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.DecodeJSON(&in) {
		return
	}
	token, user, err := a.auth.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Session().Set(SessionUserKey, user.ID)
	c.Success(resource.Map{"token": token, "user": resources.User(user)})
}

// Logout ends the session, cart included.
func (a *AuthController) Logout(c *ctx.Context) {
	c.Session().Invalidate()
	c.NoContent()
}

// Account returns the bearer token's user.
func (a *AuthController) Account(c *ctx.Context) {
	id, ok := c.UserID()
	if !ok {
		c.Unauthorized("Unauthenticated")
		return
	}
	user, err := a.auth.Account(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(resource.One(user, resources.User))
}
