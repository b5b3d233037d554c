// Package ctx gives handlers a single *Context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (c *CartController) Count(x *ctx.Context) {
//	    x.Success(map[string]int{"count": n})
//	}
//
//	router.Get("/api/cart/count", "cart.count", ctx.Wrap(cart.Count))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/gamevault/storefront/pkg/bind"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/middleware"
	"github.com/gamevault/storefront/pkg/response"
	"github.com/gamevault/storefront/pkg/session"
	"github.com/gamevault/storefront/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps a request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W = w
	c.R = r
	c.status = 0
	return c
}

func release(c *Context) {
	c.W = nil
	c.R = nil
	pool.Put(c)
}

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a path parameter as an unsigned id.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value, or "".
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// Session returns the session loaded by session.Middleware.
func (c *Context) Session() *session.Session { return session.FromCtx(c.R) }

// UserID returns the id stored by middleware.Auth.
func (c *Context) UserID() (uint, bool) { return middleware.UserIDFromCtx(c.R) }

// BindJSON decodes and validates the body into dest. On failure it writes a
// 400 or 422 and returns false:
//
//	var input RegisterInput
//	if !c.BindJSON(&input) {
//	    return
//	}
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.W, c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// DecodeJSON decodes the body into dest and leaves validation to the caller.
// On failure it writes a 400 and returns false.
func (c *Context) DecodeJSON(dest any) bool {
	if err := bind.Decode(c.W, c.R, dest); err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// JSON writes v as the raw response body.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.Write(c.W, code, response.Envelope{Status: code, Data: v})
}

func (c *Context) Success(data any) {
	c.status = http.StatusOK
	response.Success(c.W, data)
}

func (c *Context) Created(data any) {
	c.status = http.StatusCreated
	response.Created(c.W, data)
}

// Error sends an error envelope with message.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ServerError logs err and sends a generic 500.
func (c *Context) ServerError(err error) {
	c.Logger().Error("request failed", "error", err, "path", c.R.URL.Path)
	c.Error(http.StatusInternalServerError, "Internal Server Error")
}

// ValidationError sends a 422 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusUnprocessableEntity
	response.ValidationError(c.W, errs)
}

func (c *Context) Unauthorized(message string) { c.Error(http.StatusUnauthorized, message) }

func (c *Context) Forbidden() { c.Error(http.StatusForbidden, "Forbidden") }

// NotFound sends a 404, with "Not found" when message is empty.
func (c *Context) NotFound(message string) {
	if message == "" {
		message = "Not found"
	}
	c.Error(http.StatusNotFound, message)
}

// NoContent writes 204 with no body.
func (c *Context) NoContent() {
	c.status = http.StatusNoContent
	c.W.WriteHeader(http.StatusNoContent)
}

// WrittenStatus returns the status written so far, or 0.
func (c *Context) WrittenStatus() int { return c.status }
