package ctx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	appctx "github.com/gamevault/storefront/pkg/ctx"
	"github.com/gamevault/storefront/pkg/middleware"
)

func run(req *http.Request, h appctx.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	appctx.Wrap(h)(rec, req)
	return rec
}

func TestSuccessEnvelope(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.Success(map[string]any{"id": 1})
		assert.Equal(t, http.StatusOK, c.WrittenStatus())
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"data":{"id":1}}`, rec.Body.String())
}

func TestBindJSONValid(t *testing.T) {
	body := `{"name":"Tekken 8","email":"player@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	rec := run(req, func(c *appctx.Context) {
		var input struct {
			Name  string `json:"name"  validate:"required"`
			Email string `json:"email" validate:"required,email"`
		}
		if assert.True(t, c.BindJSON(&input)) {
			assert.Equal(t, "Tekken 8", input.Name)
			c.NoContent()
		}
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBindJSONFailures(t *testing.T) {
	type input struct {
		Name string `json:"name" validate:"required"`
	}
	cases := map[string]int{
		`{"name":""}`:            http.StatusUnprocessableEntity,
		`{"name":"x","extra":1}`: http.StatusBadRequest,
		`{"name":`:               http.StatusBadRequest,
		``:                       http.StatusBadRequest,
	}
	for body, want := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		rec := run(req, func(c *appctx.Context) {
			var in input
			assert.False(t, c.BindJSON(&in))
		})
		assert.Equal(t, want, rec.Code, body)
	}
}

func TestParamUint(t *testing.T) {
	r := chi.NewRouter()
	var got uint
	var ok bool
	r.Get("/products/{id}", appctx.Wrap(func(c *appctx.Context) {
		got, ok = c.ParamUint("id")
		c.NoContent()
	}))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/12", nil))
	assert.True(t, ok)
	assert.Equal(t, uint(12), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/products/abc", nil))
	assert.False(t, ok)
}

func TestUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), 9, "user"))

	run(req, func(c *appctx.Context) {
		id, ok := c.UserID()
		assert.True(t, ok)
		assert.Equal(t, uint(9), id)
		assert.False(t, c.Session().Changed())
	})
}

func TestErrorHelpers(t *testing.T) {
	rec := run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.NotFound("")
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Not found")

	rec = run(httptest.NewRequest(http.MethodGet, "/", nil), func(c *appctx.Context) {
		c.ServerError(assert.AnError)
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}
