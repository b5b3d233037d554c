package kernel_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/internal/kernel"
	"github.com/gamevault/storefront/internal/testutil"
	"github.com/gamevault/storefront/pkg/auth"
	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/middleware"
	"github.com/gamevault/storefront/pkg/storage"
)

type envelope struct {
	Status  int               `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type client struct {
	t      *testing.T
	base   string
	http   *http.Client
	bearer string
}

func (c *client) do(method, path string, body any) (int, envelope) {
	c.t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, rdr)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

func (c *client) send(req *http.Request) (int, envelope) {
	c.t.Helper()
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp.StatusCode, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

type harness struct {
	db     *gorm.DB
	server *httptest.Server
}

func newHarness(t *testing.T) harness {
	t.Helper()
	db := testutil.NewDB(t)
	disk, err := storage.NewLocal(t.TempDir(), "/storage")
	require.NoError(t, err)

	k := kernel.New(kernel.Deps{
		DB:          db,
		Cache:       cache.NewMemoryStore(),
		Images:      disk,
		ShippingFee: 3000,
		Limiter:     middleware.NewLimiter(10000, time.Minute),
	})
	srv := httptest.NewServer(k.Handler())
	t.Cleanup(srv.Close)
	return harness{db: db, server: srv}
}

func (h harness) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: h.server.URL, http: &http.Client{Jar: jar}}
}

type cartView struct {
	Lines []struct {
		ProductID  string `json:"product_id"`
		Quantity   int    `json:"quantity"`
		TotalPrice string `json:"total_price"`
		Status     string `json:"status"`
		Product    *struct {
			Name string `json:"name"`
		} `json:"product"`
	} `json:"lines"`
	TotalQuantity int     `json:"total_quantity"`
	ProductsTotal string  `json:"products_total"`
	Shipping      string  `json:"shipping"`
	GrandTotal    string  `json:"grand_total"`
	HasIssues     bool    `json:"has_issues"`
	Clamped       bool    `json:"clamped"`
	Removed       bool    `json:"removed"`
	Warning       *string `json:"warning"`
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	x := testutil.CreateProduct(t, h.db, testutil.WithPrice(5000), testutil.WithStock(3))
	y := testutil.CreateProduct(t, h.db, testutil.WithPrice(2000), testutil.WithStock(10))

	status, _ := c.do(http.MethodPost, "/api/cart/add/"+x.Key(), nil)
	require.Equal(t, http.StatusOK, status)
	c.do(http.MethodPost, "/api/cart/add/"+x.Key(), nil)
	status, env := c.do(http.MethodPost, "/api/cart/add/"+y.Key(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(3), decode[map[string]any](t, env)["count"])

	status, env = c.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	view := decode[cartView](t, env)
	require.Len(t, view.Lines, 2)
	assert.Equal(t, x.Key(), view.Lines[0].ProductID)
	assert.Equal(t, 2, view.Lines[0].Quantity)
	assert.Equal(t, "12000", view.ProductsTotal)
	assert.Equal(t, "3000", view.Shipping)
	assert.Equal(t, "15000", view.GrandTotal)
	assert.False(t, view.HasIssues)

	// Over stock: clamped to 3 with a warning.
	status, env = c.do(http.MethodPost, "/api/cart/update/"+x.Key(), map[string]int{"quantity": 7})
	require.Equal(t, http.StatusOK, status)
	view = decode[cartView](t, env)
	assert.True(t, view.Clamped)
	require.NotNil(t, view.Warning)
	assert.Equal(t, 3, view.Lines[0].Quantity)

	// The product disappears from the catalog.
	require.NoError(t, h.db.Select("Genres").Delete(&x).Error)
	status, env = c.do(http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, status)
	view = decode[cartView](t, env)
	assert.Equal(t, "missing", view.Lines[0].Status)
	assert.Nil(t, view.Lines[0].Product)
	assert.Equal(t, "0", view.Lines[0].TotalPrice)
	assert.True(t, view.HasIssues)
	assert.Equal(t, 4, view.TotalQuantity)

	status, _ = c.do(http.MethodPost, "/api/cart/remove/"+x.Key(), nil)
	assert.Equal(t, http.StatusNotFound, status, "remove needs a live product")

	status, env = c.do(http.MethodPost, "/api/cart/remove-id/"+x.Key(), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), decode[map[string]any](t, env)["count"])

	status, _ = c.do(http.MethodDelete, "/api/cart", nil)
	assert.Equal(t, http.StatusNoContent, status)
	_, env = c.do(http.MethodGet, "/api/cart/count", nil)
	assert.Zero(t, decode[map[string]any](t, env)["count"])
}

func TestCartUpdateWithFormValue(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	x := testutil.CreateProduct(t, h.db, testutil.WithStock(5))
	c.do(http.MethodPost, "/api/cart/add/"+x.Key(), nil)

	req, err := http.NewRequest(http.MethodPost, c.base+"/api/cart/update/"+x.Key(), strings.NewReader("quantity=0"))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, env := c.send(req)
	require.Equal(t, http.StatusOK, status)
	view := decode[cartView](t, env)
	assert.True(t, view.Removed)
	assert.Empty(t, view.Lines)
}

func TestCartAddRefusesOutOfStock(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	x := testutil.CreateProduct(t, h.db, testutil.WithFormat(models.FormatDigital), testutil.WithStock(0))

	status, _ := c.do(http.MethodPost, "/api/cart/add/"+x.Key(), nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = c.do(http.MethodPost, "/api/cart/add/999", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCartsAreIsolatedPerSession(t *testing.T) {
	h := newHarness(t)
	x := testutil.CreateProduct(t, h.db)

	a, b := h.client(t), h.client(t)
	a.do(http.MethodPost, "/api/cart/add/"+x.Key(), nil)

	_, env := b.do(http.MethodGet, "/api/cart/count", nil)
	assert.Zero(t, decode[map[string]any](t, env)["count"])
}

func TestCatalogEndpoints(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	rpg := testutil.CreateGenre(t, h.db, "RPG")
	testutil.CreateProduct(t, h.db, testutil.WithName("Elden Ring"), testutil.WithGenres(rpg), testutil.WithPrice(6000))
	testutil.CreateProduct(t, h.db, testutil.WithName("Astro Bot"), testutil.WithPrice(4000))

	status, env := c.do(http.MethodGet, "/api/products?q=elden&price_min=9000&price_max=5000", nil)
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Items []map[string]any `json:"items"`
		Meta  map[string]any   `json:"meta"`
	}](t, env)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Elden Ring", list.Items[0]["name"])
	assert.Equal(t, true, list.Meta["filtered"])

	status, _ = c.do(http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env = c.do(http.MethodGet, "/api/genres", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 1)
}

func TestAuthAndAdmin(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)

	status, env := c.do(http.MethodPost, "/api/register", map[string]string{
		"name": "Ada", "email": "ada@example.com", "password": "hunter2hunter2", "password_confirmation": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	status, _ = c.do(http.MethodPost, "/api/login", map[string]string{"email": "ada@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = c.do(http.MethodPost, "/api/login", map[string]string{"email": "ada@example.com", "password": "hunter2hunter2"})
	require.Equal(t, http.StatusOK, status)
	c.bearer = decode[map[string]any](t, env)["token"].(string)

	status, env = c.do(http.MethodGet, "/api/account", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", decode[map[string]any](t, env)["email"])

	status, _ = c.do(http.MethodGet, "/api/admin/products", nil)
	assert.Equal(t, http.StatusForbidden, status, "customers cannot manage products")

	admin := models.User{Name: "Root", Email: "root@example.com", Password: "x", Role: models.RoleAdmin}
	require.NoError(t, h.db.Create(&admin).Error)
	token, err := auth.GenerateToken(admin.ID, admin.Role)
	require.NoError(t, err)
	c.bearer = token

	input := map[string]any{
		"name": "Gran Turismo 7", "release_date": "2022-03-04", "platform": "PS5",
		"format": "PHYSICAL", "condition": "NEW", "price": "6999", "stock": 4,
	}
	status, env = c.do(http.MethodPost, "/api/admin/products", input)
	require.Equal(t, http.StatusCreated, status, env.Message)
	id := int(decode[map[string]any](t, env)["id"].(float64))

	status, env = c.do(http.MethodPost, "/api/admin/products", input)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "name")

	input["stock"] = 9
	status, env = c.do(http.MethodPut, "/api/admin/products/"+strconv.Itoa(id), input)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(9), decode[map[string]any](t, env)["stock"])

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a png"))
	require.NoError(t, mw.Close())
	req, err := http.NewRequest(http.MethodPost, c.base+"/api/admin/products/"+strconv.Itoa(id)+"/image", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	status, env = c.send(req)
	require.Equal(t, http.StatusOK, status, env.Message)
	imageURL := decode[map[string]any](t, env)["image_url"].(string)
	assert.True(t, strings.HasPrefix(imageURL, "/storage/products/"))

	resp, err := http.Get(c.base + imageURL)
	require.NoError(t, err)
	served, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "not really a png", string(served))

	status, _ = c.do(http.MethodDelete, "/api/admin/products/"+strconv.Itoa(id), nil)
	assert.Equal(t, http.StatusNoContent, status)

	c.bearer = ""
	status, _ = c.do(http.MethodGet, "/api/admin/products", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLogoutDropsCart(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)
	x := testutil.CreateProduct(t, h.db)
	c.do(http.MethodPost, "/api/cart/add/"+x.Key(), nil)

	status, _ := c.do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusNoContent, status)

	_, env := c.do(http.MethodGet, "/api/cart/count", nil)
	assert.Zero(t, decode[map[string]any](t, env)["count"])
}

func TestOperationalEndpoints(t *testing.T) {
	h := newHarness(t)
	c := h.client(t)

	status, _ := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err := http.Post(c.base+"/graphql", "application/json", strings.NewReader(`{"query":"{ genres { name } }"}`))
	require.NoError(t, err)
	var gql struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&gql))
	resp.Body.Close()
	assert.Contains(t, gql.Data, "genres")

	resp, err = http.Get(c.base + "/metrics")
	require.NoError(t, err)
	text, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(text), "storefront_http_requests_total")

	status, _ = c.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestRouteListingNeedsNoDatabase(t *testing.T) {
	routes := kernel.New(kernel.Deps{}).Router.Routes()
	names := map[string]bool{}
	for _, r := range routes {
		names[r.Name] = true
	}
	for _, want := range []string{"cart.add", "cart.update", "admin.products.store", "graphql.execute", "health"} {
		assert.True(t, names[want], want)
	}
}
