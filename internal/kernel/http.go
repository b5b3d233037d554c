// Package kernel assembles the storefront's HTTP handler: the global
// middleware stack, the JSON API, GraphQL, metrics and health endpoints.
package kernel

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/cart"
	"github.com/gamevault/storefront/app/controllers"
	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/app/routes"
	"github.com/gamevault/storefront/app/schema"
	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/graphql"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/metrics"
	"github.com/gamevault/storefront/pkg/middleware"
	"github.com/gamevault/storefront/pkg/reqid"
	"github.com/gamevault/storefront/pkg/response"
	"github.com/gamevault/storefront/pkg/router"
	"github.com/gamevault/storefront/pkg/session"
	"github.com/gamevault/storefront/pkg/storage"
)

// Deps are the kernel's collaborators. Only DB is required to serve
// requests; route listing works with the zero value.
type Deps struct {
	DB *gorm.DB
	// Cache backs sessions and the genre list. Defaults to cache.Default().
	Cache cache.Store
	// Images stores product images. Nil disables uploads.
	Images storage.Disk
	// Notifier hears about committed catalog writes.
	Notifier    services.CatalogNotifier
	ShippingFee int64
	// Limiter defaults to 200 requests per minute per peer address. The
	// caller owns its Run loop; without one, expired buckets are still
	// evicted from Allow.
	Limiter *middleware.Limiter
	// Session overrides session.DefaultOptions when non-nil.
	Session *session.Options
}

// Kernel owns the router and the services behind it.
type Kernel struct {
	Router  *router.Router
	Catalog *services.CatalogService
	Auth    *services.AuthService
	Cart    *cart.Service

	db *gorm.DB
}

func New(d Deps) *Kernel {
	if d.Cache == nil {
		d.Cache = cache.Default()
	}
	if d.Limiter == nil {
		d.Limiter = middleware.NewLimiter(200, time.Minute)
	}
	sessOpts := session.DefaultOptions()
	if d.Session != nil {
		sessOpts = *d.Session
	}
	if sessOpts.Store == nil {
		sessOpts.Store = d.Cache
	}

	products := repositories.NewProductRepository(d.DB)
	k := &Kernel{
		Catalog: services.NewCatalogService(
			products,
			repositories.NewGenreRepository(d.DB, d.Cache),
			services.WithNotifier(d.Notifier),
			services.WithImages(d.Images),
		),
		Auth: services.NewAuthService(repositories.NewUserRepository(d.DB)),
		Cart: cart.NewService(cart.NewEngine(products), d.ShippingFee),
		db:   d.DB,
	}

	r := router.New()

	// Outermost first. Recovery sits inside reqid so panics are logged
	// with the request id.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(session.Middleware(sessOpts))
	r.Use(middleware.CORS(middleware.DefaultCORSOptions()))
	r.Use(d.Limiter.Middleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", k.health)

	routes.Register(r, routes.Controllers{
		Store: controllers.NewStoreController(k.Catalog),
		Cart:  controllers.NewCartController(k.Cart, k.Catalog),
		Admin: controllers.NewAdminProductController(k.Catalog),
		Auth:  controllers.NewAuthController(k.Auth),
	})

	if gqlSchema, err := graphql.NewSchema(schema.Query(k.Catalog)); err != nil {
		logger.Error("graphql schema invalid, /graphql disabled", "error", err)
	} else {
		h := graphql.Handler(gqlSchema)
		r.Get("/graphql", "graphql.query", h)
		r.Post("/graphql", "graphql.execute", h)
	}

	if local, ok := d.Images.(*storage.Local); ok {
		r.Handle("/storage/*", "storage", http.StripPrefix("/storage/", http.FileServer(http.Dir(local.Root()))))
	}

	k.Router = r
	return k
}

// Handler is the root http.Handler.
func (k *Kernel) Handler() http.Handler { return k.Router.Handler() }

func (k *Kernel) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := Ping(ctx, k.db); err != nil {
		logger.WithCtx(r.Context()).Warn("health check failed", "error", err)
		response.Error(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.Success(w, map[string]string{"status": "ok"})
}

var errNoDatabase = errors.New("kernel: no database connection")

// Ping checks that db answers.
func Ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errNoDatabase
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
