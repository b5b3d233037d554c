// Package server boots the storefront's dependencies and runs the HTTP and
// gRPC listeners until the context is cancelled.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/mirror"
	"github.com/gamevault/storefront/config"
	"github.com/gamevault/storefront/internal/kernel"
	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/database"
	"github.com/gamevault/storefront/pkg/grpc"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/middleware"
	"github.com/gamevault/storefront/pkg/storage"
	"github.com/gamevault/storefront/pkg/workerpool"
)

const shutdownTimeout = 15 * time.Second

// App holds the connections shared by the server and CLI commands.
type App struct {
	DB     *gorm.DB
	Syncer *mirror.Syncer

	mongo *mirror.MongoStore
	pool  *workerpool.Pool
}

// Boot loads config and connects the database, cache, storage and mirror.
// Redis and the mirror are optional: without them the app falls back to
// the in-memory cache and a disabled mirror.
func Boot(ctx context.Context) (*App, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("server: config: %w", err)
	}
	logger.Setup(config.AppEnv(), os.Stdout)

	if err := database.Connect(); err != nil {
		return nil, err
	}
	a := &App{DB: database.DB}

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, using in-memory cache", "error", err)
	}
	if err := storage.Connect(ctx); err != nil {
		a.Close()
		return nil, err
	}

	var store mirror.Store
	if uri := config.MirrorURI(); uri != "" {
		m, err := mirror.Connect(ctx, uri, config.MirrorDatabase(), config.MirrorCollection())
		if err != nil {
			logger.Error("mirror unavailable, sync disabled", "error", err)
		} else {
			a.mongo = m
			store = m
		}
	}
	a.pool = workerpool.New("mirror", config.MirrorWorkers())
	a.Syncer = mirror.NewSyncer(store, a.pool, storage.Default(), config.MirrorTimeout())
	return a, nil
}

// Close drains mirror jobs and releases every connection.
func (a *App) Close() {
	if a.pool != nil {
		a.pool.Shutdown()
	}
	if a.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.mongo.Close(ctx); err != nil {
			logger.Warn("mirror: disconnect", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warn("cache: close", "error", err)
	}
	if err := database.Close(a.DB); err != nil {
		logger.Warn("database: close", "error", err)
	}
}

// Kernel builds the HTTP kernel over a's connections.
func (a *App) Kernel(limiter *middleware.Limiter) *kernel.Kernel {
	return kernel.New(kernel.Deps{
		DB:          a.DB,
		Cache:       cache.Default(),
		Images:      storage.Default(),
		Notifier:    a.Syncer,
		ShippingFee: config.ShippingFee(),
		Limiter:     limiter,
	})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context) error {
	a, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	proxies, err := middleware.ParseTrustedProxies(config.TrustedProxies())
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}
	limiter := middleware.NewLimiter(200, time.Minute).TrustProxies(proxies)
	go limiter.Run(ctx)

	var rpc *grpc.Server
	if port := config.GRPCPort(); port != "" {
		rpc, err = grpc.Start(port)
		if err != nil {
			return err
		}
		defer rpc.Stop()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		rpc.SetServing(grpc.ServiceCatalog, kernel.Ping(pingCtx, a.DB) == nil)
		cancel()
		rpc.SetServing(grpc.ServiceMirror, a.Syncer.Enabled())
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           a.Kernel(limiter).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
