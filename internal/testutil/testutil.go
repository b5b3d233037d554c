// Package testutil builds migrated sqlite databases and catalog fixtures for
// tests.
package testutil

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	_ "github.com/gamevault/storefront/database/migrations"
	"github.com/gamevault/storefront/pkg/database"
	"github.com/gamevault/storefront/pkg/migration"
)

// NewDB returns a migrated on-disk sqlite database that is closed when the
// test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "storefront.db") + "?_foreign_keys=on"
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	require.NoError(t, migration.New(db).WithOutput(io.Discard).Run(context.Background()))
	return db
}

var seq atomic.Int64

// ProductOption customises a fixture product.
type ProductOption func(*models.Product)

func WithName(name string) ProductOption { return func(p *models.Product) { p.Name = name } }
func WithPrice(price int64) ProductOption {
	return func(p *models.Product) { p.Price = decimal.NewFromInt(price) }
}
func WithStock(n int) ProductOption { return func(p *models.Product) { p.Stock = n } }
func WithPlatform(pl models.Platform) ProductOption {
	return func(p *models.Product) { p.Platform = pl }
}
func WithFormat(f models.Format) ProductOption { return func(p *models.Product) { p.Format = f } }
func WithDescription(d string) ProductOption {
	return func(p *models.Product) { p.Description = d }
}
func WithGenres(genres ...models.Genre) ProductOption {
	return func(p *models.Product) { p.Genres = genres }
}

// WithCreatedAt pins the creation time so ordering is deterministic.
func WithCreatedAt(ts time.Time) ProductOption {
	return func(p *models.Product) { p.CreatedAt = ts }
}

// NewProduct returns an unsaved valid product with a unique name.
func NewProduct(opts ...ProductOption) models.Product {
	n := seq.Add(1)
	p := models.Product{
		Name:        fmt.Sprintf("Game %d", n),
		ReleaseDate: time.Date(2020, 11, 12, 0, 0, 0, 0, time.UTC),
		Platform:    models.PlatformPS5,
		Format:      models.FormatPhysical,
		Condition:   models.ConditionNew,
		Description: "A game.",
		Price:       decimal.NewFromInt(5999),
		Stock:       10,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// CreateProduct inserts a fixture product, genres included.
func CreateProduct(t testing.TB, db *gorm.DB, opts ...ProductOption) models.Product {
	t.Helper()
	p := NewProduct(opts...)
	require.NoError(t, db.Create(&p).Error)
	return p
}

// CreateGenre inserts a genre.
func CreateGenre(t testing.TB, db *gorm.DB, name string) models.Genre {
	t.Helper()
	g := models.Genre{Name: name}
	require.NoError(t, db.Create(&g).Error)
	return g
}
