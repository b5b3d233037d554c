// Package orm is a thin chainable layer over gorm that maps missing rows to
// ErrNotFound, times queries and can read through a cache.Store.
//
//	var genres []models.Genre
//	err := orm.New(db).WithContext(ctx).Order("name").
//	    Cache(ctx, cache.Default(), "genres:all", time.Hour, &genres)
package orm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/database"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/metrics"
)

// ErrNotFound is returned by First when no row matches.
var ErrNotFound = errors.New("orm: record not found")

// Query wraps a *gorm.DB. Every chain method returns a new Query.
type Query struct {
	db *gorm.DB
}

// New starts a query on db.
func New(db *gorm.DB) *Query { return &Query{db: db} }

// DB starts a query on the connection opened by database.Connect.
func DB() *Query { return New(database.DB) }

// Raw exposes the underlying handle.
func (q *Query) Raw() *gorm.DB { return q.db }

func (q *Query) WithContext(ctx context.Context) *Query {
	return &Query{db: q.db.WithContext(ctx)}
}

func (q *Query) Model(v any) *Query { return &Query{db: q.db.Model(v)} }

func (q *Query) Where(query any, args ...any) *Query {
	return &Query{db: q.db.Where(query, args...)}
}

func (q *Query) Order(v any) *Query { return &Query{db: q.db.Order(v)} }

func (q *Query) Omit(columns ...string) *Query { return &Query{db: q.db.Omit(columns...)} }

func (q *Query) Preload(assoc string, args ...any) *Query {
	return &Query{db: q.db.Preload(assoc, args...)}
}

func (q *Query) Scopes(fns ...func(*gorm.DB) *gorm.DB) *Query {
	return &Query{db: q.db.Scopes(fns...)}
}

// Get loads every matching row into dest.
func (q *Query) Get(dest any) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	return q.db.Find(dest).Error
}

// First loads the first row by primary key.
func (q *Query) First(dest any, conds ...any) error {
	defer metrics.ObserveDBQuery("select", time.Now())
	err := q.db.First(dest, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (q *Query) Count() (int64, error) {
	defer metrics.ObserveDBQuery("count", time.Now())
	var n int64
	err := q.db.Count(&n).Error
	return n, err
}

func (q *Query) Create(v any) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return q.db.Create(v).Error
}

func (q *Query) Save(v any) error {
	defer metrics.ObserveDBQuery("update", time.Now())
	return q.db.Save(v).Error
}

func (q *Query) Delete(v any, conds ...any) error {
	defer metrics.ObserveDBQuery("delete", time.Now())
	return q.db.Delete(v, conds...).Error
}

// Transaction runs fn inside a database transaction. Use only the Query fn
// receives inside it.
func (q *Query) Transaction(fn func(tx *Query) error) error {
	return q.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Query{db: tx})
	})
}

// Cache serves dest from store under key, loading it with Get and storing
// it for ttl on a miss. Cache failures fall through to the database.
func (q *Query) Cache(ctx context.Context, store cache.Store, key string, ttl time.Duration, dest any) error {
	if store != nil {
		hit, err := store.Get(ctx, key, dest)
		if err != nil {
			logger.WithCtx(ctx).Warn("orm: cache read failed", "key", key, "error", err)
		}
		if hit {
			return nil
		}
	}

	if err := q.Get(dest); err != nil {
		return fmt.Errorf("orm: load %s: %w", key, err)
	}

	if store != nil {
		if err := store.Set(ctx, key, dest, ttl); err != nil {
			logger.WithCtx(ctx).Warn("orm: cache write failed", "key", key, "error", err)
		}
	}
	return nil
}
