package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/orm"
)

const (
	genresCacheKey = "storefront:genres:all"
	genresCacheTTL = time.Hour
)

// GenreRepository reads genres, caching the full list.
type GenreRepository struct {
	db    *gorm.DB
	store cache.Store
}

// NewGenreRepository caches in store; nil disables caching.
func NewGenreRepository(db *gorm.DB, store cache.Store) *GenreRepository {
	return &GenreRepository{db: db, store: store}
}

// All returns every genre ordered by name.
func (r *GenreRepository) All(ctx context.Context) ([]models.Genre, error) {
	var genres []models.Genre
	err := orm.New(r.db).WithContext(ctx).Model(&models.Genre{}).Order("name").
		Cache(ctx, r.store, genresCacheKey, genresCacheTTL, &genres)
	if err != nil {
		return nil, fmt.Errorf("repositories: list genres: %w", err)
	}
	return genres, nil
}

// FirstOrCreate returns the genre called name, inserting it if needed.
func (r *GenreRepository) FirstOrCreate(ctx context.Context, name string) (models.Genre, error) {
	g := models.Genre{Name: name}
	err := r.db.WithContext(ctx).Where(models.Genre{Name: name}).FirstOrCreate(&g).Error
	if err != nil {
		return g, fmt.Errorf("repositories: upsert genre %q: %w", name, err)
	}
	r.forget(ctx)
	return g, nil
}

// Create inserts a genre. A duplicate name returns gorm.ErrDuplicatedKey.
func (r *GenreRepository) Create(ctx context.Context, g *models.Genre) error {
	if err := orm.New(r.db).WithContext(ctx).Create(g); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}
		return fmt.Errorf("repositories: create genre: %w", err)
	}
	r.forget(ctx)
	return nil
}

func (r *GenreRepository) forget(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.Del(ctx, genresCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("repositories: genre cache invalidation failed", "error", err)
	}
}
