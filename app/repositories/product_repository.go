// Package repositories reads and writes storefront rows through pkg/orm.
package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/catalog"
	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/collection"
	"github.com/gamevault/storefront/pkg/orm"
)

// ProductRepository persists products and their genre links.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) query(ctx context.Context) *orm.Query {
	return orm.New(r.db).WithContext(ctx)
}

// FindByIDs loads the products with the given ids in a single query. Ids
// with no row are simply absent from the result. Genres are not loaded.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.query(ctx).Where("id IN ?", ids).Get(&products); err != nil {
		return nil, fmt.Errorf("repositories: find products by ids: %w", err)
	}
	return products, nil
}

// All returns every product, newest first, with genres.
func (r *ProductRepository) All(ctx context.Context) ([]models.Product, error) {
	return r.Filter(ctx, catalog.Criteria{})
}

// Filter returns products matching c, newest first, with genres.
func (r *ProductRepository) Filter(ctx context.Context, c catalog.Criteria) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).Model(&models.Product{}).Preload("Genres", orderGenres).
		Scopes(c.Scope).Get(&products)
	if err != nil {
		return nil, fmt.Errorf("repositories: filter products: %w", err)
	}
	return products, nil
}

// AdminList returns every product by id for the inventory screen.
func (r *ProductRepository) AdminList(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.query(ctx).Preload("Genres", orderGenres).Order("id").Get(&products)
	if err != nil {
		return nil, fmt.Errorf("repositories: list products: %w", err)
	}
	return products, nil
}

// Find loads one product with genres.
func (r *ProductRepository) Find(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.query(ctx).Preload("Genres", orderGenres).First(&p, id)
	if errors.Is(err, orm.ErrNotFound) {
		return p, models.ErrProductNotFound
	}
	if err != nil {
		return p, fmt.Errorf("repositories: find product %d: %w", id, err)
	}
	return p, nil
}

// ExistsIdentity reports whether another product already uses p's name,
// platform, format and condition. excludeID skips the product being edited.
func (r *ProductRepository) ExistsIdentity(ctx context.Context, p models.Product, excludeID uint) (bool, error) {
	q := r.query(ctx).Model(&models.Product{}).Where(map[string]any{
		"name":      p.Name,
		"platform":  p.Platform,
		"format":    p.Format,
		"condition": p.Condition,
	})
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	n, err := q.Count()
	if err != nil {
		return false, fmt.Errorf("repositories: check product identity: %w", err)
	}
	return n > 0, nil
}

// Create inserts p linked to genreIDs. p.ID and timestamps are filled in.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product, genreIDs []uint) error {
	err := r.query(ctx).Transaction(func(tx *orm.Query) error {
		genres, err := loadGenres(tx, genreIDs)
		if err != nil {
			return err
		}
		p.Genres = genres
		return tx.Create(p)
	})
	return productWriteError("create", err)
}

// Update saves every column of p and replaces its genre links.
func (r *ProductRepository) Update(ctx context.Context, p *models.Product, genreIDs []uint) error {
	err := r.query(ctx).Transaction(func(tx *orm.Query) error {
		genres, err := loadGenres(tx, genreIDs)
		if err != nil {
			return err
		}
		if err := tx.Omit("Genres").Save(p); err != nil {
			return err
		}

		assoc := tx.Raw().Model(p).Association("Genres")
		if len(genres) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(genres)
		}
		if err != nil {
			return err
		}
		p.Genres = genres
		return nil
	})
	return productWriteError("update", err)
}

// Delete removes the product and its genre links, returning the row as it
// was before deletion.
func (r *ProductRepository) Delete(ctx context.Context, id uint) (models.Product, error) {
	var p models.Product
	err := r.query(ctx).Transaction(func(tx *orm.Query) error {
		if err := tx.Preload("Genres").First(&p, id); err != nil {
			if errors.Is(err, orm.ErrNotFound) {
				return models.ErrProductNotFound
			}
			return err
		}
		if err := tx.Raw().Model(&p).Association("Genres").Clear(); err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id)
	})
	return p, productWriteError("delete", err)
}

func loadGenres(tx *orm.Query, ids []uint) ([]models.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ids = collection.Unique(ids)
	var genres []models.Genre
	if err := tx.Where("id IN ?", ids).Order("name").Get(&genres); err != nil {
		return nil, err
	}
	if len(genres) != len(ids) {
		return nil, models.ErrGenreNotFound
	}
	return genres, nil
}

func orderGenres(db *gorm.DB) *gorm.DB { return db.Order("genres.name") }

func productWriteError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrDuplicateProduct
	case errors.Is(err, models.ErrProductNotFound), errors.Is(err, models.ErrGenreNotFound):
		return err
	}
	return fmt.Errorf("repositories: %s product: %w", op, err)
}
