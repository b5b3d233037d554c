// Package services holds the storefront's business operations. Controllers,
// GraphQL resolvers and CLI commands all go through it.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gamevault/storefront/app/catalog"
	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/storage"
	"github.com/gamevault/storefront/pkg/validate"
)

// CatalogNotifier is told about catalog writes after they commit. It must
// not block and has no way to fail the write.
type CatalogNotifier interface {
	ProductSaved(ctx context.Context, p models.Product)
	ProductDeleted(ctx context.Context, p models.Product)
}

// NopNotifier ignores every change.
type NopNotifier struct{}

func (NopNotifier) ProductSaved(context.Context, models.Product)   {}
func (NopNotifier) ProductDeleted(context.Context, models.Product) {}

// ProductInput is the admin form for creating or replacing a product.
type ProductInput struct {
	Name        string          `json:"name"         validate:"required,max=150"`
	ReleaseDate string          `json:"release_date" validate:"required,date"`
	Platform    string          `json:"platform"     validate:"required,in=PS3|PS4|PS5"`
	Format      string          `json:"format"       validate:"required,in=PHYSICAL|DIGITAL"`
	Condition   string          `json:"condition"    validate:"required,in=NEW|USED"`
	GenreIDs    []uint          `json:"genre_ids"`
	Description string          `json:"description"  validate:"nullable,max=5000"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"        validate:"gte=0,lte=100000"`
}

func (in ProductInput) normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	in.Platform = strings.ToUpper(strings.TrimSpace(in.Platform))
	in.Format = strings.ToUpper(strings.TrimSpace(in.Format))
	in.Condition = strings.ToUpper(strings.TrimSpace(in.Condition))
	return in
}

// apply copies the input onto p. Fields that fail to parse are left for
// Product.Validate to report.
func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.ReleaseDate, _ = time.Parse(validate.DateLayout, in.ReleaseDate)
	p.Platform = models.Platform(in.Platform)
	p.Format = models.Format(in.Format)
	p.Condition = models.Condition(in.Condition)
	p.Description = in.Description
	p.Price = in.Price
	p.Stock = in.Stock
}

// Allowed product image extensions.
var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true}

// CatalogOption configures a CatalogService.
type CatalogOption func(*CatalogService)

// WithNotifier sets who hears about committed writes.
func WithNotifier(n CatalogNotifier) CatalogOption {
	return func(s *CatalogService) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithImages sets the disk product images are stored on.
func WithImages(d storage.Disk) CatalogOption {
	return func(s *CatalogService) { s.images = d }
}

// WithClock overrides the clock used for the release date rule.
func WithClock(now func() time.Time) CatalogOption {
	return func(s *CatalogService) { s.now = now }
}

// CatalogService is the only place catalog writes happen.
type CatalogService struct {
	products *repositories.ProductRepository
	genres   *repositories.GenreRepository
	notifier CatalogNotifier
	images   storage.Disk
	now      func() time.Time
}

func NewCatalogService(products *repositories.ProductRepository, genres *repositories.GenreRepository, opts ...CatalogOption) *CatalogService {
	s := &CatalogService{
		products: products,
		genres:   genres,
		notifier: NopNotifier{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the products matching c, newest first.
func (s *CatalogService) List(ctx context.Context, c catalog.Criteria) ([]models.Product, error) {
	return s.products.Filter(ctx, c)
}

func (s *CatalogService) Get(ctx context.Context, id uint) (models.Product, error) {
	return s.products.Find(ctx, id)
}

func (s *CatalogService) AdminList(ctx context.Context) ([]models.Product, error) {
	return s.products.AdminList(ctx)
}

func (s *CatalogService) Genres(ctx context.Context) ([]models.Genre, error) {
	return s.genres.All(ctx)
}

// Create validates in and inserts a new product.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (models.Product, error) {
	in = in.normalized()
	var p models.Product
	in.apply(&p)
	if err := s.check(ctx, in, p, 0); err != nil {
		return models.Product{}, err
	}

	if err := s.products.Create(ctx, &p, in.GenreIDs); err != nil {
		return models.Product{}, s.writeError(err)
	}
	logger.WithCtx(ctx).Info("product created", "product_id", p.ID, "name", p.Name)
	s.notifier.ProductSaved(ctx, p)
	return p, nil
}

// Update replaces every editable field of product id.
func (s *CatalogService) Update(ctx context.Context, id uint, in ProductInput) (models.Product, error) {
	p, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	in = in.normalized()
	in.apply(&p)
	if err := s.check(ctx, in, p, id); err != nil {
		return models.Product{}, err
	}

	if err := s.products.Update(ctx, &p, in.GenreIDs); err != nil {
		return models.Product{}, s.writeError(err)
	}
	logger.WithCtx(ctx).Info("product updated", "product_id", p.ID)
	s.notifier.ProductSaved(ctx, p)
	return p, nil
}

// Delete removes product id and its image.
func (s *CatalogService) Delete(ctx context.Context, id uint) error {
	p, err := s.products.Delete(ctx, id)
	if err != nil {
		return err
	}
	logger.WithCtx(ctx).Info("product deleted", "product_id", id)
	s.removeImage(ctx, p.Image)
	s.notifier.ProductDeleted(ctx, p)
	return nil
}

// SetImage stores r as the product's image, replacing any previous one.
// filename is only used for its extension.
func (s *CatalogService) SetImage(ctx context.Context, id uint, filename string, r io.Reader) (models.Product, error) {
	if s.images == nil {
		return models.Product{}, errors.New("services: no image disk configured")
	}
	ext := strings.ToLower(path.Ext(filename))
	if !imageExtensions[ext] {
		return models.Product{}, models.ValidationErrors{"image": "The image must be a jpg, jpeg, png, webp or gif file."}
	}

	p, err := s.products.Find(ctx, id)
	if err != nil {
		return models.Product{}, err
	}

	key := fmt.Sprintf("products/%d/%s%s", p.ID, uuid.NewString(), ext)
	if err := s.images.Put(ctx, key, r); err != nil {
		return models.Product{}, fmt.Errorf("services: store image: %w", err)
	}

	old := p.Image
	p.Image = key
	if err := s.products.Update(ctx, &p, p.GenreIDs()); err != nil {
		s.removeImage(ctx, key)
		return models.Product{}, s.writeError(err)
	}
	s.removeImage(ctx, old)
	s.notifier.ProductSaved(ctx, p)
	return p, nil
}

// ImageURL resolves a stored image path, or "" without one.
func (s *CatalogService) ImageURL(key string) string {
	if key == "" || s.images == nil {
		return ""
	}
	return s.images.URL(key)
}

// Images is the disk product images live on. It may be nil.
func (s *CatalogService) Images() storage.Disk { return s.images }

func (s *CatalogService) check(ctx context.Context, in ProductInput, p models.Product, excludeID uint) error {
	errs := models.ValidationErrors(validate.Struct(in))
	for field, msg := range p.Validate(s.now()) {
		if _, seen := errs[field]; !seen {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		return errs
	}

	taken, err := s.products.ExistsIdentity(ctx, p, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return models.ErrDuplicateProduct
	}
	return nil
}

func (s *CatalogService) writeError(err error) error {
	if errors.Is(err, models.ErrGenreNotFound) {
		return models.ValidationErrors{"genre_ids": "The selected genres are invalid."}
	}
	return err
}

func (s *CatalogService) removeImage(ctx context.Context, key string) {
	if key == "" || s.images == nil {
		return
	}
	if err := s.images.Delete(ctx, key); err != nil {
		logger.WithCtx(ctx).Warn("could not delete product image", "key", key, "error", err)
	}
}
