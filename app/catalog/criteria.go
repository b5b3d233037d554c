// Package catalog turns storefront search parameters into a gorm scope over
// the products table.
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/collection"
)

// Criteria narrows the product listing. Zero values mean "no filter".
type Criteria struct {
	Text     string
	Platform models.Platform
	Format   models.Format
	GenreIDs []uint
	PriceMin *int64
	PriceMax *int64
}

// ParseCriteria reads q, platform, format, genres, price_min and price_max.
// Malformed values never fail; they drop the corresponding filter.
func ParseCriteria(q url.Values) Criteria {
	c := Criteria{
		Text:     q.Get("q"),
		Platform: models.Platform(strings.ToUpper(strings.TrimSpace(q.Get("platform")))),
		Format:   models.Format(strings.ToUpper(strings.TrimSpace(q.Get("format")))),
		PriceMin: parsePrice(q.Get("price_min")),
		PriceMax: parsePrice(q.Get("price_max")),
	}

	for _, raw := range q["genres"] {
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil && id > 0 {
				c.GenreIDs = append(c.GenreIDs, uint(id))
			}
		}
	}
	return c.Normalize()
}

func parsePrice(raw string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

// Normalize drops unknown enum values, de-duplicates genres, trims the text
// and swaps an inverted price range.
func (c Criteria) Normalize() Criteria {
	c.Text = strings.TrimSpace(c.Text)
	if !c.Platform.Valid() {
		c.Platform = ""
	}
	if !c.Format.Valid() {
		c.Format = ""
	}
	if len(c.GenreIDs) > 0 {
		c.GenreIDs = collection.Unique(c.GenreIDs)
	}
	if c.PriceMin != nil && *c.PriceMin < 0 {
		c.PriceMin = nil
	}
	if c.PriceMax != nil && *c.PriceMax < 0 {
		c.PriceMax = nil
	}
	if c.PriceMin != nil && c.PriceMax != nil && *c.PriceMin > *c.PriceMax {
		c.PriceMin, c.PriceMax = c.PriceMax, c.PriceMin
	}
	return c
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return c.Text == "" && c.Platform == "" && c.Format == "" &&
		len(c.GenreIDs) == 0 && c.PriceMin == nil && c.PriceMax == nil
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Scope applies c to a query over products. It only builds clauses; the
// caller executes the query. The result is ordered newest first and has no
// duplicate rows.
func (c Criteria) Scope(db *gorm.DB) *gorm.DB {
	c = c.Normalize()

	if c.Text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(c.Text)) + "%"
		db = db.Where("(LOWER(products.name) LIKE ? ESCAPE '!' OR LOWER(products.description) LIKE ? ESCAPE '!')", pattern, pattern)
	}
	if c.Platform != "" {
		db = db.Where("products.platform = ?", c.Platform)
	}
	if c.Format != "" {
		db = db.Where("products.format = ?", c.Format)
	}
	if len(c.GenreIDs) > 0 {
		db = db.Where("products.id IN (SELECT product_id FROM product_genres WHERE genre_id IN ?)", c.GenreIDs)
	}
	if c.PriceMin != nil {
		db = db.Where("products.price >= ?", *c.PriceMin)
	}
	if c.PriceMax != nil {
		db = db.Where("products.price <= ?", *c.PriceMax)
	}
	return db.Order("products.created_at DESC").Order("products.id DESC")
}
