// Package mirror copies product records into an external document store.
//
// The mirror is one-way and best effort: the relational catalog is the
// system of record, writes reach the mirror only after they commit, and a
// failed mirror write is logged and counted but never retried or surfaced
// to the caller.
package mirror

import (
	"time"

	"github.com/gamevault/storefront/app/models"
)

// DateLayout is the release date format stored in documents.
const DateLayout = "2006-01-02"

// Document is the mirrored shape of a product.
type Document struct {
	Name        string   `bson:"name"         json:"name"`
	ReleaseDate string   `bson:"release_date" json:"release_date"`
	Platform    string   `bson:"platform"     json:"platform"`
	Format      string   `bson:"format"       json:"format"`
	Condition   string   `bson:"condition"    json:"condition"`
	Genres      []string `bson:"genres"       json:"genres"`
	Description string   `bson:"description"  json:"description"`
	Price       float64  `bson:"price"        json:"price"`
	ImageURL    *string  `bson:"image_url"    json:"image_url"`
	Stock       int      `bson:"stock"        json:"stock"`
	CreatedAt   string   `bson:"created_at"   json:"created_at"`
	UpdatedAt   string   `bson:"updated_at"   json:"updated_at"`
}

// URLResolver turns a stored image path into a public URL.
type URLResolver interface {
	URL(path string) string
}

// NewDocument snapshots p. images may be nil, in which case image_url is
// always null.
func NewDocument(p models.Product, images URLResolver) Document {
	price, _ := p.Price.Float64()

	genres := p.GenreNames()
	if genres == nil {
		genres = []string{}
	}

	doc := Document{
		Name:        p.Name,
		ReleaseDate: p.ReleaseDate.Format(DateLayout),
		Platform:    string(p.Platform),
		Format:      string(p.Format),
		Condition:   string(p.Condition),
		Genres:      genres,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if p.Image != "" && images != nil {
		url := images.URL(p.Image)
		doc.ImageURL = &url
	}
	return doc
}
