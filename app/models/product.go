package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Platform is the console a product runs on.
type Platform string

const (
	PlatformPS3 Platform = "PS3"
	PlatformPS4 Platform = "PS4"
	PlatformPS5 Platform = "PS5"
)

// Platforms lists every valid platform in display order.
var Platforms = []Platform{PlatformPS3, PlatformPS4, PlatformPS5}

func (p Platform) Valid() bool {
	switch p {
	case PlatformPS3, PlatformPS4, PlatformPS5:
		return true
	}
	return false
}

// Format distinguishes boxed copies from download codes.
type Format string

const (
	FormatPhysical Format = "PHYSICAL"
	FormatDigital  Format = "DIGITAL"
)

var Formats = []Format{FormatPhysical, FormatDigital}

func (f Format) Valid() bool { return f == FormatPhysical || f == FormatDigital }

// Condition is NEW or USED.
type Condition string

const (
	ConditionNew  Condition = "NEW"
	ConditionUsed Condition = "USED"
)

var Conditions = []Condition{ConditionNew, ConditionUsed}

func (c Condition) Valid() bool { return c == ConditionNew || c == ConditionUsed }

// Catalog bounds enforced on every write.
const (
	MinPrice       = 1000
	MaxPrice       = 100000000
	MaxStock       = 100000
	MaxNameLength  = 150
	MinReleaseYear = 1970
)

// Product is a sellable game listing. The (name, platform, format,
// condition) tuple is unique.
type Product struct {
	ID          uint            `gorm:"primaryKey"                                          json:"id"`
	Name        string          `gorm:"size:150;not null;uniqueIndex:idx_products_identity" json:"name"`
	ReleaseDate time.Time       `gorm:"type:date;not null"                                  json:"release_date"`
	Platform    Platform        `gorm:"size:8;not null;uniqueIndex:idx_products_identity"   json:"platform"`
	Format      Format          `gorm:"size:8;not null;uniqueIndex:idx_products_identity"   json:"format"`
	Condition   Condition       `gorm:"size:8;not null;uniqueIndex:idx_products_identity"   json:"condition"`
	Genres      []Genre         `gorm:"many2many:product_genres"                            json:"genres"`
	Description string          `gorm:"type:text"                                           json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"                         json:"price"`
	Stock       int             `gorm:"not null"                                            json:"stock"`
	Image       string          `gorm:"size:255"                                            json:"image"`
	CreatedAt   time.Time       `gorm:"index"                                               json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Key is the product id in the string form carts are keyed by.
func (p Product) Key() string { return strconv.FormatUint(uint64(p.ID), 10) }

// GenreNames returns the loaded genre names in order.
func (p Product) GenreNames() []string {
	names := make([]string, len(p.Genres))
	for i, g := range p.Genres {
		names[i] = g.Name
	}
	return names
}

// GenreIDs returns the loaded genre ids in order.
func (p Product) GenreIDs() []uint {
	ids := make([]uint, len(p.Genres))
	for i, g := range p.Genres {
		ids[i] = g.ID
	}
	return ids
}

// Validate checks the catalog business rules against the calendar day of
// now. It does not check uniqueness.
func (p Product) Validate(now time.Time) ValidationErrors {
	errs := ValidationErrors{}

	switch {
	case p.Name == "":
		errs["name"] = "The name field is required."
	case len([]rune(p.Name)) > MaxNameLength:
		errs["name"] = "The name must not exceed 150 characters."
	}

	if !p.Platform.Valid() {
		errs["platform"] = "The selected platform is invalid."
	}
	if !p.Format.Valid() {
		errs["format"] = "The selected format is invalid."
	}
	if !p.Condition.Valid() {
		errs["condition"] = "The selected condition is invalid."
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case p.ReleaseDate.IsZero():
		errs["release_date"] = "The release date is required."
	case p.ReleaseDate.Year() < MinReleaseYear:
		errs["release_date"] = "The release date must be in 1970 or later."
	case p.ReleaseDate.After(today):
		errs["release_date"] = "The release date cannot be in the future."
	}

	if p.Price.LessThan(decimal.NewFromInt(MinPrice)) || p.Price.GreaterThan(decimal.NewFromInt(MaxPrice)) {
		errs["price"] = "The price must be between 1000 and 100000000."
	}

	switch {
	case p.Stock < 0 || p.Stock > MaxStock:
		errs["stock"] = "The stock must be between 0 and 100000."
	case p.Format == FormatPhysical && p.Stock <= 0:
		errs["stock"] = "Physical products must have stock greater than 0."
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
