package models_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/gamevault/storefront/app/models"
)

var now = time.Date(2024, 6, 15, 18, 30, 0, 0, time.UTC)

func valid() models.Product {
	return models.Product{
		Name:        "Bloodborne",
		ReleaseDate: time.Date(2015, 3, 24, 0, 0, 0, 0, time.UTC),
		Platform:    models.PlatformPS4,
		Format:      models.FormatPhysical,
		Condition:   models.ConditionUsed,
		Price:       decimal.NewFromInt(15000),
		Stock:       4,
	}
}

func TestValidProductPasses(t *testing.T) {
	assert.Empty(t, valid().Validate(now))
}

func TestProductRules(t *testing.T) {
	cases := map[string]struct {
		mutate func(*models.Product)
		field  string
	}{
		"physical needs stock": {func(p *models.Product) { p.Stock = 0 }, "stock"},
		"stock upper bound":    {func(p *models.Product) { p.Stock = models.MaxStock + 1 }, "stock"},
		"negative stock":       {func(p *models.Product) { p.Format = models.FormatDigital; p.Stock = -1 }, "stock"},
		"price too low":        {func(p *models.Product) { p.Price = decimal.NewFromInt(999) }, "price"},
		"price too high":       {func(p *models.Product) { p.Price = decimal.NewFromInt(models.MaxPrice + 1) }, "price"},
		"future release":       {func(p *models.Product) { p.ReleaseDate = now.AddDate(0, 0, 1) }, "release_date"},
		"before 1970":          {func(p *models.Product) { p.ReleaseDate = time.Date(1969, 12, 31, 0, 0, 0, 0, time.UTC) }, "release_date"},
		"unknown platform":     {func(p *models.Product) { p.Platform = "PS2" }, "platform"},
		"unknown format":       {func(p *models.Product) { p.Format = "CARTRIDGE" }, "format"},
		"unknown condition":    {func(p *models.Product) { p.Condition = "MINT" }, "condition"},
		"name too long":        {func(p *models.Product) { p.Name = strings.Repeat("x", 151) }, "name"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid()
			tc.mutate(&p)
			errs := p.Validate(now)
			assert.Contains(t, errs, tc.field)
		})
	}
}

func TestDigitalMayHaveZeroStock(t *testing.T) {
	p := valid()
	p.Format = models.FormatDigital
	p.Stock = 0
	assert.Empty(t, p.Validate(now))
}

func TestReleaseTodayIsAllowed(t *testing.T) {
	p := valid()
	p.ReleaseDate = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, p.Validate(now))
}

func TestBoundsAreInclusive(t *testing.T) {
	p := valid()
	p.Price = decimal.NewFromInt(models.MinPrice)
	p.Stock = models.MaxStock
	assert.Empty(t, p.Validate(now))

	p.Price = decimal.NewFromInt(models.MaxPrice)
	assert.Empty(t, p.Validate(now))
}

func TestValidationErrorsIsAnError(t *testing.T) {
	p := valid()
	p.Stock = 0
	p.Price = decimal.Zero

	var err error = p.Validate(now)
	var verrs models.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
	assert.Equal(t, "validation failed: price: The price must be between 1000 and 100000000.; stock: Physical products must have stock greater than 0.", err.Error())
}

func TestKeyAndGenreHelpers(t *testing.T) {
	p := valid()
	p.ID = 42
	p.Genres = []models.Genre{{ID: 3, Name: "Action"}, {ID: 5, Name: "RPG"}}

	assert.Equal(t, "42", p.Key())
	assert.Equal(t, []string{"Action", "RPG"}, p.GenreNames())
	assert.Equal(t, []uint{3, 5}, p.GenreIDs())
}
