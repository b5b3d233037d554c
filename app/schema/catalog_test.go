package schema_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/app/schema"
	"github.com/gamevault/storefront/app/services"
	"github.com/gamevault/storefront/internal/testutil"
	"github.com/gamevault/storefront/pkg/cache"
	gql "github.com/gamevault/storefront/pkg/graphql"
)

func run(t *testing.T, s graphql.Schema, query string) map[string]any {
	t.Helper()
	res := graphql.Do(graphql.Params{Schema: s, RequestString: query, Context: context.Background()})
	require.Empty(t, res.Errors)
	data, ok := res.Data.(map[string]any)
	require.True(t, ok)
	return data
}

func TestCatalogQueries(t *testing.T) {
	db := testutil.NewDB(t)
	action := testutil.CreateGenre(t, db, "Action")
	testutil.CreateProduct(t, db, testutil.WithName("Astro Bot"), testutil.WithPrice(4000))
	gow := testutil.CreateProduct(t, db,
		testutil.WithName("God of War"),
		testutil.WithPrice(7000),
		testutil.WithPlatform(models.PlatformPS4),
		testutil.WithGenres(action),
	)

	svc := services.NewCatalogService(
		repositories.NewProductRepository(db),
		repositories.NewGenreRepository(db, cache.NewMemoryStore()),
	)
	s, err := gql.NewSchema(schema.Query(svc))
	require.NoError(t, err)

	data := run(t, s, `{ products(platform: "ps4") { id name price genres { name } } }`)
	products := data["products"].([]any)
	require.Len(t, products, 1)
	first := products[0].(map[string]any)
	assert.Equal(t, "God of War", first["name"])
	assert.Equal(t, "7000", first["price"])
	assert.Equal(t, []any{map[string]any{"name": "Action"}}, first["genres"])

	// An inverted range is swapped rather than rejected.
	data = run(t, s, `{ products(price_min: 5000, price_max: 3000) { name } }`)
	assert.Len(t, data["products"], 1)

	data = run(t, s, `{ products(price_min: -5) { name } }`)
	assert.Len(t, data["products"], 2)

	data = run(t, s, fmt.Sprintf(`{ product(id: %d) { name platform in_stock } }`, gow.ID))
	assert.Equal(t, map[string]any{"name": "God of War", "platform": "PS4", "in_stock": true}, data["product"])

	data = run(t, s, `{ product(id: 999) { name } }`)
	assert.Nil(t, data["product"])

	data = run(t, s, `{ genres { id name } }`)
	assert.Len(t, data["genres"], 1)
}
