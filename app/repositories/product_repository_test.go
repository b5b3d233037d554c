package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/internal/testutil"
	"github.com/gamevault/storefront/pkg/cache"
)

func TestFindByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewProductRepository(db)

	a := testutil.CreateProduct(t, db)
	b := testutil.CreateProduct(t, db)

	got, err := repo.FindByIDs(ctx, []uint{a.ID, 9999, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []uint{a.ID, b.ID}, []uint{got[0].ID, got[1].ID})

	got, err = repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAllIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewProductRepository(db)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := testutil.CreateProduct(t, db, testutil.WithCreatedAt(base))
	newest := testutil.CreateProduct(t, db, testutil.WithCreatedAt(base.Add(2*time.Hour)))
	mid := testutil.CreateProduct(t, db, testutil.WithCreatedAt(base.Add(time.Hour)))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{newest.ID, mid.ID, old.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewProductRepository(db)
	action := testutil.CreateGenre(t, db, "Action")
	rpg := testutil.CreateGenre(t, db, "RPG")

	p := testutil.NewProduct()
	require.NoError(t, repo.Create(ctx, &p, []uint{rpg.ID, action.ID}))
	require.NotZero(t, p.ID)

	found, err := repo.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "RPG"}, found.GenreNames())

	found.Stock = 3
	require.NoError(t, repo.Update(ctx, &found, []uint{rpg.ID}))

	found, err = repo.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.Stock)
	assert.Equal(t, []string{"RPG"}, found.GenreNames())

	require.NoError(t, repo.Update(ctx, &found, nil))
	found, err = repo.Find(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, found.Genres)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, deleted.Name)

	_, err = repo.Find(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)

	_, err = repo.Delete(ctx, p.ID)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
}

func TestCreateRejectsUnknownGenre(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewProductRepository(db)

	p := testutil.NewProduct()
	assert.ErrorIs(t, repo.Create(ctx, &p, []uint{404}), models.ErrGenreNotFound)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExistsIdentity(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewProductRepository(db)

	p := testutil.CreateProduct(t, db, testutil.WithName("Returnal"))

	exists, err := repo.ExistsIdentity(ctx, p, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsIdentity(ctx, p, p.ID)
	require.NoError(t, err)
	assert.False(t, exists, "the product itself does not count")

	other := p
	other.Condition = models.ConditionUsed
	exists, err = repo.ExistsIdentity(ctx, other, 0)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGenresAreCached(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	store := cache.NewMemoryStore()
	repo := repositories.NewGenreRepository(db, store)

	testutil.CreateGenre(t, db, "Racing")
	genres, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 1)

	testutil.CreateGenre(t, db, "Horror")
	genres, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 1, "served from cache")

	_, err = repo.FirstOrCreate(ctx, "Sports")
	require.NoError(t, err)
	genres, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Horror", "Racing", "Sports"}, []string{genres[0].Name, genres[1].Name, genres[2].Name})
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	repo := repositories.NewUserRepository(db)

	u := models.User{Name: "Ada", Email: "Ada@Example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, &u))

	found, err := repo.FindByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
