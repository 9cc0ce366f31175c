package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/drinks-api/internal/domain/drink"
	"github.com/xenking/drinks-api/internal/storage/sqlite"
)

func newRepo(t *testing.T) *sqlite.DrinkRepository {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "drinks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, sqlite.Migrate(ctx, conn))

	return sqlite.NewDrinkRepository(conn)
}

func latte() *drink.Drink {
	return &drink.Drink{
		Title: "Latte",
		Recipe: drink.Recipe{
			{Name: "espresso", Color: "brown", Parts: decimal.NewFromInt(1)},
			{Name: "milk", Color: "white", Parts: decimal.RequireFromString("2.5")},
		},
	}
}

func TestDrinkRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	d := latte()
	require.NoError(t, repo.Create(ctx, d))
	assert.Positive(t, d.ID)

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Latte", got.Title)
	require.Len(t, got.Recipe, 2)
	assert.Equal(t, "milk", got.Recipe[1].Name)
	assert.True(t, got.Recipe[1].Parts.Equal(decimal.RequireFromString("2.5")))

	got.Title = "Cafe Latte"
	require.NoError(t, repo.Update(ctx, got))

	list, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Cafe Latte", list[0].Title)

	require.NoError(t, repo.Delete(ctx, d.ID))
	_, err = repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, drink.ErrNotFound)
}

func TestDrinkRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	for _, title := range []string{"C", "A", "B"} {
		d := latte()
		d.Title = title
		require.NoError(t, repo.Create(ctx, d))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "C", list[0].Title)
	assert.Less(t, list[0].ID, list[1].ID)
	assert.Less(t, list[1].ID, list[2].ID)
}

func TestDrinkRepository_DuplicateTitle(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Create(ctx, latte()))
	err := repo.Create(ctx, latte())
	assert.ErrorIs(t, err, drink.ErrDuplicateTitle)

	other := latte()
	other.Title = "Mocha"
	require.NoError(t, repo.Create(ctx, other))
	other.Title = "Latte"
	assert.ErrorIs(t, repo.Update(ctx, other), drink.ErrDuplicateTitle)
}

func TestDrinkRepository_Missing(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	_, err := repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, drink.ErrNotFound)

	d := latte()
	d.ID = 42
	assert.ErrorIs(t, repo.Update(ctx, d), drink.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 42), drink.ErrNotFound)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	conn, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "nested", "drinks.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, sqlite.Migrate(ctx, conn))

	repo := sqlite.NewDrinkRepository(conn)
	require.NoError(t, repo.Create(ctx, latte()))
	require.NoError(t, sqlite.Reset(ctx, conn))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
