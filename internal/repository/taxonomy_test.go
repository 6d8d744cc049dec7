package repository

import (
	"context"
	"testing"

	"friendmarket/internal/cache"
	"friendmarket/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonomyRepository_EnsureIsIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewTaxonomyRepository(db)

	first, err := repo.EnsureTags(ctx, []string{"b", "a"})
	require.NoError(t, err)
	second, err := repo.EnsureTags(ctx, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)

	city, err := repo.EnsureCity(ctx, " Omsk ")
	require.NoError(t, err)
	again, err := repo.EnsureCity(ctx, "Omsk")
	require.NoError(t, err)
	assert.Equal(t, city.ID, again.ID)

	none, err := repo.EnsureCity(ctx, "  ")
	require.NoError(t, err)
	assert.Nil(t, none)

	tags, err := repo.TagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tags)
	cities, err := repo.CityNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Omsk"}, cities)
}

func TestTaxonomyRepository_NamesCacheInvalidatedOnCreate(t *testing.T) {
	mr := miniredis.RunT(t)
	prev := cache.GetClient()
	client, err := cache.NewClient(mr.Addr())
	require.NoError(t, err)
	cache.SetClient(client)
	t.Cleanup(func() { cache.SetClient(prev) })

	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewTaxonomyRepository(db)

	_, err = repo.EnsureTags(ctx, []string{"x"})
	require.NoError(t, err)
	tags, err := repo.TagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tags)
	assert.True(t, mr.Exists(cache.TagsKey))

	_, err = repo.EnsureTags(ctx, []string{"y"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.TagsKey))

	tags, err = repo.TagNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, tags)
}
