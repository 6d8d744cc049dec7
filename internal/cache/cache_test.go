package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"books", "coffee"}
			return nil
		}
	}

	var first []string
	require.NoError(t, Aside(ctx, TagsKey, &first, TaxonomyTTL, fetch(&first)))
	assert.Equal(t, []string{"books", "coffee"}, first)
	assert.True(t, mr.Exists(TagsKey))

	var second []string
	require.NoError(t, Aside(ctx, TagsKey, &second, TaxonomyTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := useMiniredis(t)
	boom := errors.New("db down")

	var dest []string
	err := Aside(context.Background(), CitiesKey, &dest, TaxonomyTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(CitiesKey))
}

func TestAside_NoClientFallsThrough(t *testing.T) {
	SetClient(nil)
	var dest int
	require.NoError(t, Aside(context.Background(), UserKey(1), &dest, UserTTL, func() error {
		dest = 7
		return nil
	}))
	assert.Equal(t, 7, dest)
}

func TestInvalidate(t *testing.T) {
	mr := useMiniredis(t)
	ctx := context.Background()
	require.NoError(t, SetJSON(ctx, UserKey(3), map[string]int{"id": 3}, UserTTL))
	require.NoError(t, SetJSON(ctx, TagsKey, []string{"a"}, TaxonomyTTL))
	require.NoError(t, SetJSON(ctx, CitiesKey, []string{"b"}, TaxonomyTTL))

	InvalidateUser(ctx, 3)
	InvalidateTaxonomy(ctx)

	assert.False(t, mr.Exists(UserKey(3)))
	assert.False(t, mr.Exists(TagsKey))
	assert.False(t, mr.Exists(CitiesKey))
}

func TestNewClient_ParsesURL(t *testing.T) {
	c, err := NewClient("redis://localhost:6390/2")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6390", c.Options().Addr)
	assert.Equal(t, 2, c.Options().DB)

	_, err = NewClient("redis://%zz")
	assert.Error(t, err)
}
