package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix = "user:%d"
	TagsKey       = "tags:all"
	CitiesKey     = "cities:all"
)

const (
	UserTTL     = 5 * time.Minute
	TaxonomyTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateTaxonomy drops the cached tag and city name lists.
func InvalidateTaxonomy(ctx context.Context) {
	Invalidate(ctx, TagsKey, CitiesKey)
}
