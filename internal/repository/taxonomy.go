package repository

import (
	"context"
	"strings"

	"friendmarket/internal/cache"
	"friendmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaxonomyRepository manages tags and cities. Both are created on demand
// when a post references them by name.
type TaxonomyRepository interface {
	EnsureTags(ctx context.Context, names []string) ([]models.Tag, error)
	// EnsureCity returns nil for a blank name.
	EnsureCity(ctx context.Context, name string) (*models.City, error)
	TagNames(ctx context.Context) ([]string, error)
	CityNames(ctx context.Context) ([]string, error)
}

type taxonomyRepository struct {
	db *gorm.DB
}

// NewTaxonomyRepository creates a new TaxonomyRepository
func NewTaxonomyRepository(db *gorm.DB) TaxonomyRepository {
	return &taxonomyRepository{db: db}
}

// cleanNames trims, drops blanks and de-duplicates while keeping order.
func cleanNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (r *taxonomyRepository) EnsureTags(ctx context.Context, names []string) ([]models.Tag, error) {
	names = cleanNames(names)
	tags := make([]models.Tag, 0, len(names))
	if len(names) == 0 {
		return tags, nil
	}

	rows := make([]models.Tag, 0, len(names))
	for _, n := range names {
		rows = append(rows, models.Tag{Name: n})
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return nil, internal(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.Invalidate(ctx, cache.TagsKey)
	}

	if err := r.db.WithContext(ctx).Where("tag IN ?", names).Order("tag ASC").Find(&tags).Error; err != nil {
		return nil, internal(err)
	}
	return tags, nil
}

func (r *taxonomyRepository) EnsureCity(ctx context.Context, name string) (*models.City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	row := models.City{Name: name}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return nil, internal(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.Invalidate(ctx, cache.CitiesKey)
	}

	var city models.City
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&city).Error; err != nil {
		return nil, notFoundOr(err, "City", name)
	}
	return &city, nil
}

func (r *taxonomyRepository) TagNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	err := cache.Aside(ctx, cache.TagsKey, &names, cache.TaxonomyTTL, func() error {
		return internal(r.db.WithContext(ctx).Model(&models.Tag{}).Order("tag ASC").Pluck("tag", &names).Error)
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func (r *taxonomyRepository) CityNames(ctx context.Context) ([]string, error) {
	names := make([]string, 0)
	err := cache.Aside(ctx, cache.CitiesKey, &names, cache.TaxonomyTTL, func() error {
		return internal(r.db.WithContext(ctx).Model(&models.City{}).Order("name ASC").Pluck("name", &names).Error)
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}
