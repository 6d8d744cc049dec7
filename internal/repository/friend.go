package repository

import (
	"context"

	"friendmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FriendRepository persists the directed user-to-user follow graph.
type FriendRepository interface {
	// Follow upserts the edge author->friend with follow=true.
	Follow(ctx context.Context, authorID, friendID uint) error
	// Unfollow removes every edge author->friend.
	Unfollow(ctx context.Context, authorID, friendID uint) error
	IsFollowing(ctx context.Context, authorID, friendID uint) (bool, error)
	// ListCandidates lists every non-staff user except the viewer, annotated
	// with whether the viewer has an edge to them.
	ListCandidates(ctx context.Context, viewerID uint, page Page) ([]models.FriendListing, int64, error)
}

type friendRepository struct {
	db *gorm.DB
}

// NewFriendRepository creates a new friend repository
func NewFriendRepository(db *gorm.DB) FriendRepository {
	return &friendRepository{db: db}
}

func (r *friendRepository) Follow(ctx context.Context, authorID, friendID uint) error {
	edge := models.Friend{AuthorID: authorID, FriendID: friendID, Follow: true}
	err := r.db.WithContext(ctx).
		Omit("Author", "Target").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "author_id"}, {Name: "friend_id"}},
			DoUpdates: clause.Assignments(map[string]any{"follow": true}),
		}).
		Create(&edge).Error
	return internal(err)
}

func (r *friendRepository) Unfollow(ctx context.Context, authorID, friendID uint) error {
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND friend_id = ?", authorID, friendID).
		Delete(&models.Friend{}).Error
	return internal(err)
}

func (r *friendRepository) IsFollowing(ctx context.Context, authorID, friendID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Friend{}).
		Where("author_id = ? AND friend_id = ? AND follow = ?", authorID, friendID, true).
		Count(&count).Error
	if err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *friendRepository) ListCandidates(ctx context.Context, viewerID uint, page Page) ([]models.FriendListing, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&models.User{}).
			Where("users.id <> ? AND users.is_staff = ?", viewerID, false)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, internal(err)
	}

	var out []models.FriendListing
	err := page.apply(base().
		Select("users.*, EXISTS(SELECT 1 FROM friends f WHERE f.author_id = ? AND f.friend_id = users.id) AS is_follow", viewerID).
		Order("users.email ASC")).
		Scan(&out).Error
	if err != nil {
		return nil, 0, internal(err)
	}
	return out, total, nil
}
