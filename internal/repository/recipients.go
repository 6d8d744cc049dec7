package repository

import (
	"context"
	"strings"

	"friendmarket/internal/models"
	"friendmarket/internal/observability"

	"gorm.io/gorm"
)

// Recipient is a user reachable by push notifications.
type Recipient struct {
	UserID uint
	Token  string
}

// Tokens returns the distinct device tokens in order of first appearance.
func Tokens(recipients []Recipient) []string {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if _, ok := seen[r.Token]; ok {
			continue
		}
		seen[r.Token] = struct{}{}
		out = append(out, r.Token)
	}
	return out
}

// UserIDs returns the recipients' user ids.
func UserIDs(recipients []Recipient) []uint {
	out := make([]uint, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, r.UserID)
	}
	return out
}

// RecipientRepository resolves push notification recipients. Every query
// is restricted to users with notifications enabled and a non-empty device
// token, yields each user once and orders by token.
type RecipientRepository interface {
	// CommentRecipients covers the post's followers, the post author and,
	// for replies, the parent comment's author, minus the comment author.
	CommentRecipients(ctx context.Context, comment *models.Comment) ([]Recipient, error)
	// PostRecipients covers users following authorID with follow=true.
	PostRecipients(ctx context.Context, authorID uint) ([]Recipient, error)
	// ByEmails resolves the listed users, or everyone reachable when emails
	// is empty.
	ByEmails(ctx context.Context, emails []string) ([]Recipient, error)
}

type recipientRepository struct {
	db *gorm.DB
}

// NewRecipientRepository creates a new RecipientRepository
func NewRecipientRepository(db *gorm.DB) RecipientRepository {
	return &recipientRepository{db: db}
}

func (r *recipientRepository) reachable(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Select("users.id AS user_id, users.android_regid AS token").
		Where("users.enable_notif = ?", true).
		Where("users.android_regid IS NOT NULL AND users.android_regid <> ''").
		Order("users.android_regid ASC").
		Order("users.id ASC")
}

func (r *recipientRepository) find(operation string, q *gorm.DB) ([]Recipient, error) {
	defer observability.TrackQuery(operation, "users")()
	out := make([]Recipient, 0)
	if err := q.Scan(&out).Error; err != nil {
		return nil, internal(err)
	}
	return out, nil
}

func (r *recipientRepository) CommentRecipients(ctx context.Context, comment *models.Comment) ([]Recipient, error) {
	var parentID uint
	if comment.ParentID != nil {
		parentID = *comment.ParentID
	}
	return r.find("comment_recipients", r.reachable(ctx).
		Where("users.id <> ?", comment.AuthorID).
		Where("(users.id IN (SELECT pf.user_id FROM post_follows pf WHERE pf.post_id = ?)"+
			" OR users.id IN (SELECT p.author_id FROM posts p WHERE p.id = ?)"+
			" OR users.id IN (SELECT c.author_id FROM comments c WHERE c.id = ?))",
			comment.PostID, comment.PostID, parentID))
}

func (r *recipientRepository) PostRecipients(ctx context.Context, authorID uint) ([]Recipient, error) {
	return r.find("post_recipients", r.reachable(ctx).
		Where("EXISTS (SELECT 1 FROM friends f WHERE f.author_id = users.id AND f.friend_id = ? AND f.follow = ?)", authorID, true))
}

func (r *recipientRepository) ByEmails(ctx context.Context, emails []string) ([]Recipient, error) {
	q := r.reachable(ctx)
	if len(emails) > 0 {
		lowered := make([]string, 0, len(emails))
		for _, e := range emails {
			lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
		}
		q = q.Where("LOWER(users.email) IN ?", lowered)
	}
	return r.find("recipients_by_email", q)
}
