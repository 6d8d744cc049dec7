package repository

import (
	"context"

	"friendmarket/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	// GetByPost looks a comment up by its post and id.
	GetByPost(ctx context.Context, postID, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, page Page) ([]models.Comment, int64, error)
	UpdateText(ctx context.Context, id uint, text string) error
	Delete(ctx context.Context, id uint) error
	// AttachNote links noteID to postID unless a link already exists and
	// reports whether a comment was created.
	AttachNote(ctx context.Context, authorID, postID, noteID uint) (bool, error)
	// NoteLink returns the comment linking noteID to postID.
	NoteLink(ctx context.Context, postID, noteID uint) (*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func preloadComment(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("ReplyTo").Preload("Note.Author")
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return internal(err)
	}
	return nil
}

func (r *commentRepository) GetByPost(ctx context.Context, postID, id uint) (*models.Comment, error) {
	var comment models.Comment
	err := preloadComment(r.db.WithContext(ctx)).
		Where("post_id = ? AND id = ?", postID, id).
		First(&comment).Error
	if err != nil {
		return nil, notFoundOr(err, "Comment", id)
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint, page Page) ([]models.Comment, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total).Error; err != nil {
		return nil, 0, internal(err)
	}
	comments := make([]models.Comment, 0)
	err := page.apply(preloadComment(r.db.WithContext(ctx)).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC")).
		Find(&comments).Error
	if err != nil {
		return nil, 0, internal(err)
	}
	return comments, total, nil
}

func (r *commentRepository) UpdateText(ctx context.Context, id uint, text string) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Update("comment", text)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Comment{}).Where("parent_id = ?", id).Update("parent_id", nil).Error; err != nil {
			return internal(err)
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Comment", id)
		}
		return nil
	})
}

func (r *commentRepository) AttachNote(ctx context.Context, authorID, postID, noteID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Comment{}).Where("post_id = ? AND note_id = ?", postID, noteID).Count(&count).Error; err != nil {
			return internal(err)
		}
		if count > 0 {
			return nil
		}
		link := models.Comment{AuthorID: authorID, PostID: postID, NoteID: &noteID}
		if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
			return internal(err)
		}
		created = true
		return nil
	})
	return created, err
}

func (r *commentRepository) NoteLink(ctx context.Context, postID, noteID uint) (*models.Comment, error) {
	var comment models.Comment
	err := preloadComment(r.db.WithContext(ctx)).
		Where("post_id = ? AND note_id = ?", postID, noteID).
		Order("id ASC").
		First(&comment).Error
	if err != nil {
		return nil, notFoundOr(err, "Note", noteID)
	}
	return &comment, nil
}
