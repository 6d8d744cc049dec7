package repository

import (
	"context"
	"strings"

	"friendmarket/internal/models"
	"friendmarket/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostFilter narrows a post listing. Zero values disable a criterion.
type PostFilter struct {
	AuthorID   uint
	Types      []models.PostType
	Search     string
	Tags       []string
	Cities     []string
	FollowedBy uint
	// NoteOf lists the notes attached to the given question.
	NoteOf uint
	// SimilarTo lists posts sharing at least one tag with the given post,
	// excluding the post itself.
	SimilarTo uint
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	// Create inserts the post and links tags, which must already exist.
	Create(ctx context.Context, post *models.Post, tags []models.Tag) error
	// GetByID returns the post annotated for viewerID.
	GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter, viewerID uint, page Page) ([]models.Post, int64, error)
	// Update applies column changes. A nil tags slice leaves tags untouched,
	// an empty one clears them.
	Update(ctx context.Context, id uint, fields map[string]any, tags []models.Tag) error
	Delete(ctx context.Context, id uint) error
	MarkViewed(ctx context.Context, userID uint, postIDs []uint) error
	Like(ctx context.Context, postID, userID uint) error
	Unlike(ctx context.Context, postID, userID uint) error
	Follow(ctx context.Context, postID, userID uint) error
	Unfollow(ctx context.Context, postID, userID uint) error
	// IsNoteOf reports whether noteID is attached to questionID by a comment.
	IsNoteOf(ctx context.Context, questionID, noteID uint) (bool, error)
	// SetBestNote sets or, with nil, clears the best note of a question.
	SetBestNote(ctx context.Context, questionID uint, noteID *uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// postUser is a row of any of the post/user join tables.
type postUser struct {
	PostID uint `gorm:"primaryKey"`
	UserID uint `gorm:"primaryKey"`
}

type postTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}

func (postTag) TableName() string { return "post_tags" }

const (
	likesTable   = "post_likes"
	followsTable = "post_follows"
	viewsTable   = "post_views"
)

func (r *postRepository) Create(ctx context.Context, post *models.Post, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return internal(err)
		}
		if err := linkTags(tx, post.ID, tags); err != nil {
			return err
		}
		post.Tags = tags
		return nil
	})
}

func linkTags(tx *gorm.DB, postID uint, tags []models.Tag) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]postTag, 0, len(tags))
	for _, t := range tags {
		rows = append(rows, postTag{PostID: postID, TagID: t.ID})
	}
	return internal(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := preloadPost(applyPostDetails(r.db.WithContext(ctx).Model(&models.Post{}), viewerID)).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, notFoundOr(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, viewerID uint, page Page) ([]models.Post, int64, error) {
	defer observability.TrackQuery("list", "posts")()
	base := func() *gorm.DB {
		return applyPostFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, internal(err)
	}

	posts := make([]models.Post, 0)
	if total == 0 {
		return posts, 0, nil
	}
	err := page.apply(preloadPost(applyPostDetails(base(), viewerID)).
		Order("posts.created_at DESC").
		Order("posts.id DESC")).
		Find(&posts).Error
	if err != nil {
		return nil, 0, internal(err)
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, fields map[string]any, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(fields) > 0 {
			res := tx.Model(&models.Post{}).Where("id = ?", id).Updates(fields)
			if res.Error != nil {
				return internal(res.Error)
			}
			if res.RowsAffected == 0 {
				return models.NewNotFoundError("Post", id)
			}
		}
		if tags == nil {
			return nil
		}
		if err := tx.Where("post_id = ?", id).Delete(&postTag{}).Error; err != nil {
			return internal(err)
		}
		return linkTags(tx, id, tags)
	})
}

// Delete removes the post with its comments, note links and join rows.
// Cascades are applied explicitly so databases without enforced foreign
// keys end up in the same state.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{likesTable, followsTable, viewsTable} {
			if err := tx.Table(table).Where("post_id = ?", id).Delete(&postUser{}).Error; err != nil {
				return internal(err)
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&postTag{}).Error; err != nil {
			return internal(err)
		}
		err := tx.Model(&models.Comment{}).
			Where("parent_id IN (SELECT id FROM comments WHERE post_id = ? OR note_id = ?)", id, id).
			Update("parent_id", nil).Error
		if err != nil {
			return internal(err)
		}
		if err := tx.Where("post_id = ? OR note_id = ?", id, id).Delete(&models.Comment{}).Error; err != nil {
			return internal(err)
		}
		err = tx.Model(&models.Post{}).Where("best_note_id = ?", id).Update("best_note_id", nil).Error
		if err != nil {
			return internal(err)
		}

		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return internal(res.Error)
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
}

func (r *postRepository) MarkViewed(ctx context.Context, userID uint, postIDs []uint) error {
	if userID == 0 || len(postIDs) == 0 {
		return nil
	}
	rows := make([]postUser, 0, len(postIDs))
	for _, id := range postIDs {
		rows = append(rows, postUser{PostID: id, UserID: userID})
	}
	err := r.db.WithContext(ctx).Table(viewsTable).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows).Error
	return internal(err)
}

func (r *postRepository) Like(ctx context.Context, postID, userID uint) error {
	return r.addMember(ctx, likesTable, postID, userID)
}

func (r *postRepository) Unlike(ctx context.Context, postID, userID uint) error {
	return r.removeMember(ctx, likesTable, postID, userID)
}

func (r *postRepository) Follow(ctx context.Context, postID, userID uint) error {
	return r.addMember(ctx, followsTable, postID, userID)
}

func (r *postRepository) Unfollow(ctx context.Context, postID, userID uint) error {
	return r.removeMember(ctx, followsTable, postID, userID)
}

func (r *postRepository) addMember(ctx context.Context, table string, postID, userID uint) error {
	row := postUser{PostID: postID, UserID: userID}
	err := r.db.WithContext(ctx).Table(table).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	return internal(err)
}

func (r *postRepository) removeMember(ctx context.Context, table string, postID, userID uint) error {
	err := r.db.WithContext(ctx).Table(table).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&postUser{}).Error
	return internal(err)
}

func (r *postRepository) IsNoteOf(ctx context.Context, questionID, noteID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND note_id = ?", questionID, noteID).
		Count(&count).Error
	if err != nil {
		return false, internal(err)
	}
	return count > 0, nil
}

func (r *postRepository) SetBestNote(ctx context.Context, questionID uint, noteID *uint) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", questionID).
		Update("best_note_id", noteID)
	if res.Error != nil {
		return internal(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", questionID)
	}
	return nil
}

func preloadPost(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("City").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.tag ASC") })
}

// applyPostDetails adds subqueries to fetch counts and per-viewer flags in a single query.
func applyPostDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Select("posts.*, "+
		"(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id) AS count_like, "+
		"(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = posts.id) AS count_comnt, "+
		"EXISTS(SELECT 1 FROM post_likes vl WHERE vl.post_id = posts.id AND vl.user_id = ?) AS is_like, "+
		"EXISTS(SELECT 1 FROM post_follows vf WHERE vf.post_id = posts.id AND vf.user_id = ?) AS is_follow",
		viewerID, viewerID)
}

// likeEscaper makes search text match literally inside LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// applyPostFilter uses EXISTS subqueries rather than joins so a post
// matching several tags is returned once.
func applyPostFilter(db *gorm.DB, f PostFilter) *gorm.DB {
	if f.AuthorID != 0 {
		db = db.Where("posts.author_id = ?", f.AuthorID)
	}
	if len(f.Types) > 0 {
		db = db.Where("posts.type IN ?", f.Types)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		db = db.Where(`(LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.description) LIKE ? ESCAPE '\')`, like, like)
	}
	if len(f.Tags) > 0 {
		db = db.Where("EXISTS (SELECT 1 FROM post_tags ft JOIN tags t ON t.id = ft.tag_id WHERE ft.post_id = posts.id AND t.tag IN ?)", f.Tags)
	}
	if len(f.Cities) > 0 {
		db = db.Where("posts.city_id IN (SELECT id FROM cities WHERE name IN ?)", f.Cities)
	}
	if f.FollowedBy != 0 {
		db = db.Where("EXISTS (SELECT 1 FROM post_follows ff WHERE ff.post_id = posts.id AND ff.user_id = ?)", f.FollowedBy)
	}
	if f.NoteOf != 0 {
		db = db.Where("posts.id IN (SELECT note_id FROM comments WHERE post_id = ? AND note_id IS NOT NULL)", f.NoteOf)
	}
	if f.SimilarTo != 0 {
		db = db.Where("posts.id <> ? AND EXISTS (SELECT 1 FROM post_tags st WHERE st.post_id = posts.id AND st.tag_id IN (SELECT tag_id FROM post_tags WHERE post_id = ?))",
			f.SimilarTo, f.SimilarTo)
	}
	return db
}
