package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
)

// PushNotifier fans out notifications for new content. Implementations
// must not block the caller.
type PushNotifier interface {
	PostCreated(ctx context.Context, post *models.Post, author *models.User)
	CommentCreated(ctx context.Context, post *models.Post, comment *models.Comment, author *models.User, note *models.Post)
}

type PostService struct {
	postRepo     repository.PostRepository
	commentRepo  repository.CommentRepository
	taxonomyRepo repository.TaxonomyRepository
	push         PushNotifier
}

type CreatePostInput struct {
	AuthorID    uint
	TypeContent *int
	Title       string
	Description string
	Tags        []string
	City        string
}

// UpdatePostInput carries a partial update. Nil fields are left untouched;
// an empty Tags slice clears the tags and an empty City unsets the city.
type UpdatePostInput struct {
	UserID      uint
	PostID      uint
	TypeContent *int
	Title       *string
	Description *string
	Tags        *[]string
	City        *string
}

type ListPostsInput struct {
	ViewerID uint
	Filter   repository.PostFilter
	Page     repository.Page
	// MarkViewed records every returned post as seen by the viewer.
	MarkViewed bool
}

// PostExtended is a post with its preview collections. Comments is nil for
// questions and Notes is nil for recommendations.
type PostExtended struct {
	Post         *models.Post
	Comments     []models.Comment
	Notes        []models.Post
	Similar      []models.Post
	CountSimilar int64
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	taxonomyRepo repository.TaxonomyRepository,
	push PushNotifier,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		commentRepo:  commentRepo,
		taxonomyRepo: taxonomyRepo,
		push:         push,
	}
}

// ParsePostTypes converts raw "type" query values. Blank values are dropped;
// anything that is not 0, 1 or 2 is a validation error.
func ParsePostTypes(values []string) ([]models.PostType, error) {
	out := make([]models.PostType, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || !models.PostType(n).Valid() {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid post type %q", v))
		}
		out = append(out, models.PostType(n))
	}
	return out, nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return "", models.NewValidationError("Title too long (max 100 characters)")
	}
	return title, nil
}

func validateType(raw *int, fallback models.PostType) (models.PostType, error) {
	if raw == nil {
		return fallback, nil
	}
	t := models.PostType(*raw)
	if !t.Valid() {
		return 0, models.NewValidationError("typeContent must be 0, 1 or 2")
	}
	return t, nil
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]models.Post, int64, error) {
	posts, total, err := s.postRepo.List(ctx, in.Filter, in.ViewerID, in.Page)
	if err != nil {
		return nil, 0, err
	}
	if in.MarkViewed && len(posts) > 0 {
		ids := make([]uint, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		if err := s.postRepo.MarkViewed(ctx, in.ViewerID, ids); err != nil {
			return nil, 0, err
		}
	}
	return posts, total, nil
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, viewerID)
}

// CreatePost stores a post, creating its tags and city on demand, and
// notifies the author's followers.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	post, err := s.create(ctx, in, models.PostTypeQuestion)
	if err != nil {
		return nil, err
	}
	if s.push != nil {
		s.push.PostCreated(ctx, post, &post.Author)
	}
	return post, nil
}

func (s *PostService) create(ctx context.Context, in CreatePostInput, fallback models.PostType) (*models.Post, error) {
	typ, err := validateType(in.TypeContent, fallback)
	if err != nil {
		return nil, err
	}
	title, err := validateTitle(in.Title)
	if err != nil {
		return nil, err
	}

	tags, err := s.taxonomyRepo.EnsureTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}
	city, err := s.taxonomyRepo.EnsureCity(ctx, in.City)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:    in.AuthorID,
		TypeContent: typ,
		Title:       title,
		Description: in.Description,
	}
	if city != nil {
		post.CityID = &city.ID
	}
	if err := s.postRepo.Create(ctx, post, tags); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.AuthorID)
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	return s.applyUpdate(ctx, post, in)
}

func (s *PostService) applyUpdate(ctx context.Context, post *models.Post, in UpdatePostInput) (*models.Post, error) {
	fields := make(map[string]any)
	if in.TypeContent != nil {
		typ, err := validateType(in.TypeContent, post.TypeContent)
		if err != nil {
			return nil, err
		}
		fields["type"] = typ
	}
	if in.Title != nil {
		title, err := validateTitle(*in.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.City != nil {
		city, err := s.taxonomyRepo.EnsureCity(ctx, *in.City)
		if err != nil {
			return nil, err
		}
		if city == nil {
			fields["city_id"] = nil
		} else {
			fields["city_id"] = city.ID
		}
	}

	var tags []models.Tag
	if in.Tags != nil {
		ensured, err := s.taxonomyRepo.EnsureTags(ctx, *in.Tags)
		if err != nil {
			return nil, err
		}
		tags = ensured
	}

	if err := s.postRepo.Update(ctx, post.ID, fields, tags); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.postRepo.GetByID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, postID)
}

// GetExtended returns the post with up to three comments or notes and
// three posts sharing a tag.
func (s *PostService) GetExtended(ctx context.Context, postID, viewerID uint) (*PostExtended, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	preview := repository.Page{Limit: repository.DefaultPreviewSize}
	out := &PostExtended{Post: post}

	if post.TypeContent == models.PostTypeQuestion {
		notes, _, err := s.postRepo.List(ctx, repository.PostFilter{NoteOf: post.ID}, viewerID, preview)
		if err != nil {
			return nil, err
		}
		out.Notes = notes
	} else {
		comments, _, err := s.commentRepo.ListByPost(ctx, post.ID, preview)
		if err != nil {
			return nil, err
		}
		out.Comments = comments
	}

	similar, total, err := s.postRepo.List(ctx, repository.PostFilter{SimilarTo: post.ID}, viewerID, preview)
	if err != nil {
		return nil, err
	}
	out.Similar = similar
	out.CountSimilar = total
	return out, nil
}

// ListSimilar lists posts sharing at least one tag with postID.
func (s *PostService) ListSimilar(ctx context.Context, postID, viewerID uint, page repository.Page) ([]models.Post, int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, viewerID); err != nil {
		return nil, 0, err
	}
	return s.postRepo.List(ctx, repository.PostFilter{SimilarTo: postID}, viewerID, page)
}

// Attach links the caller's own recommendations to a question. Ids that
// are missing, foreign or not recommendations are skipped, as are notes
// already attached. It returns the number of links created.
func (s *PostService) Attach(ctx context.Context, userID, questionID uint, noteIDs []uint) (int, error) {
	if len(noteIDs) == 0 {
		return 0, models.NewValidationError("attach must contain at least one id")
	}
	question, err := s.requireQuestion(ctx, questionID, userID)
	if err != nil {
		return 0, err
	}

	created := 0
	seen := make(map[uint]struct{}, len(noteIDs))
	for _, id := range noteIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		note, err := s.postRepo.GetByID(ctx, id, userID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				continue
			}
			return created, err
		}
		if note.AuthorID != userID || !note.TypeContent.IsNote() {
			continue
		}
		ok, err := s.commentRepo.AttachNote(ctx, userID, question.ID, note.ID)
		if err != nil {
			return created, err
		}
		if !ok {
			continue
		}
		created++
		s.notifyNoteLink(ctx, question, note)
	}
	return created, nil
}

func (s *PostService) notifyNoteLink(ctx context.Context, question, note *models.Post) {
	if s.push == nil {
		return
	}
	link, err := s.commentRepo.NoteLink(ctx, question.ID, note.ID)
	if err != nil {
		return
	}
	s.push.CommentCreated(ctx, question, link, &link.Author, note)
}

// requireQuestion loads postID and fails with NOT_FOUND unless it is a question.
func (s *PostService) requireQuestion(ctx context.Context, postID, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, viewerID)
	if err != nil {
		return nil, err
	}
	if post.TypeContent != models.PostTypeQuestion {
		return nil, models.NewNotFoundError("Question", postID)
	}
	return post, nil
}

func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggle(ctx, userID, postID, s.postRepo.Like)
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggle(ctx, userID, postID, s.postRepo.Unlike)
}

func (s *PostService) FollowPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggle(ctx, userID, postID, s.postRepo.Follow)
}

func (s *PostService) UnfollowPost(ctx context.Context, userID, postID uint) (*models.Post, error) {
	return s.toggle(ctx, userID, postID, s.postRepo.Unfollow)
}

func (s *PostService) toggle(ctx context.Context, userID, postID uint, op func(context.Context, uint, uint) error) (*models.Post, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, userID); err != nil {
		return nil, err
	}
	if err := op(ctx, postID, userID); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, postID, userID)
}
