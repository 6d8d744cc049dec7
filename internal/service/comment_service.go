package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	push        PushNotifier
}

type CreateCommentInput struct {
	UserID uint
	PostID uint
	Text   string
	// ParentID makes the comment a reply; the parent must belong to PostID.
	ParentID uint
}

type UpdateCommentInput struct {
	UserID    uint
	PostID    uint
	CommentID uint
	Text      string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	push PushNotifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		push:        push,
	}
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", models.NewValidationError("Comment is required")
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "", models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return text, nil
}

func (s *CommentService) ListComments(ctx context.Context, postID uint, page repository.Page) ([]models.Comment, int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID, 0); err != nil {
		return nil, 0, err
	}
	return s.commentRepo.ListByPost(ctx, postID, page)
}

func (s *CommentService) GetComment(ctx context.Context, postID, commentID uint) (*models.Comment, error) {
	return s.commentRepo.GetByPost(ctx, postID, commentID)
}

// CreateComment stores a comment or, with ParentID set, a reply addressed
// to the parent's author, then notifies the post's audience.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	text, err := validateCommentText(in.Text)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		AuthorID: in.UserID,
		PostID:   post.ID,
		Text:     text,
	}
	if in.ParentID != 0 {
		parent, err := s.commentRepo.GetByPost(ctx, post.ID, in.ParentID)
		if err != nil {
			return nil, err
		}
		comment.ParentID = &parent.ID
		comment.ReplyToID = &parent.AuthorID
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	created, err := s.commentRepo.GetByPost(ctx, post.ID, comment.ID)
	if err != nil {
		return nil, err
	}
	if s.push != nil {
		s.push.CommentCreated(ctx, post, created, &created.Author, created.Note)
	}
	return created, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByPost(ctx, in.PostID, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	text, err := validateCommentText(in.Text)
	if err != nil {
		return nil, err
	}
	if err := s.commentRepo.UpdateText(ctx, comment.ID, text); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByPost(ctx, in.PostID, in.CommentID)
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, postID, commentID uint) error {
	comment, err := s.commentRepo.GetByPost(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	return s.commentRepo.Delete(ctx, comment.ID)
}
