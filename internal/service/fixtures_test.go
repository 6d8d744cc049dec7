package service

import (
	"context"
	"errors"
	"testing"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
	"friendmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pushedComment struct {
	Post    *models.Post
	Comment *models.Comment
	Author  *models.User
	Note    *models.Post
}

// recordingPush captures notifications synchronously.
type recordingPush struct {
	posts    []*models.Post
	comments []pushedComment
}

func (r *recordingPush) PostCreated(_ context.Context, post *models.Post, _ *models.User) {
	r.posts = append(r.posts, post)
}

func (r *recordingPush) CommentCreated(_ context.Context, post *models.Post, comment *models.Comment, author *models.User, note *models.Post) {
	r.comments = append(r.comments, pushedComment{Post: post, Comment: comment, Author: author, Note: note})
}

type fixture struct {
	db       *gorm.DB
	push     *recordingPush
	users    repository.UserRepository
	posts    *PostService
	notes    *NoteService
	comments *CommentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	push := &recordingPush{}
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	posts := NewPostService(postRepo, commentRepo, repository.NewTaxonomyRepository(db), push)
	return &fixture{
		db:       db,
		push:     push,
		users:    repository.NewUserRepository(db),
		posts:    posts,
		notes:    NewNoteService(posts),
		comments: NewCommentService(commentRepo, postRepo, push),
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// assertAppError asserts that err is an AppError carrying code.
func assertAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeForbidden)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppError(t, err, models.CodeNotFound)
}
