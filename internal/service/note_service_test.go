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
)

func TestNoteService_CreateNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "asker@example.com")
	adviser := testutil.CreateUser(t, f.db, "adviser@example.com", testutil.WithName("Bob", ""))
	question := testutil.CreatePost(t, f.db, asker.ID, models.PostTypeQuestion, "Where to eat?")
	recommendation := testutil.CreatePost(t, f.db, asker.ID, models.PostTypePositive, "Try this")

	_, err := f.notes.CreateNote(ctx, question.ID, CreatePostInput{AuthorID: adviser.ID, Title: "No type"})
	assertValidationError(t, err)

	_, err = f.notes.CreateNote(ctx, question.ID, CreatePostInput{AuthorID: adviser.ID, Title: "Question", TypeContent: intPtr(0)})
	assertValidationError(t, err)

	_, err = f.notes.CreateNote(ctx, recommendation.ID, CreatePostInput{AuthorID: adviser.ID, Title: "x", TypeContent: intPtr(1)})
	assertNotFoundError(t, err)

	note, err := f.notes.CreateNote(ctx, question.ID, CreatePostInput{
		AuthorID: adviser.ID, Title: "Pizza place", TypeContent: intPtr(int(models.PostTypePositive)),
	})
	require.NoError(t, err)
	assert.Equal(t, adviser.ID, note.AuthorID)

	attached, err := repository.NewPostRepository(f.db).IsNoteOf(ctx, question.ID, note.ID)
	require.NoError(t, err)
	assert.True(t, attached)

	require.Len(t, f.push.posts, 1)
	assert.Equal(t, note.ID, f.push.posts[0].ID)
	require.Len(t, f.push.comments, 1)
	pushed := f.push.comments[0]
	assert.Equal(t, question.ID, pushed.Post.ID)
	assert.Equal(t, "Pizza place", pushed.Note.Title)
	assert.Equal(t, "Bob", pushed.Author.FullName())
}

func TestNoteService_GetAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "asker@example.com")
	adviser := testutil.CreateUser(t, f.db, "adviser@example.com")
	question := testutil.CreatePost(t, f.db, asker.ID, models.PostTypeQuestion, "Q")
	loose := testutil.CreatePost(t, f.db, adviser.ID, models.PostTypePositive, "not attached")

	note, err := f.notes.CreateNote(ctx, question.ID, CreatePostInput{AuthorID: adviser.ID, Title: "A", TypeContent: intPtr(2)})
	require.NoError(t, err)

	got, err := f.notes.GetNote(ctx, question.ID, note.ID, asker.ID)
	require.NoError(t, err)
	assert.Equal(t, note.ID, got.ID)

	_, err = f.notes.GetNote(ctx, question.ID, loose.ID, asker.ID)
	assertNotFoundError(t, err)

	_, err = f.notes.UpdateNote(ctx, question.ID, UpdatePostInput{UserID: asker.ID, PostID: note.ID, Title: strPtr("mine now")})
	assertForbiddenError(t, err)

	_, err = f.notes.UpdateNote(ctx, question.ID, UpdatePostInput{UserID: adviser.ID, PostID: note.ID, TypeContent: intPtr(0)})
	assertValidationError(t, err)

	updated, err := f.notes.UpdateNote(ctx, question.ID, UpdatePostInput{UserID: adviser.ID, PostID: note.ID, Title: strPtr("B")})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)
}

func TestNoteService_BestNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "asker@example.com")
	adviser := testutil.CreateUser(t, f.db, "adviser@example.com")
	question := testutil.CreatePost(t, f.db, asker.ID, models.PostTypeQuestion, "Q")
	loose := testutil.CreatePost(t, f.db, adviser.ID, models.PostTypePositive, "not attached")

	note, err := f.notes.CreateNote(ctx, question.ID, CreatePostInput{AuthorID: adviser.ID, Title: "A", TypeContent: intPtr(1)})
	require.NoError(t, err)

	_, err = f.notes.SetBest(ctx, adviser.ID, question.ID, note.ID)
	assertForbiddenError(t, err)

	_, err = f.notes.SetBest(ctx, asker.ID, question.ID, loose.ID)
	assertNotFoundError(t, err)

	q, err := f.notes.SetBest(ctx, asker.ID, question.ID, note.ID)
	require.NoError(t, err)
	require.NotNil(t, q.BestNoteID)
	assert.Equal(t, note.ID, *q.BestNoteID)

	notes, total, best, err := f.notes.ListNotes(ctx, question.ID, asker.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, notes, 1)
	require.NotNil(t, best)
	assert.Equal(t, note.ID, *best)

	_, err = f.notes.ClearBest(ctx, adviser.ID, question.ID)
	assertForbiddenError(t, err)

	q, err = f.notes.ClearBest(ctx, asker.ID, question.ID)
	require.NoError(t, err)
	assert.Nil(t, q.BestNoteID)

	best, err = f.notes.BestNoteOf(ctx, question.ID)
	require.NoError(t, err)
	assert.Nil(t, best)

	_, _, _, err = f.notes.ListNotes(ctx, note.ID, asker.ID, repository.Page{})
	assertNotFoundError(t, err)
}

// failingLinks makes attaching a note fail.
type failingLinks struct {
	repository.CommentRepository
}

func (failingLinks) AttachNote(context.Context, uint, uint, uint) (bool, error) {
	return false, models.NewInternalError(errors.New("link insert failed"))
}

func TestNoteService_CreateNote_LinkFailureLeavesNoOrphan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "asker@example.com")
	adviser := testutil.CreateUser(t, f.db, "adviser@example.com")
	question := testutil.CreatePost(t, f.db, asker.ID, models.PostTypeQuestion, "Where to eat?")

	notes := NewNoteService(f.posts)
	notes.commentRepo = failingLinks{CommentRepository: notes.commentRepo}

	_, err := notes.CreateNote(ctx, question.ID, CreatePostInput{
		AuthorID: adviser.ID, Title: "Pizza place", TypeContent: intPtr(int(models.PostTypePositive)),
	})
	assertAppError(t, err, models.CodeInternal)

	var posts int64
	require.NoError(t, f.db.Model(&models.Post{}).Where("author_id = ?", adviser.ID).Count(&posts).Error)
	assert.Zero(t, posts)
	assert.Empty(t, f.push.posts)
	assert.Empty(t, f.push.comments)
}
