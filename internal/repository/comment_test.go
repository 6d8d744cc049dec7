package repository

import (
	"context"
	"testing"
	"time"

	"friendmarket/internal/models"
	"friendmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)
	alice := testutil.CreateUser(t, db, "alice@example.com", testutil.WithName("Alice", "A"))
	bob := testutil.CreateUser(t, db, "bob@example.com")
	post := testutil.CreatePost(t, db, alice.ID, models.PostTypePositive, "p")
	other := testutil.CreatePost(t, db, alice.ID, models.PostTypePositive, "other")

	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	first := &models.Comment{AuthorID: alice.ID, PostID: post.ID, Text: "first", CreatedAt: base}
	require.NoError(t, repo.Create(ctx, first))
	reply := &models.Comment{AuthorID: bob.ID, PostID: post.ID, Text: "reply", ParentID: &first.ID, ReplyToID: &alice.ID, CreatedAt: base.Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, reply))

	list, total, err := repo.ListByPost(ctx, post.ID, Page{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, "Alice A", list[1].ReplyTo.FullName())

	_, err = repo.GetByPost(ctx, other.ID, first.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	require.NoError(t, repo.UpdateText(ctx, first.ID, "edited"))
	got, err := repo.GetByPost(ctx, post.ID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Text)
	assert.Equal(t, alice.Email, got.Author.Email)

	require.NoError(t, repo.Delete(ctx, first.ID))
	got, err = repo.GetByPost(ctx, post.ID, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ParentID)

	assert.True(t, models.IsCode(repo.Delete(ctx, first.ID), models.CodeNotFound))
}

func TestCommentRepository_NoteLink(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewCommentRepository(db)
	u := testutil.CreateUser(t, db, "u@example.com")
	question := testutil.CreatePost(t, db, u.ID, models.PostTypeQuestion, "q")
	note := testutil.CreatePost(t, db, u.ID, models.PostTypeNegative, "n")

	_, err := repo.NoteLink(ctx, question.ID, note.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	_, err = repo.AttachNote(ctx, u.ID, question.ID, note.ID)
	require.NoError(t, err)
	link, err := repo.NoteLink(ctx, question.ID, note.ID)
	require.NoError(t, err)
	require.NotNil(t, link.Note)
	assert.Equal(t, "n", link.Note.Title)
}
