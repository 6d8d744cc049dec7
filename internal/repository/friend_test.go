package repository

import (
	"context"
	"testing"

	"friendmarket/internal/models"
	"friendmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository_FollowIsUpsert(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewFriendRepository(db)
	a := testutil.CreateUser(t, db, "a@example.com")
	b := testutil.CreateUser(t, db, "b@example.com")

	require.NoError(t, db.Create(&models.Friend{AuthorID: a.ID, FriendID: b.ID, Follow: false}).Error)
	ok, err := repo.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Follow(ctx, a.ID, b.ID))
	require.NoError(t, repo.Follow(ctx, a.ID, b.ID))

	var rows []models.Friend
	require.NoError(t, db.Where("author_id = ?", a.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Follow)

	require.NoError(t, repo.Unfollow(ctx, a.ID, b.ID))
	ok, err = repo.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFriendRepository_ListCandidates(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewFriendRepository(db)
	me := testutil.CreateUser(t, db, "me@example.com")
	alice := testutil.CreateUser(t, db, "alice@example.com")
	bob := testutil.CreateUser(t, db, "bob@example.com")
	testutil.CreateUser(t, db, "admin@example.com", testutil.Staff())

	require.NoError(t, repo.Follow(ctx, me.ID, bob.ID))

	list, total, err := repo.ListCandidates(ctx, me.ID, Page{Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, list, 2)
	assert.Equal(t, alice.ID, list[0].ID)
	assert.False(t, list[0].IsFollow)
	assert.Equal(t, bob.ID, list[1].ID)
	assert.True(t, list[1].IsFollow)
}
