package service

import (
	"context"
	"strings"
	"testing"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
	"friendmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePostTypes(t *testing.T) {
	t.Parallel()

	got, err := ParsePostTypes([]string{"", "0", " 2 ", "  "})
	require.NoError(t, err)
	assert.Equal(t, []models.PostType{models.PostTypeQuestion, models.PostTypeNegative}, got)

	for _, bad := range []string{"3", "-1", "x"} {
		_, err := ParsePostTypes([]string{"1", bad})
		assertValidationError(t, err)
	}
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	t.Parallel()

	// Validation runs before any repository is touched.
	svc := NewPostService(nil, nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreatePostInput
	}{
		{"empty title", CreatePostInput{AuthorID: 1}},
		{"blank title", CreatePostInput{AuthorID: 1, Title: "   "}},
		{"title too long", CreatePostInput{AuthorID: 1, Title: strings.Repeat("x", 101)}},
		{"invalid type", CreatePostInput{AuthorID: 1, Title: "T", TypeContent: intPtr(3)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.CreatePost(ctx, tc.input)
			assertValidationError(t, err)
		})
	}
}

func TestPostService_CreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author@example.com", testutil.WithName("Ann", "Lee"))

	post, err := f.posts.CreatePost(ctx, CreatePostInput{
		AuthorID:    author.ID,
		Title:       "  Best coffee?  ",
		Description: "Looking for a place",
		Tags:        []string{"coffee", "city", "coffee"},
		City:        "Kazan",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PostTypeQuestion, post.TypeContent)
	assert.Equal(t, "Best coffee?", post.Title)
	assert.Equal(t, []string{"city", "coffee"}, post.TagNames())
	assert.Equal(t, "Kazan", post.CityName())
	assert.Equal(t, "Ann Lee", post.Author.FullName())

	require.Len(t, f.push.posts, 1)
	assert.Equal(t, post.ID, f.push.posts[0].ID)

	var cities int64
	f.db.Model(&models.City{}).Count(&cities)
	assert.EqualValues(t, 1, cities)
}

func TestPostService_UpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author@example.com")
	other := testutil.CreateUser(t, f.db, "other@example.com")

	post, err := f.posts.CreatePost(ctx, CreatePostInput{
		AuthorID: author.ID, Title: "Old", Tags: []string{"a", "b"}, City: "Omsk",
	})
	require.NoError(t, err)

	_, err = f.posts.UpdatePost(ctx, UpdatePostInput{UserID: other.ID, PostID: post.ID, Title: strPtr("Hijacked")})
	assertForbiddenError(t, err)

	_, err = f.posts.UpdatePost(ctx, UpdatePostInput{UserID: author.ID, PostID: post.ID, TypeContent: intPtr(7)})
	assertValidationError(t, err)

	updated, err := f.posts.UpdatePost(ctx, UpdatePostInput{
		UserID:      author.ID,
		PostID:      post.ID,
		Title:       strPtr("New"),
		TypeContent: intPtr(int(models.PostTypePositive)),
		Tags:        &[]string{"c"},
		City:        strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, models.PostTypePositive, updated.TypeContent)
	assert.Equal(t, []string{"c"}, updated.TagNames())
	assert.Nil(t, updated.City)

	untouched, err := f.posts.UpdatePost(ctx, UpdatePostInput{UserID: author.ID, PostID: post.ID, Description: strPtr("d")})
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, untouched.TagNames())
	assert.Equal(t, "d", untouched.Description)
}

func TestPostService_DeletePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author@example.com")
	other := testutil.CreateUser(t, f.db, "other@example.com")
	post := testutil.CreatePost(t, f.db, author.ID, models.PostTypeQuestion, "Q")

	assertForbiddenError(t, f.posts.DeletePost(ctx, other.ID, post.ID))
	require.NoError(t, f.posts.DeletePost(ctx, author.ID, post.ID))
	assertNotFoundError(t, f.posts.DeletePost(ctx, author.ID, post.ID))
}

func TestPostService_ListPosts_MarksViewed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author@example.com")
	viewer := testutil.CreateUser(t, f.db, "viewer@example.com")
	for _, title := range []string{"one", "two", "three"} {
		testutil.CreatePost(t, f.db, author.ID, models.PostTypeQuestion, title)
	}

	posts, total, err := f.posts.ListPosts(ctx, ListPostsInput{
		ViewerID:   viewer.ID,
		Page:       repository.Page{Limit: 2},
		MarkViewed: true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, posts, 2)
	assert.Equal(t, "three", posts[0].Title)

	var viewed int64
	require.NoError(t, f.db.Table("post_views").Where("user_id = ?", viewer.ID).Count(&viewed).Error)
	assert.EqualValues(t, 2, viewed)

	_, _, err = f.posts.ListPosts(ctx, ListPostsInput{ViewerID: author.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Table("post_views").Where("user_id = ?", author.ID).Count(&viewed).Error)
	assert.Zero(t, viewed)
}

func TestPostService_GetExtended(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "asker@example.com")
	adviser := testutil.CreateUser(t, f.db, "adviser@example.com")

	question, err := f.posts.CreatePost(ctx, CreatePostInput{AuthorID: asker.ID, Title: "Where to ski?", Tags: []string{"ski"}})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := f.notes.CreateNote(ctx, question.ID, CreatePostInput{
			AuthorID: adviser.ID, TypeContent: intPtr(1), Title: "Resort", Tags: []string{"ski"},
		})
		require.NoError(t, err)
	}

	ext, err := f.posts.GetExtended(ctx, question.ID, asker.ID)
	require.NoError(t, err)
	assert.Nil(t, ext.Comments)
	assert.Len(t, ext.Notes, repository.DefaultPreviewSize)
	assert.Len(t, ext.Similar, repository.DefaultPreviewSize)
	assert.EqualValues(t, 4, ext.CountSimilar)
	for _, p := range ext.Similar {
		assert.NotEqual(t, question.ID, p.ID)
	}

	note := ext.Notes[0]
	_, err = f.comments.CreateComment(ctx, CreateCommentInput{UserID: asker.ID, PostID: note.ID, Text: "Thanks"})
	require.NoError(t, err)

	noteExt, err := f.posts.GetExtended(ctx, note.ID, asker.ID)
	require.NoError(t, err)
	assert.Nil(t, noteExt.Notes)
	require.Len(t, noteExt.Comments, 1)
	assert.Equal(t, "Thanks", noteExt.Comments[0].Text)

	_, err = f.posts.GetExtended(ctx, 9999, asker.ID)
	assertNotFoundError(t, err)
}

func TestPostService_ListSimilar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author@example.com")

	base, err := f.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Title: "base", Tags: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Title: "both", Tags: []string{"a", "b"}})
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, CreatePostInput{AuthorID: author.ID, Title: "none", Tags: []string{"z"}})
	require.NoError(t, err)

	similar, total, err := f.posts.ListSimilar(ctx, base.ID, author.ID, repository.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, similar, 1)
	assert.Equal(t, "both", similar[0].Title)

	_, _, err = f.posts.ListSimilar(ctx, 9999, author.ID, repository.Page{})
	assertNotFoundError(t, err)
}

func TestPostService_Attach(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	asker := testutil.CreateUser(t, f.db, "asker@example.com")
	me := testutil.CreateUser(t, f.db, "me@example.com")

	question := testutil.CreatePost(t, f.db, asker.ID, models.PostTypeQuestion, "Q")
	mine := testutil.CreatePost(t, f.db, me.ID, models.PostTypePositive, "mine")
	myQuestion := testutil.CreatePost(t, f.db, me.ID, models.PostTypeQuestion, "my question")
	foreign := testutil.CreatePost(t, f.db, asker.ID, models.PostTypeNegative, "foreign")

	_, err := f.posts.Attach(ctx, me.ID, question.ID, nil)
	assertValidationError(t, err)

	_, err = f.posts.Attach(ctx, me.ID, mine.ID, []uint{mine.ID})
	assertNotFoundError(t, err)

	n, err := f.posts.Attach(ctx, me.ID, question.ID, []uint{mine.ID, mine.ID, myQuestion.ID, foreign.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, f.push.comments, 1)
	pushed := f.push.comments[0]
	assert.Equal(t, question.ID, pushed.Post.ID)
	require.NotNil(t, pushed.Note)
	assert.Equal(t, mine.ID, pushed.Note.ID)

	n, err = f.posts.Attach(ctx, me.ID, question.ID, []uint{mine.ID})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, f.push.comments, 1)
}

func TestPostService_LikeAndFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, f.db, "author@example.com")
	fan := testutil.CreateUser(t, f.db, "fan@example.com")
	post := testutil.CreatePost(t, f.db, author.ID, models.PostTypePositive, "P")

	liked, err := f.posts.LikePost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, liked.IsLike)
	assert.Equal(t, 1, liked.CountLike)

	liked, err = f.posts.LikePost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.CountLike)

	unliked, err := f.posts.UnlikePost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, unliked.IsLike)
	assert.Zero(t, unliked.CountLike)

	followed, err := f.posts.FollowPost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, followed.IsFollow)

	unfollowed, err := f.posts.UnfollowPost(ctx, fan.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, unfollowed.IsFollow)

	_, err = f.posts.LikePost(ctx, fan.ID, 9999)
	assertNotFoundError(t, err)
}
