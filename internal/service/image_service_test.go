package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"friendmarket/internal/config"
	"friendmarket/internal/imaging"
	"friendmarket/internal/models"
	"friendmarket/internal/repository"
	"friendmarket/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newImageService(t *testing.T) (*ImageService, *gorm.DB, string) {
	t.Helper()
	db := testutil.NewTestDB(t)
	dir := t.TempDir()
	store := imaging.NewStore(&config.Config{UploadDir: dir, MediaURL: "/media"})
	return NewImageService(store, repository.NewUserRepository(db), repository.NewPostRepository(db)), db, dir
}

func TestImageService_UploadProfilePhoto(t *testing.T) {
	svc, db, dir := newImageService(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "a@example.com")
	assert.Equal(t, models.DefaultProfilePhoto, user.ProfilePhoto)

	got, err := svc.UploadProfilePhoto(ctx, UploadImageInput{
		UserID: user.ID, ContentType: "image/png", Content: testutil.TinyPNG(t, 900, 600),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got.ProfilePhoto, "profile_photos/"))
	assert.True(t, strings.HasSuffix(got.ProfilePhoto, ".jpg"))
	first := filepath.Join(dir, got.ProfilePhoto)
	assert.FileExists(t, first)

	again, err := svc.UploadProfilePhoto(ctx, UploadImageInput{
		UserID: user.ID, ContentType: "image/jpeg", Content: testutil.TinyJPEG(t, 100, 100),
	})
	require.NoError(t, err)
	assert.NotEqual(t, got.ProfilePhoto, again.ProfilePhoto)
	_, statErr := os.Stat(first)
	assert.True(t, os.IsNotExist(statErr), "replaced photo should be removed")

	_, err = svc.UploadProfilePhoto(ctx, UploadImageInput{UserID: user.ID, Content: []byte("not an image")})
	assertValidationError(t, err)

	_, err = svc.UploadProfilePhoto(ctx, UploadImageInput{UserID: 9999, Content: testutil.TinyPNG(t, 10, 10)})
	assertNotFoundError(t, err)

	assert.Equal(t, "/media/"+again.ProfilePhoto, svc.URL(again.ProfilePhoto))
}

func TestImageService_UploadPostImage(t *testing.T) {
	svc, db, dir := newImageService(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author@example.com")
	other := testutil.CreateUser(t, db, "other@example.com")
	post := testutil.CreatePost(t, db, author.ID, models.PostTypePositive, "P")

	_, err := svc.UploadPostImage(ctx, post.ID, UploadImageInput{UserID: other.ID, Content: testutil.TinyPNG(t, 10, 10)})
	assertForbiddenError(t, err)

	got, err := svc.UploadPostImage(ctx, post.ID, UploadImageInput{
		UserID: author.ID, ContentType: "image/png", Content: testutil.TinyPNG(t, 1600, 1200),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(got.Image, "post_images/"))
	assert.FileExists(t, filepath.Join(dir, got.Image))

	_, err = svc.UploadPostImage(ctx, 9999, UploadImageInput{UserID: author.ID, Content: testutil.TinyPNG(t, 10, 10)})
	assertNotFoundError(t, err)
}
