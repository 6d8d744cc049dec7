package service

import (
	"context"
	"log/slog"

	"friendmarket/internal/imaging"
	"friendmarket/internal/middleware"
	"friendmarket/internal/models"
	"friendmarket/internal/repository"
)

type UploadImageInput struct {
	UserID      uint
	ContentType string
	Content     []byte
}

// ImageService stores resized profile photos and post images.
type ImageService struct {
	store    *imaging.Store
	userRepo repository.UserRepository
	postRepo repository.PostRepository
}

func NewImageService(store *imaging.Store, userRepo repository.UserRepository, postRepo repository.PostRepository) *ImageService {
	return &ImageService{
		store:    store,
		userRepo: userRepo,
		postRepo: postRepo,
	}
}

// UploadProfilePhoto replaces the caller's photo with a 400px square crop.
func (s *ImageService) UploadProfilePhoto(ctx context.Context, in UploadImageInput) (*models.User, error) {
	user, err := s.userRepo.GetAccount(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	rel, err := s.store.Save(ctx, in.Content, in.ContentType, imaging.ProfilePhoto)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateFields(ctx, user.ID, map[string]any{"profile_photo": rel}); err != nil {
		s.store.Remove(rel)
		return nil, err
	}
	s.replaced(ctx, user.ProfilePhoto, rel)
	return s.userRepo.GetAccount(ctx, user.ID)
}

// UploadPostImage replaces a post's image with an 800px 16:9 crop. Only the
// author may upload.
func (s *ImageService) UploadPostImage(ctx context.Context, postID uint, in UploadImageInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, in.UserID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only change images of your own posts")
	}
	rel, err := s.store.Save(ctx, in.Content, in.ContentType, imaging.PostImage)
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Update(ctx, post.ID, map[string]any{"image": rel}, nil); err != nil {
		s.store.Remove(rel)
		return nil, err
	}
	s.replaced(ctx, post.Image, rel)
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *ImageService) replaced(ctx context.Context, old, rel string) {
	if old == "" || old == rel {
		return
	}
	s.store.Remove(old)
	middleware.Logger.DebugContext(ctx, "image replaced", slog.String("old", old), slog.String("new", rel))
}

// URL maps a stored relative path to its public URL.
func (s *ImageService) URL(rel string) string {
	return s.store.URL(rel)
}
