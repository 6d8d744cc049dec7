package service

import (
	"context"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
)

// FriendService manages the directed user-to-user follow graph.
type FriendService struct {
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
}

// NewFriendService returns a new FriendService.
func NewFriendService(friendRepo repository.FriendRepository, userRepo repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

// ListFriends lists every other non-staff user with the viewer's follow state.
func (s *FriendService) ListFriends(ctx context.Context, viewerID uint, page repository.Page) ([]models.FriendListing, int64, error) {
	return s.friendRepo.ListCandidates(ctx, viewerID, page)
}

// Follow subscribes userID to posts by targetID.
func (s *FriendService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("Cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.friendRepo.Follow(ctx, userID, targetID)
}

// Unfollow drops every edge from userID to targetID. Missing edges are fine.
func (s *FriendService) Unfollow(ctx context.Context, userID, targetID uint) error {
	return s.friendRepo.Unfollow(ctx, userID, targetID)
}
