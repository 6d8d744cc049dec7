package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFriends handles GET /api/friends
// @Summary List friend candidates
// @Description Every user except the caller and staff, with whether the caller follows them
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} FriendView
// @Router /friends [get]
func (s *Server) GetFriends(c *fiber.Ctx) error {
	listings, total, err := s.friendService.ListFriends(c.UserContext(), currentUserID(c),
		parsePagination(c, defaultPaginationLimit))
	if err != nil {
		return mapServiceError(c, err)
	}

	out := make([]FriendView, 0, len(listings))
	for i := range listings {
		u := &listings[i].User
		out = append(out, FriendView{
			ID:           u.ID,
			Name:         u.FullName(),
			Email:        u.Email,
			ProfilePhoto: s.images.URL(u.ProfilePhoto),
			IsFollow:     listings[i].IsFollow,
		})
	}
	return respondList(c, out, total)
}

// FollowFriend handles POST /api/friends/:id/follow
// @Summary Follow a user
// @Tags friends
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} object{isFollow=bool}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /friends/{id}/follow [post]
func (s *Server) FollowFriend(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.friendService.Follow(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"isFollow": true})
}

// UnfollowFriend handles DELETE /api/friends/:id/follow
// @Summary Unfollow a user
// @Tags friends
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /friends/{id}/follow [delete]
func (s *Server) UnfollowFriend(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.friendService.Unfollow(c.UserContext(), currentUserID(c), id); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
