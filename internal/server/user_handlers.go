package server

import (
	"friendmarket/internal/models"
	"friendmarket/internal/repository"
	"friendmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/profile
// @Summary Own profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileView
// @Router /profile [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.profileView(user))
}

// UpdateMyProfile handles PUT|PATCH /api/profile
// @Summary Update own profile
// @Description Absent fields are left untouched; email is read-only
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{name=string,username=string,phone=string,birthday=string,gender=string,enable_notif=bool,android_regid=string} true "Profile fields"
// @Success 200 {object} ProfileView
// @Failure 400 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name         *string `json:"name"`
		Username     *string `json:"username"`
		Phone        *string `json:"phone"`
		Birthday     *string `json:"birthday"`
		Gender       *string `json:"gender"`
		EnableNotif  *bool   `json:"enable_notif"`
		AndroidRegID *string `json:"android_regid"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:       currentUserID(c),
		Name:         req.Name,
		Username:     req.Username,
		Phone:        req.Phone,
		Birthday:     req.Birthday,
		Gender:       req.Gender,
		EnableNotif:  req.EnableNotif,
		AndroidRegID: req.AndroidRegID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.profileView(user))
}

// GetMyQuestions handles GET /api/profile/questions
// @Summary Own questions
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} PostView
// @Router /profile/questions [get]
func (s *Server) GetMyQuestions(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return s.listPosts(c, repository.PostFilter{
		AuthorID: userID,
		Types:    []models.PostType{models.PostTypeQuestion},
	}, false)
}

// GetMyNotes handles GET /api/profile/notes
// @Summary Own recommendations
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PostView
// @Router /profile/notes [get]
func (s *Server) GetMyNotes(c *fiber.Ctx) error {
	userID := currentUserID(c)
	return s.listPosts(c, repository.PostFilter{
		AuthorID: userID,
		Types:    []models.PostType{models.PostTypePositive, models.PostTypeNegative},
	}, false)
}

// GetMyFollows handles GET /api/profile/follows
// @Summary Followed posts
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {array} PostView
// @Router /profile/follows [get]
func (s *Server) GetMyFollows(c *fiber.Ctx) error {
	return s.listPosts(c, repository.PostFilter{FollowedBy: currentUserID(c)}, false)
}

// GetUsers handles GET /api/users
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} UserView
// @Router /users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	users, total, err := s.userService.ListUsers(c.UserContext(), parsePagination(c, defaultPaginationLimit))
	if err != nil {
		return mapServiceError(c, err)
	}
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, s.userView(&users[i]))
	}
	return respondList(c, out, total)
}

// GetUser handles GET /api/users/:user
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param user path int true "User ID"
// @Success 200 {object} UserView
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{user} [get]
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "user")
	if err != nil {
		return nil
	}

	user, err := s.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.userView(user))
}
