package server

import (
	"friendmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Comment string `json:"comment"`
}

// GetComments handles GET /api/posts/:post/comments
// @Summary List comments
// @Description Oldest first
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/comments [get]
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}

	comments, total, err := s.commentService.ListComments(c.UserContext(), postID,
		parsePagination(c, defaultPaginationLimit))
	if err != nil {
		return mapServiceError(c, err)
	}
	return respondList(c, s.commentViews(comments, currentUserID(c)), total)
}

// CreateComment handles POST /api/posts/:post/comments
// @Summary Create comment
// @Description Followers and the author of the post are notified
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param request body object{comment=string} true "Comment"
// @Success 201 {object} CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	return s.createComment(c, postID, 0)
}

// ReplyComment handles POST /api/posts/:post/comments/:id/reply
// @Summary Reply to a comment
// @Description The reply is addressed to the parent comment's author
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param id path int true "Parent comment ID"
// @Param request body object{comment=string} true "Comment"
// @Success 201 {object} CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/comments/{id}/reply [post]
func (s *Server) ReplyComment(c *fiber.Ctx) error {
	postID, commentID, err := s.commentIDs(c)
	if err != nil {
		return nil
	}
	return s.createComment(c, postID, commentID)
}

func (s *Server) createComment(c *fiber.Ctx, postID, parentID uint) error {
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	userID := currentUserID(c)

	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:   userID,
		PostID:   postID,
		Text:     req.Comment,
		ParentID: parentID,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.commentView(comment, userID))
}

// commentIDs parses the post and comment route params.
func (s *Server) commentIDs(c *fiber.Ctx) (postID, commentID uint, err error) {
	if postID, err = s.parseID(c, "post"); err != nil {
		return 0, 0, err
	}
	if commentID, err = s.parseID(c, "id"); err != nil {
		return 0, 0, err
	}
	return postID, commentID, nil
}

// GetComment handles GET /api/posts/:post/comments/:id
// @Summary Get comment
// @Tags comments
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param id path int true "Comment ID"
// @Success 200 {object} CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	postID, commentID, err := s.commentIDs(c)
	if err != nil {
		return nil
	}

	comment, err := s.commentService.GetComment(c.UserContext(), postID, commentID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.commentView(comment, currentUserID(c)))
}

// UpdateComment handles PUT|PATCH /api/posts/:post/comments/:id
// @Summary Update comment
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param id path int true "Comment ID"
// @Param request body object{comment=string} true "Comment"
// @Success 200 {object} CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	postID, commentID, err := s.commentIDs(c)
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	userID := currentUserID(c)

	comment, err := s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    userID,
		PostID:    postID,
		CommentID: commentID,
		Text:      req.Comment,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.commentView(comment, userID))
}

// DeleteComment handles DELETE /api/posts/:post/comments/:id
// @Summary Delete comment
// @Tags comments
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, commentID, err := s.commentIDs(c)
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), currentUserID(c), postID, commentID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
