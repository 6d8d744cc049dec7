package server

import (
	"context"

	"friendmarket/internal/models"
	"friendmarket/internal/repository"
	"friendmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

type postRequest struct {
	TypeContent *int     `json:"typeContent"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	City        string   `json:"city"`
}

type postUpdateRequest struct {
	TypeContent *int      `json:"typeContent"`
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Tags        *[]string `json:"tags"`
	City        *string   `json:"city"`
}

func (r postUpdateRequest) input(userID, postID uint) service.UpdatePostInput {
	return service.UpdatePostInput{
		UserID:      userID,
		PostID:      postID,
		TypeContent: r.TypeContent,
		Title:       r.Title,
		Description: r.Description,
		Tags:        r.Tags,
		City:        r.City,
	}
}

// listPosts runs a filtered listing for the caller and writes the page.
func (s *Server) listPosts(c *fiber.Ctx, filter repository.PostFilter, markViewed bool) error {
	userID := currentUserID(c)
	posts, total, err := s.postService.ListPosts(c.UserContext(), service.ListPostsInput{
		ViewerID:   userID,
		Filter:     filter,
		Page:       parsePagination(c, defaultPaginationLimit),
		MarkViewed: markViewed,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return respondList(c, s.postViews(posts, userID, nil), total)
}

// GetPosts handles GET /api/posts and GET /api/feed
// @Summary List posts
// @Description Newest first; every returned post is marked viewed by the caller
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param type query []int false "Post types (0 question, 1 positive, 2 negative)" collectionFormat(multi)
// @Param search query string false "Case-insensitive title/description substring"
// @Param tag query []string false "Tag names" collectionFormat(multi)
// @Param city query []string false "City names" collectionFormat(multi)
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	types, err := service.ParsePostTypes(queryValues(c, "type"))
	if err != nil {
		return mapServiceError(c, err)
	}
	return s.listPosts(c, repository.PostFilter{
		Types:  types,
		Search: c.Query("search"),
		Tags:   queryValues(c, "tag"),
		Cities: queryValues(c, "city"),
	}, true)
}

// CreatePost handles POST /api/posts and POST /api/feed
// @Summary Create post
// @Description Tags and city are created on demand; followers of the author are notified
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{typeContent=int,title=string,description=string,tags=[]string,city=string} true "Post"
// @Success 201 {object} PostView
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID:    userID,
		TypeContent: req.TypeContent,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		City:        req.City,
	})
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(s.postView(post, userID, nil))
}

// GetPost handles GET /api/posts/:post
// @Summary Get post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {object} PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postService.GetPost(c.UserContext(), postID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(post, userID, nil))
}

// UpdatePost handles PUT|PATCH /api/posts/:post
// @Summary Update post
// @Description Absent fields are left untouched; author only
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param request body object{typeContent=int,title=string,description=string,tags=[]string,city=string} true "Fields"
// @Success 200 {object} PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	var req postUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postService.UpdatePost(c.UserContext(), req.input(userID, postID))
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(post, userID, nil))
}

// DeletePost handles DELETE /api/posts/:post
// @Summary Delete post
// @Tags posts
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), currentUserID(c), postID); err != nil {
		return mapServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetPostExtended handles GET /api/posts/:post/extended
// @Summary Post with previews
// @Description Adds the first comments (or notes for a question) and similar posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {object} ExtendedPostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/extended [get]
func (s *Server) GetPostExtended(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	ext, err := s.postService.GetExtended(c.UserContext(), postID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.extendedView(ext, userID))
}

// GetSimilarPosts handles GET /api/posts/:post/similar
// @Summary Similar posts
// @Description Posts sharing at least one tag, excluding the post itself
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {array} PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/similar [get]
func (s *Server) GetSimilarPosts(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	posts, total, err := s.postService.ListSimilar(c.UserContext(), postID, userID,
		parsePagination(c, defaultPaginationLimit))
	if err != nil {
		return mapServiceError(c, err)
	}
	return respondList(c, s.postViews(posts, userID, nil), total)
}

// AttachNotes handles POST /api/posts/:post/attach
// @Summary Attach recommendations to a question
// @Description Only the caller's own positive/negative posts are linked; others are skipped
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param request body object{attach=[]int} true "Recommendation IDs"
// @Success 200 {object} object{attached=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/attach [post]
func (s *Server) AttachNotes(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	var req struct {
		Attach []uint `json:"attach"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	n, err := s.postService.Attach(c.UserContext(), currentUserID(c), postID, req.Attach)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"attached": n})
}

// togglePost applies an idempotent like/follow change and returns the post.
func (s *Server) togglePost(c *fiber.Ctx, op func(context.Context, uint, uint) (*models.Post, error)) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := op(c.UserContext(), userID, postID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(post, userID, nil))
}

// LikePost handles POST /api/posts/:post/like
// @Summary Like post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {object} PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.LikePost)
}

// UnlikePost handles DELETE /api/posts/:post/like
// @Summary Unlike post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {object} PostView
// @Router /posts/{post}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.UnlikePost)
}

// FollowPost handles POST /api/posts/:post/follow
// @Summary Follow post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {object} PostView
// @Router /posts/{post}/follow [post]
func (s *Server) FollowPost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.FollowPost)
}

// UnfollowPost handles DELETE /api/posts/:post/follow
// @Summary Unfollow post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Success 200 {object} PostView
// @Router /posts/{post}/follow [delete]
func (s *Server) UnfollowPost(c *fiber.Ctx) error {
	return s.togglePost(c, s.postService.UnfollowPost)
}
