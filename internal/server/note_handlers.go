package server

import (
	"friendmarket/internal/models"
	"friendmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetNotes handles GET /api/posts/:post/notes
// @Summary List notes of a question
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {array} PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/notes [get]
func (s *Server) GetNotes(c *fiber.Ctx) error {
	questionID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	notes, total, bestID, err := s.noteService.ListNotes(c.UserContext(), questionID, userID,
		parsePagination(c, defaultPaginationLimit))
	if err != nil {
		return mapServiceError(c, err)
	}
	return respondList(c, s.postViews(notes, userID, bestID), total)
}

// CreateNote handles POST /api/posts/:post/notes
// @Summary Answer a question with a recommendation
// @Description Creates a positive or negative post owned by the caller and links it to the question
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param request body object{typeContent=int,title=string,description=string,tags=[]string,city=string} true "Recommendation"
// @Success 201 {object} PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/notes [post]
func (s *Server) CreateNote(c *fiber.Ctx) error {
	questionID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	userID := currentUserID(c)

	note, err := s.noteService.CreateNote(c.UserContext(), questionID, service.CreatePostInput{
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
	return c.Status(fiber.StatusCreated).JSON(s.postView(note, userID, nil))
}

// noteIDs parses the question and note route params.
func (s *Server) noteIDs(c *fiber.Ctx) (questionID, noteID uint, err error) {
	if questionID, err = s.parseID(c, "post"); err != nil {
		return 0, 0, err
	}
	if noteID, err = s.parseID(c, "id"); err != nil {
		return 0, 0, err
	}
	return questionID, noteID, nil
}

// GetNote handles GET /api/posts/:post/notes/:id
// @Summary Get an attached note
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param id path int true "Note ID"
// @Success 200 {object} PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/notes/{id} [get]
func (s *Server) GetNote(c *fiber.Ctx) error {
	questionID, noteID, err := s.noteIDs(c)
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	note, err := s.noteService.GetNote(c.UserContext(), questionID, noteID, userID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return s.respondNote(c, questionID, note, userID)
}

// UpdateNote handles PUT|PATCH /api/posts/:post/notes/:id
// @Summary Update an attached note
// @Description Note author only; the type must stay positive or negative
// @Tags notes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param id path int true "Note ID"
// @Param request body object{typeContent=int,title=string,description=string,tags=[]string,city=string} true "Fields"
// @Success 200 {object} PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/notes/{id} [put]
func (s *Server) UpdateNote(c *fiber.Ctx) error {
	questionID, noteID, err := s.noteIDs(c)
	if err != nil {
		return nil
	}
	var req postUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	userID := currentUserID(c)

	note, err := s.noteService.UpdateNote(c.UserContext(), questionID, req.input(userID, noteID))
	if err != nil {
		return mapServiceError(c, err)
	}
	return s.respondNote(c, questionID, note, userID)
}

func (s *Server) respondNote(c *fiber.Ctx, questionID uint, note *models.Post, userID uint) error {
	bestID, err := s.noteService.BestNoteOf(c.UserContext(), questionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(note, userID, bestID))
}

// SetBestNote handles POST /api/posts/:post/notes/:id/best
// @Summary Mark the best note
// @Description Question author only; the note must be attached to the question
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param id path int true "Note ID"
// @Success 200 {object} PostView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/notes/{id}/best [post]
func (s *Server) SetBestNote(c *fiber.Ctx) error {
	questionID, noteID, err := s.noteIDs(c)
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	question, err := s.noteService.SetBest(c.UserContext(), userID, questionID, noteID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(question, userID, nil))
}

// ClearBestNote handles DELETE /api/posts/:post/notes/:id/best
// @Summary Clear the best note
// @Tags notes
// @Produce json
// @Security BearerAuth
// @Param post path int true "Question ID"
// @Param id path int true "Note ID"
// @Success 200 {object} PostView
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/notes/{id}/best [delete]
func (s *Server) ClearBestNote(c *fiber.Ctx) error {
	questionID, _, err := s.noteIDs(c)
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	question, err := s.noteService.ClearBest(c.UserContext(), userID, questionID)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(question, userID, nil))
}
