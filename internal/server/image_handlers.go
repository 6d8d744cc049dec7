package server

import (
	"io"

	"friendmarket/internal/models"
	"friendmarket/internal/service"

	"github.com/gofiber/fiber/v2"
)

// readUpload loads the multipart "image" field. On failure it writes a 400
// and returns errResponseWritten.
func (s *Server) readUpload(c *fiber.Ctx) (service.UploadImageInput, error) {
	file, err := c.FormFile("image")
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("No file uploaded"))
		return service.UploadImageInput{}, errResponseWritten
	}
	if file.Size > s.images.MaxBytes() {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Image is too large"))
		return service.UploadImageInput{}, errResponseWritten
	}

	src, err := file.Open()
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		return service.UploadImageInput{}, errResponseWritten
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Unable to read uploaded file"))
		return service.UploadImageInput{}, errResponseWritten
	}

	return service.UploadImageInput{
		UserID:      currentUserID(c),
		ContentType: file.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

// UploadProfilePhoto handles POST /api/profile/photo
// @Summary Upload profile photo
// @Description Resized to 400px wide with a square crop
// @Tags profile
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image (JPEG, PNG, GIF or WebP)"
// @Success 200 {object} ProfileView
// @Failure 400 {object} models.ErrorResponse
// @Router /profile/photo [post]
func (s *Server) UploadProfilePhoto(c *fiber.Ctx) error {
	in, err := s.readUpload(c)
	if err != nil {
		return nil
	}

	user, err := s.imageService.UploadProfilePhoto(c.UserContext(), in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.profileView(user))
}

// UploadPostImage handles POST /api/posts/:post/image
// @Summary Upload post image
// @Description Resized to 800px wide with a 16:9 crop; author only
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param post path int true "Post ID"
// @Param image formData file true "Image (JPEG, PNG, GIF or WebP)"
// @Success 200 {object} PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{post}/image [post]
func (s *Server) UploadPostImage(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "post")
	if err != nil {
		return nil
	}
	in, err := s.readUpload(c)
	if err != nil {
		return nil
	}

	post, err := s.imageService.UploadPostImage(c.UserContext(), postID, in)
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(s.postView(post, in.UserID, nil))
}
