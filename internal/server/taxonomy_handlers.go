package server

import "github.com/gofiber/fiber/v2"

// GetTags handles GET /api/tags
// @Summary All tag names
// @Tags lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{tags=[]string}
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	tags, err := s.taxonomyService.Tags(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"tags": tags})
}

// GetCities handles GET /api/cities
// @Summary All city names
// @Tags lookups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{cities=[]string}
// @Router /cities [get]
func (s *Server) GetCities(c *fiber.Ctx) error {
	cities, err := s.taxonomyService.Cities(c.UserContext())
	if err != nil {
		return mapServiceError(c, err)
	}
	return c.JSON(fiber.Map{"cities": cities})
}
