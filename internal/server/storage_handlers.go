package server

import (
	"clubboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadAvatar handles PUT /api/storage/avatars/*. The body is the raw file.
// @Summary Upload an avatar
// @Description Stores the body under the given key, which must start with the caller's member id
// @Tags storage
// @Accept octet-stream
// @Produce json
// @Security BearerAuth
// @Param path path string true "Object key"
// @Success 200 {object} object{path=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /storage/avatars/{path} [put]
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	key, err := s.avatarService.Upload(c.UserContext(), callerID(c), c.Params("*"), c.Body())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"path": key})
}

// GetAvatarPublicURL handles GET /api/storage/avatars/public-url?path=
// @Summary Resolve an avatar URL
// @Tags storage
// @Produce json
// @Param path query string true "Object key"
// @Success 200 {object} object{public_url=string}
// @Failure 400 {object} models.ErrorResponse
// @Router /storage/avatars/public-url [get]
func (s *Server) GetAvatarPublicURL(c *fiber.Ctx) error {
	key := c.Query("path")
	if key == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("path is required"))
	}
	url, err := s.avatarService.PublicURL(key)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"public_url": url})
}
