package server

import (
	"encoding/json"

	"clubboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetProfiles handles GET /api/profiles
// @Summary List profiles
// @Description Every profile, soft-deleted ones included, most recently saved first
// @Tags profiles
// @Produce json
// @Success 200 {array} models.Profile
// @Router /profiles [get]
func (s *Server) GetProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileService.List(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(profiles)
}

// SaveProfile handles PUT /api/profiles/:id
// @Summary Save own profile
// @Description Replaces every field of the caller's profile, creating it if needed
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param profile body models.Profile true "Full profile"
// @Success 200 {object} models.Profile
// @Success 201 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id} [put]
func (s *Server) SaveProfile(c *fiber.Ctx) error {
	var p models.Profile
	if err := c.BodyParser(&p); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	id := c.Params("id")
	if p.ID != "" && p.ID != id {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Profile id does not match the URL"))
	}
	p.ID = id

	saved, created, err := s.profileService.Save(c.UserContext(), callerID(c), &p)
	if err != nil {
		return respond(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(saved)
}

// PatchProfile handles PATCH /api/profiles/:id. Only deleted_at may be
// changed: any non-null value soft-deletes at server time, null restores.
// @Summary Soft delete or restore own profile
// @Tags profiles
// @Accept json
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Param request body object{deleted_at=string} true "deleted_at timestamp or null"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id} [patch]
func (s *Server) PatchProfile(c *fiber.Ctx) error {
	var req map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	raw, ok := req["deleted_at"]
	if !ok || len(req) != 1 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Only deleted_at can be patched"))
	}
	deleted := string(raw) != "null"

	if err := s.profileService.SetDeleted(c.UserContext(), callerID(c), c.Params("id"), deleted); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteProfile handles DELETE /api/profiles/:id
// @Summary Delete own profile
// @Description Removes the profile with its posts, likes and comments
// @Tags profiles
// @Security BearerAuth
// @Param id path string true "Member ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /profiles/{id} [delete]
func (s *Server) DeleteProfile(c *fiber.Ctx) error {
	if err := s.profileService.Delete(c.UserContext(), callerID(c), c.Params("id")); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
