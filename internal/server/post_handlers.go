package server

import (
	"clubboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// postRequest is the editable part of a post.
type postRequest struct {
	PostType     models.PostType `json:"post_type"`
	Theme        string          `json:"theme"`
	Members      string          `json:"members"`
	TargetParts  string          `json:"target_parts"`
	StartPeriod  string          `json:"start_period"`
	ExtraRemarks string          `json:"extra_remarks"`
}

func (r postRequest) toPost() *models.BandPost {
	return &models.BandPost{
		PostType:     r.PostType,
		Theme:        r.Theme,
		Members:      r.Members,
		TargetParts:  r.TargetParts,
		StartPeriod:  r.StartPeriod,
		ExtraRemarks: r.ExtraRemarks,
	}
}

// GetPosts handles GET /api/posts
// @Summary List posts
// @Description Every post newest first with author, likes and comments
// @Tags posts
// @Produce json
// @Success 200 {array} models.BandPost
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.boardService.List(c.UserContext())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(posts)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param post body postRequest true "Post"
// @Success 201 {object} models.BandPost
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, err := s.boardService.Create(c.UserContext(), callerID(c), req.toPost())
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Update own post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param post body postRequest true "Post"
// @Success 200 {object} models.BandPost
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req postRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	post, err := s.boardService.Update(c.UserContext(), callerID(c), id, req.toPost())
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete own post
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.boardService.Delete(c.UserContext(), callerID(c), id); err != nil {
		return respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LikePost handles PUT /api/posts/:id/likes/me. Liking twice succeeds.
// @Summary Like a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{liked=bool,added=bool}
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/likes/me [put]
func (s *Server) LikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	added, err := s.boardService.Like(c.UserContext(), callerID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"liked": true, "added": added})
}

// UnlikePost handles DELETE /api/posts/:id/likes/me
// @Summary Remove own like
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{liked=bool,removed=bool}
// @Router /posts/{id}/likes/me [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	removed, err := s.boardService.Unlike(c.UserContext(), callerID(c), id)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(fiber.Map{"liked": false, "removed": removed})
}

// CreateComment handles POST /api/posts/:id/comments
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body object{content=string} true "Comment"
// @Success 201 {object} models.PostComment
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	comment, err := s.boardService.Comment(c.UserContext(), callerID(c), id, req.Content)
	if err != nil {
		return respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}
