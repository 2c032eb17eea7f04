package server

import (
	"time"

	"clubboard/internal/middleware"
	"clubboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by login and session lookups.
type SessionResponse struct {
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	User      *models.User `json:"user,omitempty"`
	MemberID  string       `json:"member_id"`
}

// Signup handles POST /api/auth/signup
// @Summary Create an account
// @Description Registers an email/password account. The caller is not signed in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Signup request"
// @Success 201 {object} object{message=string,user=models.User}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.SignUp(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created. Please sign in.",
		"user":    user,
	})
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Description Authenticates and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} SessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respond(c, err)
	}

	expiresAt := time.Now().Add(accessTokenTTL)
	token, err := middleware.SignAccessToken(s.config.JWTSecret, user.ID, uuid.NewString(), accessTokenTTL)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(SessionResponse{
		Token:     token,
		ExpiresAt: &expiresAt,
		User:      user,
		MemberID:  user.ID,
	})
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Revokes the access token used for this request
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if jti, exp, ok := middleware.TokenID(c); ok {
		if err := s.authService.Revoke(c.UserContext(), jti, exp); err != nil {
			return respond(c, err)
		}
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

// Session handles GET /api/auth/session
// @Summary Current session
// @Description Returns the caller's member id and, for token sessions, the account
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SessionResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/session [get]
func (s *Server) Session(c *fiber.Ctx) error {
	memberID := callerID(c)
	_, exp, isToken := middleware.TokenID(c)
	if !isToken {
		return c.JSON(SessionResponse{MemberID: memberID})
	}

	user, err := s.authService.Account(c.UserContext(), memberID)
	if err != nil {
		return respond(c, err)
	}
	return c.JSON(SessionResponse{ExpiresAt: &exp, User: user, MemberID: memberID})
}
