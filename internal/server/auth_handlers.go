package server

import (
	"log/slog"
	"time"

	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Username  string      `json:"username" validate:"required,min=4,max=32,email"`
	Password  string      `json:"password" validate:"required,min=8,max=16"`
	FirstName string      `json:"firstName" validate:"required,min=2,max=16"`
	LastName  string      `json:"lastName" validate:"required,min=2,max=16"`
	Phone     string      `json:"phone" validate:"required,phone"`
	Role      models.Role `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// TokenResponse carries a freshly issued access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Login handles POST /login
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	ctx := c.UserContext()
	userID, err := s.authService.Login(ctx, req.Username, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	token, err := s.tokens.IssueToken(userID, req.Username)
	if err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	return c.JSON(TokenResponse{Token: token})
}

// Register handles POST /register
func (s *Server) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	_, err := s.authService.Register(c.UserContext(), service.RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      req.Role,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}

// Logout handles POST /logout. Bearer tokens are revoked until they expire;
// Basic credentials have nothing to revoke.
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.TokenClaimsFrom(c)
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revoker.Revoke(c.UserContext(), claims.ID, ttl); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "token revocation failed",
			slog.String("jti", claims.ID), slog.String("error", err.Error()))
		return models.RespondWithError(c, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
