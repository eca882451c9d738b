package server

import (
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateUserRequest is the UpdateUser payload.
type UpdateUserRequest struct {
	FirstName string `json:"firstName" validate:"required,min=3,max=10"`
	LastName  string `json:"lastName" validate:"required,min=3,max=10"`
	Phone     string `json:"phone" validate:"required,phone"`
}

// NewPasswordRequest is the body of POST /users/set_password.
type NewPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,min=8,max=16"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=16"`
}

// GetMe handles GET /users/me
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.userService.GetMe(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(user)
}

// UpdateMe handles PATCH /users/me
func (s *Server) UpdateMe(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	updated, err := s.userService.UpdateMe(c.UserContext(), middleware.PrincipalFrom(c), service.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(updated)
}

// SetPassword handles POST /users/set_password
func (s *Server) SetPassword(c *fiber.Ctx) error {
	var req NewPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := s.userService.SetPassword(c.UserContext(), middleware.PrincipalFrom(c), req.CurrentPassword, req.NewPassword); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}

// UpdateMyImage handles PATCH /users/me/image
func (s *Server) UpdateMyImage(c *fiber.Ctx) error {
	upload, err := readUpload(c, "image")
	if err != nil {
		return models.RespondWithError(c, err)
	}
	if err := s.userService.UpdateMyImage(c.UserContext(), middleware.PrincipalFrom(c), upload); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
