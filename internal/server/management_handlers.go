package server

import (
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetMetric handles GET /management/metric
func (s *Server) GetMetric(c *fiber.Ctx) error {
	metric, err := s.managementService.Metrics(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(metric)
}

// SoftDeleteUser handles DELETE /management/soft_delete_user/:id
func (s *Server) SoftDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.managementService.SoftDeleteUser(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HardDeleteUser handles DELETE /management/hard_delete_user/:id
func (s *Server) HardDeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.managementService.HardDeleteUser(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
