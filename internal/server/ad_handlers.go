package server

import (
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdRequest is the CreateOrUpdateAd payload.
type AdRequest struct {
	Title       string `json:"title" validate:"required,min=4,max=32"`
	Price       int    `json:"price" validate:"min=0,max=10000000"`
	Description string `json:"description" validate:"required,min=8,max=64"`
}

func (r AdRequest) input() service.AdInput {
	return service.AdInput{Title: r.Title, Price: r.Price, Description: r.Description}
}

// ListAds handles GET /ads
func (s *Server) ListAds(c *fiber.Ctx) error {
	ads, err := s.adService.ListAds(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(ads)
}

// ListMyAds handles GET /ads/me
func (s *Server) ListMyAds(c *fiber.Ctx) error {
	ads, err := s.adService.ListMyAds(c.UserContext(), middleware.PrincipalFrom(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(ads)
}

// CreateAd handles POST /ads with multipart parts "properties" and "image".
func (s *Server) CreateAd(c *fiber.Ctx) error {
	var req AdRequest
	if err := readJSONPart(c, "properties", &req); err != nil {
		return models.RespondWithError(c, err)
	}
	if err := validateOrRespond(c, &req); err != nil {
		return nil
	}
	upload, err := readUpload(c, "image")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	ad, err := s.adService.CreateAd(c.UserContext(), middleware.PrincipalFrom(c), req.input(), upload)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(ad)
}

// GetAd handles GET /ads/:id
func (s *Server) GetAd(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	ad, err := s.adService.GetAd(c.UserContext(), middleware.PrincipalFrom(c), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(ad)
}

// UpdateAd handles PATCH /ads/:id
func (s *Server) UpdateAd(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req AdRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	ad, err := s.adService.UpdateAd(c.UserContext(), middleware.PrincipalFrom(c), id, req.input())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(ad)
}

// UpdateAdImage handles PATCH /ads/:id/image and answers with the stored image.
func (s *Server) UpdateAdImage(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	upload, err := readUpload(c, "image")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	content, err := s.adService.UpdateAdImage(c.UserContext(), middleware.PrincipalFrom(c), id, upload)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	c.Set(fiber.HeaderContentType, upload.ContentType)
	return c.Send(content)
}

// DeleteAd handles DELETE /ads/:id
func (s *Server) DeleteAd(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.adService.DeleteAd(c.UserContext(), middleware.PrincipalFrom(c), id); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
