package server

import (
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/middleware"
	"github.com/TrueRandolf/Resale-Hub-graduate-work/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CommentRequest is the CreateOrUpdateComment payload.
type CommentRequest struct {
	Text string `json:"text" validate:"required,min=8,max=64"`
}

// ListComments handles GET /ads/:id/comments
func (s *Server) ListComments(c *fiber.Ctx) error {
	adID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comments, err := s.commentService.ListComments(c.UserContext(), middleware.PrincipalFrom(c), adID)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comments)
}

// AddComment handles POST /ads/:id/comments
func (s *Server) AddComment(c *fiber.Ctx) error {
	adID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req CommentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.AddComment(c.UserContext(), middleware.PrincipalFrom(c), adID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PATCH /ads/:id/comments/:commentId
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	adID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}
	var req CommentRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}

	comment, err := s.commentService.UpdateComment(c.UserContext(), middleware.PrincipalFrom(c), adID, commentID, req.Text)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(comment)
}

// DeleteComment handles DELETE /ads/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	adID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := parseID(c, "commentId")
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.UserContext(), middleware.PrincipalFrom(c), adID, commentID); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.SendStatus(fiber.StatusOK)
}
