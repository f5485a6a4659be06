package server

import (
	"strings"

	"starboard/internal/models"
	"starboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RatePost handles POST /api/rate. Rating the same post twice replaces the
// earlier rating; the response carries the recomputed aggregate.
func (s *Server) RatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		PostID  string  `json:"post_id"`
		Value   int     `json:"value"`
		Comment *string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if _, err := uuid.Parse(req.PostID); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid post_id"))
	}

	// An empty or whitespace comment means no comment.
	if req.Comment != nil && strings.TrimSpace(*req.Comment) == "" {
		req.Comment = nil
	}

	result, err := s.ratingService.Rate(c.UserContext(), service.RateInput{
		PostID:  req.PostID,
		UserID:  userID,
		Value:   req.Value,
		Comment: req.Comment,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(result)
}

// GetPostRatings handles GET /api/posts/:id/ratings
func (s *Server) GetPostRatings(c *fiber.Ctx) error {
	postID, err := s.parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	ratings, err := s.ratingService.ListRatings(c.UserContext(), postID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(ratings)
}
