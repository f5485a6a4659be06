// Package server contains HTTP handlers for the application's API endpoints.
package server

import (
	"errors"

	"starboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed page/per_page query parameters, 1-based.
type Pagination struct {
	Page    int
	PerPage int
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// parsePagination extracts page and per_page query parameters. Out-of-range
// values fall back to sane bounds rather than erroring.
func parsePagination(c *fiber.Ctx) Pagination {
	page := c.QueryInt("page", 1)
	if page <= 0 {
		page = 1
	}

	perPage := c.QueryInt("per_page", defaultPerPage)
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	return Pagination{
		Page:    page,
		PerPage: perPage,
	}
}

// parseUUIDParam extracts a route parameter by name as a UUID string.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseUUIDParam(c *fiber.Ctx, param string) (string, error) {
	raw := c.Params(param)
	if _, err := uuid.Parse(raw); err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return "", errResponseWritten
	}
	return raw, nil
}

// currentUserID returns the authenticated caller's id. Only valid behind
// AuthRequired.
func currentUserID(c *fiber.Ctx) string {
	return c.Locals("userID").(string)
}

// viewerID returns the caller's id when OptionalAuth resolved one, or ""
// for anonymous requests.
func viewerID(c *fiber.Ctx) string {
	if id, ok := c.Locals("userID").(string); ok {
		return id
	}
	return ""
}
