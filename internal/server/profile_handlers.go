package server

import (
	"starboard/internal/models"
	"starboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/settings/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileService.GetProfile(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/settings/profile as a multipart form:
// full_name plus an optional avatar file part. A request without a file
// leaves the current avatar untouched.
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	in := service.UpdateProfileInput{
		UserID:   currentUserID(c),
		FullName: c.FormValue("full_name"),
	}

	if fh, err := c.FormFile("avatar"); err == nil {
		upload, closeFn, err := formUpload(fh)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		defer closeFn()
		in.Avatar = upload
	}

	profile, err := s.profileService.UpdateProfile(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(profile)
}

// GetUserProfile handles GET /api/users/:id/profile. Users who never saved
// settings return an empty profile rather than a 404.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(profile)
}
