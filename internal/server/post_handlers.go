package server

import (
	"mime/multipart"
	"strconv"

	"starboard/internal/models"
	"starboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// formUpload converts a multipart file header into the service-layer upload.
// The returned close function must be called after the service finishes.
func formUpload(fh *multipart.FileHeader) (*service.MediaUpload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	return &service.MediaUpload{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Body:        f,
	}, func() { _ = f.Close() }, nil
}

// CreatePost handles POST /api/posts as a multipart form: kind, title,
// text_content, duration_ms and an optional file part.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := currentUserID(c)

	in := service.CreatePostInput{
		UserID:      userID,
		Kind:        c.FormValue("kind"),
		Title:       c.FormValue("title"),
		TextContent: c.FormValue("text_content"),
	}

	if raw := c.FormValue("duration_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("duration_ms must be an integer"))
		}
		in.DurationMs = &ms
	}

	if fh, err := c.FormFile("file"); err == nil {
		upload, closeFn, err := formUpload(fh)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		defer closeFn()
		in.Media = upload
	}

	post, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page := parsePagination(c)

	posts, err := s.postService.ListFeed(c.UserContext(), service.ListFeedInput{
		Page:     page.Page,
		PerPage:  page.PerPage,
		ViewerID: viewerID(c),
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(post)
}

// GetUserPosts handles GET /api/users/:id/posts
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := s.parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}
	page := parsePagination(c)

	posts, err := s.postService.GetUserPosts(c.UserContext(), userID, page.Page, page.PerPage, viewerID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(posts)
}

// DeletePost handles DELETE /api/posts/:id. Posts that exist but belong to
// someone else return the same 404 as missing ones.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := currentUserID(c)
	postID, err := s.parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), postID, userID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Post deleted"})
}
