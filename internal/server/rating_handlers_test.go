package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"starboard/internal/models"
	"starboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRatingRepository is a mock of the RatingRepository interface
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) ListForPost(ctx context.Context, postID string) ([]models.Rating, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Rating), args.Error(1)
}

func (m *MockRatingRepository) GetForPostAndUser(ctx context.Context, postID, userID string) (*models.Rating, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Rating), args.Error(1)
}

func newRatingTestServer(ratingRepo *MockRatingRepository, postRepo *MockPostRepository, profileRepo *MockProfileRepository) *Server {
	return &Server{
		ratingService: service.NewRatingService(ratingRepo, postRepo, profileRepo, newFakeBlobStore()),
	}
}

func postJSON(t *testing.T, app *fiber.App, target string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestRatePost(t *testing.T) {
	ratingRepo := new(MockRatingRepository)
	postRepo := new(MockPostRepository)
	postRepo.On("GetByID", mock.Anything, testPostID).
		Return(&models.Post{ID: testPostID, UserID: "author", Kind: models.PostKindText}, nil)
	ratingRepo.On("GetForPostAndUser", mock.Anything, testPostID, testUserID).Return(nil, nil)
	ratingRepo.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	ratingRepo.On("ListForPost", mock.Anything, testPostID).Return([]models.Rating{
		{PostID: testPostID, UserID: testUserID, Value: 4},
		{PostID: testPostID, UserID: "other", Value: 5},
	}, nil)

	s := newRatingTestServer(ratingRepo, postRepo, new(MockProfileRepository))
	app := authedApp(s, testUserID)
	app.Post("/rate", s.RatePost)

	resp := postJSON(t, app, "/rate", fiber.Map{"post_id": testPostID, "value": 4})
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, float64(4), result["value"])
	assert.Equal(t, 4.5, result["avg"])
	assert.Equal(t, float64(2), result["count"])
	ratingRepo.AssertExpectations(t)
}

func TestRatePost_OutOfRangeValue(t *testing.T) {
	// No repo expectations: the request never reaches them.
	s := newRatingTestServer(new(MockRatingRepository), new(MockPostRepository), new(MockProfileRepository))
	app := authedApp(s, testUserID)
	app.Post("/rate", s.RatePost)

	for _, value := range []int{0, 6} {
		resp := postJSON(t, app, "/rate", fiber.Map{"post_id": testPostID, "value": value})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestRatePost_InvalidPostID(t *testing.T) {
	s := newRatingTestServer(new(MockRatingRepository), new(MockPostRepository), new(MockProfileRepository))
	app := authedApp(s, testUserID)
	app.Post("/rate", s.RatePost)

	resp := postJSON(t, app, "/rate", fiber.Map{"post_id": "42", "value": 3})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRatePost_MissingPost(t *testing.T) {
	postRepo := new(MockPostRepository)
	postRepo.On("GetByID", mock.Anything, testPostID).Return(nil, gormNotFound())

	s := newRatingTestServer(new(MockRatingRepository), postRepo, new(MockProfileRepository))
	app := authedApp(s, testUserID)
	app.Post("/rate", s.RatePost)

	resp := postJSON(t, app, "/rate", fiber.Map{"post_id": testPostID, "value": 3})
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPostRatings(t *testing.T) {
	name := "Ada"
	ratingRepo := new(MockRatingRepository)
	postRepo := new(MockPostRepository)
	profileRepo := new(MockProfileRepository)
	postRepo.On("GetByID", mock.Anything, testPostID).
		Return(&models.Post{ID: testPostID, UserID: "author", Kind: models.PostKindText}, nil)
	comment := "nice"
	ratingRepo.On("ListForPost", mock.Anything, testPostID).Return([]models.Rating{
		{PostID: testPostID, UserID: testUserID, Value: 5, Comment: &comment},
	}, nil)
	profileRepo.On("GetByIDs", mock.Anything, []string{testUserID}).
		Return([]models.Profile{{ID: testUserID, FullName: &name}}, nil)

	s := newRatingTestServer(ratingRepo, postRepo, profileRepo)
	app := fiber.New()
	app.Get("/posts/:id/ratings", s.GetPostRatings)

	req := httptest.NewRequest(http.MethodGet, "/posts/"+testPostID+"/ratings", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ratings []models.RatingWithProfile
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ratings))
	require.Len(t, ratings, 1)
	assert.Equal(t, 5, ratings[0].Value)
	require.NotNil(t, ratings[0].Comment)
	assert.Equal(t, "nice", *ratings[0].Comment)
	require.NotNil(t, ratings[0].Profile)
	assert.Equal(t, "Ada", ratings[0].Profile.DisplayName())
}
