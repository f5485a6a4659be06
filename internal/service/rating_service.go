package service

import (
	"context"
	"errors"
	"fmt"

	"starboard/internal/models"
	"starboard/internal/observability"
	"starboard/internal/repository"
	"starboard/internal/storage"

	"gorm.io/gorm"
)

type RatingService struct {
	ratingRepo  repository.RatingRepository
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	avatars     storage.BlobStore
}

type RateInput struct {
	PostID  string
	UserID  string
	Value   int
	Comment *string
}

// RateResult is the caller's rating echoed back with the post's fresh
// aggregate figures.
type RateResult struct {
	Value int     `json:"value"`
	Avg   float64 `json:"avg"`
	Count int     `json:"count"`
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	avatars storage.BlobStore,
) *RatingService {
	return &RatingService{
		ratingRepo:  ratingRepo,
		postRepo:    postRepo,
		profileRepo: profileRepo,
		avatars:     avatars,
	}
}

// Rate records or replaces the caller's rating of a post and returns the
// recomputed aggregate. The value is checked before the post is even looked
// up; an out-of-range value on a missing post reports the value problem.
func (s *RatingService) Rate(ctx context.Context, in RateInput) (*RateResult, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "RatingService", "Rate")
	defer span.End()

	if in.Value < models.RatingMin || in.Value > models.RatingMax {
		return nil, models.NewValidationError(fmt.Sprintf("value must be between %d and %d", models.RatingMin, models.RatingMax))
	}

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	existing, err := s.ratingRepo.GetForPostAndUser(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	outcome := "created"
	if existing != nil {
		outcome = "updated"
	}

	if err := s.ratingRepo.Upsert(ctx, &models.Rating{
		PostID:  post.ID,
		UserID:  in.UserID,
		Value:   in.Value,
		Comment: in.Comment,
	}); err != nil {
		return nil, models.NewStoreFailure(err)
	}
	observability.RatingsUpserted.WithLabelValues(outcome).Inc()

	// Aggregate from a fresh read so concurrent raters are reflected.
	ratings, err := s.ratingRepo.ListForPost(ctx, in.PostID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	avg, count, _ := ComputeStats(ratings, "")

	return &RateResult{Value: in.Value, Avg: avg, Count: count}, nil
}

// ListRatings returns a post's ratings joined with rater profiles for display.
func (s *RatingService) ListRatings(ctx context.Context, postID string) ([]models.RatingWithProfile, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}

	ratings, err := s.ratingRepo.ListForPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(ratings) == 0 {
		return []models.RatingWithProfile{}, nil
	}

	raterIDs := make([]string, 0, len(ratings))
	for i := range ratings {
		raterIDs = append(raterIDs, ratings[i].UserID)
	}
	profiles, err := s.profileRepo.GetByIDs(ctx, raterIDs)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		decorateProfile(&profiles[i], s.avatars)
		byID[profiles[i].ID] = &profiles[i]
	}

	out := make([]models.RatingWithProfile, 0, len(ratings))
	for i := range ratings {
		out = append(out, models.RatingWithProfile{
			UserID:    ratings[i].UserID,
			Value:     ratings[i].Value,
			Comment:   ratings[i].Comment,
			UpdatedAt: ratings[i].UpdatedAt,
			Profile:   byID[ratings[i].UserID],
		})
	}
	return out, nil
}
