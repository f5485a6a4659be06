package repository

import (
	"context"
	"errors"

	"starboard/internal/cache"
	"starboard/internal/models"
	"starboard/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RatingRepository defines the interface for rating data operations
type RatingRepository interface {
	// Upsert writes the rating in a single atomic statement keyed on
	// (post_id, user_id). A second rating by the same user replaces the
	// value and comment in place.
	Upsert(ctx context.Context, rating *models.Rating) error
	ListForPost(ctx context.Context, postID string) ([]models.Rating, error)
	GetForPostAndUser(ctx context.Context, postID, userID string) (*models.Rating, error)
}

type ratingRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	log     *observability.RepoLogger
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(db),
		log:     observability.NewRepoLogger("ratings"),
	}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	defer r.metrics.TrackQuery("upsert", "ratings")()
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "comment", "updated_at"}),
		}).
		Create(rating).Error
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return err
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"post_id": rating.PostID, "value": rating.Value})
	cache.InvalidatePost(ctx, rating.PostID)
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *ratingRepository) ListForPost(ctx context.Context, postID string) ([]models.Rating, error) {
	defer r.metrics.TrackQuery("list_for_post", "ratings")()
	var ratings []models.Rating
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("updated_at DESC").
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) GetForPostAndUser(ctx context.Context, postID, userID string) (*models.Rating, error) {
	defer r.metrics.TrackQuery("get_for_post_and_user", "ratings")()
	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}
