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

// ProfileRepository defines the interface for profile data operations
type ProfileRepository interface {
	// Upsert creates the profile row on first save and updates it afterwards.
	// The avatar column is only touched when setAvatar is true, so a name-only
	// save never clears an existing avatar.
	Upsert(ctx context.Context, profile *models.Profile, setAvatar bool) error
	GetByID(ctx context.Context, userID string) (*models.Profile, error)
	// GetByIDs returns the profiles that exist for the given user ids.
	// Missing ids are simply absent from the result.
	GetByIDs(ctx context.Context, userIDs []string) ([]models.Profile, error)
}

type profileRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, metrics: observability.NewDatabaseMetrics(db)}
}

func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile, setAvatar bool) error {
	defer r.metrics.TrackQuery("upsert", "profiles")()
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "upsert", "profiles")
	defer span.End()

	updates := []string{"full_name", "updated_at"}
	if setAvatar {
		updates = append(updates, "avatar_path")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).
		Create(profile).Error
	if err == nil {
		cache.InvalidateProfile(ctx, profile.ID)
	}
	return err
}

func (r *profileRepository) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	defer r.metrics.TrackQuery("get_by_id", "profiles")()
	var profile models.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByIDs(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	defer r.metrics.TrackQuery("get_by_ids", "profiles")()
	var profiles []models.Profile
	err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&profiles).Error
	return profiles, err
}
