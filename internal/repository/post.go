// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"starboard/internal/cache"
	"starboard/internal/models"
	"starboard/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error)
	// SoftDeleteOwned marks the post deleted only when it belongs to ownerID,
	// in a single statement. Returns the number of rows affected: 0 means the
	// post does not exist, is already deleted, or belongs to someone else.
	SoftDeleteOwned(ctx context.Context, id, ownerID string) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db      *gorm.DB
	metrics *observability.DatabaseMetrics
	log     *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		metrics: observability.NewDatabaseMetrics(db),
		log:     observability.NewRepoLogger("posts"),
	}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create", "posts")()
	err := r.db.WithContext(ctx).Create(post).Error
	if err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "kind": post.Kind})
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	defer r.metrics.TrackQuery("get_by_id", "posts")()
	var post models.Post
	err := r.db.WithContext(ctx).
		Preload("Ratings").
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list", "posts")()
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Ratings").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	defer r.metrics.TrackQuery("list_by_user", "posts")()
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Preload("Ratings").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) SoftDeleteOwned(ctx context.Context, id, ownerID string) (int64, error) {
	defer r.metrics.TrackQuery("soft_delete", "posts")()
	// Ownership is enforced in the UPDATE predicate itself, so a concurrent
	// delete or a foreign post both land in the same 0-rows outcome.
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Post{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "soft_delete")
		return 0, result.Error
	}
	if result.RowsAffected > 0 {
		r.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
		cache.InvalidatePost(ctx, id)
		cache.InvalidateFeed(ctx)
	}
	return result.RowsAffected, nil
}
