package repository

import (
	"context"
	"regexp"
	"testing"

	"starboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndGetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	post := seedTextPost(t, db, user.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	assert.Equal(t, models.PostKindText, got.Kind)
	assert.Empty(t, got.Ratings)
}

func TestPostRepository_GetByID_PreloadsRatings(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	rater := seedUser(t, db)
	post := seedTextPost(t, db, user.ID)

	require.NoError(t, db.Create(&models.Rating{
		PostID: post.ID,
		UserID: rater.ID,
		Value:  4,
	}).Error)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, got.Ratings, 1)
	assert.Equal(t, 4, got.Ratings[0].Value)
}

func TestPostRepository_List(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	user := seedUser(t, db)
	for i := 0; i < 3; i++ {
		seedTextPost(t, db, user.ID)
	}

	posts, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	rest, err := repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestPostRepository_ListByUserID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := seedUser(t, db)
	other := seedUser(t, db)
	seedTextPost(t, db, author.ID)
	seedTextPost(t, db, author.ID)
	seedTextPost(t, db, other.ID)

	posts, err := repo.ListByUserID(ctx, author.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, author.ID, p.UserID)
	}
}

func TestPostRepository_SoftDeleteOwned(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db)
	stranger := seedUser(t, db)
	post := seedTextPost(t, db, owner.ID)

	// Stranger cannot delete: zero rows, post still readable
	affected, err := repo.SoftDeleteOwned(ctx, post.ID, stranger.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
	_, err = repo.GetByID(ctx, post.ID)
	assert.NoError(t, err)

	// Owner deletes
	affected, err = repo.SoftDeleteOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Deleted post is gone from reads and feeds
	_, err = repo.GetByID(ctx, post.ID)
	assert.Error(t, err)
	posts, err := repo.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	// Repeated delete reports zero rows
	affected, err = repo.SoftDeleteOwned(ctx, post.ID, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, affected)
}

func TestPostRepository_SoftDeleteOwned_SingleStatement(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	postID := uuid.NewString()
	ownerID := uuid.NewString()

	// One UPDATE carrying both the id and the ownership predicate
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET "deleted_at"=$1 WHERE (id = $2 AND user_id = $3) AND "posts"."deleted_at" IS NULL`)).
		WithArgs(sqlmock.AnyArg(), postID, ownerID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	affected, err := repo.SoftDeleteOwned(ctx, postID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
