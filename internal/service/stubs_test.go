package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"starboard/internal/models"

	"gorm.io/gorm"
)

// Function-field stubs so each test overrides only the calls it cares about.
// Unset fields fail loudly instead of returning zero values silently.

type postRepoStub struct {
	createFn          func(ctx context.Context, post *models.Post) error
	getByIDFn         func(ctx context.Context, id string) (*models.Post, error)
	listFn            func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	listByUserIDFn    func(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error)
	softDeleteOwnedFn func(ctx context.Context, id, ownerID string) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	if s.createFn == nil {
		panic("postRepoStub.Create not configured")
	}
	return s.createFn(ctx, post)
}

func (s *postRepoStub) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if s.getByIDFn == nil {
		panic("postRepoStub.GetByID not configured")
	}
	return s.getByIDFn(ctx, id)
}

func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if s.listFn == nil {
		panic("postRepoStub.List not configured")
	}
	return s.listFn(ctx, limit, offset)
}

func (s *postRepoStub) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Post, error) {
	if s.listByUserIDFn == nil {
		panic("postRepoStub.ListByUserID not configured")
	}
	return s.listByUserIDFn(ctx, userID, limit, offset)
}

func (s *postRepoStub) SoftDeleteOwned(ctx context.Context, id, ownerID string) (int64, error) {
	if s.softDeleteOwnedFn == nil {
		panic("postRepoStub.SoftDeleteOwned not configured")
	}
	return s.softDeleteOwnedFn(ctx, id, ownerID)
}

type ratingRepoStub struct {
	upsertFn            func(ctx context.Context, rating *models.Rating) error
	listForPostFn       func(ctx context.Context, postID string) ([]models.Rating, error)
	getForPostAndUserFn func(ctx context.Context, postID, userID string) (*models.Rating, error)
}

func (s *ratingRepoStub) Upsert(ctx context.Context, rating *models.Rating) error {
	if s.upsertFn == nil {
		panic("ratingRepoStub.Upsert not configured")
	}
	return s.upsertFn(ctx, rating)
}

func (s *ratingRepoStub) ListForPost(ctx context.Context, postID string) ([]models.Rating, error) {
	if s.listForPostFn == nil {
		panic("ratingRepoStub.ListForPost not configured")
	}
	return s.listForPostFn(ctx, postID)
}

func (s *ratingRepoStub) GetForPostAndUser(ctx context.Context, postID, userID string) (*models.Rating, error) {
	if s.getForPostAndUserFn == nil {
		panic("ratingRepoStub.GetForPostAndUser not configured")
	}
	return s.getForPostAndUserFn(ctx, postID, userID)
}

type profileRepoStub struct {
	upsertFn   func(ctx context.Context, profile *models.Profile, setAvatar bool) error
	getByIDFn  func(ctx context.Context, userID string) (*models.Profile, error)
	getByIDsFn func(ctx context.Context, userIDs []string) ([]models.Profile, error)
}

func (s *profileRepoStub) Upsert(ctx context.Context, profile *models.Profile, setAvatar bool) error {
	if s.upsertFn == nil {
		panic("profileRepoStub.Upsert not configured")
	}
	return s.upsertFn(ctx, profile, setAvatar)
}

func (s *profileRepoStub) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	if s.getByIDFn == nil {
		panic("profileRepoStub.GetByID not configured")
	}
	return s.getByIDFn(ctx, userID)
}

func (s *profileRepoStub) GetByIDs(ctx context.Context, userIDs []string) ([]models.Profile, error) {
	if s.getByIDsFn == nil {
		panic("profileRepoStub.GetByIDs not configured")
	}
	return s.getByIDsFn(ctx, userIDs)
}

// emptyProfileRepo never finds any profile; good enough for tests that only
// exercise post or rating behavior.
func emptyProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		getByIDsFn: func(ctx context.Context, userIDs []string) ([]models.Profile, error) {
			return nil, nil
		},
		getByIDFn: func(ctx context.Context, userID string) (*models.Profile, error) {
			return nil, nil
		},
	}
}

type userRepoStub struct {
	createFn     func(ctx context.Context, user *models.User) error
	getByEmailFn func(ctx context.Context, email string) (*models.User, error)
	getByIDFn    func(ctx context.Context, id string) (*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	if s.createFn == nil {
		panic("userRepoStub.Create not configured")
	}
	return s.createFn(ctx, user)
}

func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.getByEmailFn == nil {
		panic("userRepoStub.GetByEmail not configured")
	}
	return s.getByEmailFn(ctx, email)
}

func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	if s.getByIDFn == nil {
		panic("userRepoStub.GetByID not configured")
	}
	return s.getByIDFn(ctx, id)
}

// blobStoreStub records writes and deletes so tests can assert on the
// compensation path.
type blobStoreStub struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	putErr  error
	delErr  error
}

func (s *blobStoreStub) Put(ctx context.Context, path string, body io.Reader, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts = append(s.puts, path)
	return nil
}

func (s *blobStoreStub) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.delErr != nil {
		return s.delErr
	}
	s.deletes = append(s.deletes, path)
	return nil
}

func (s *blobStoreStub) PublicURL(path string) string {
	return "http://cdn.test/" + path
}

var errBoom = errors.New("boom")

// notFoundPostRepo always reports the post missing.
func notFoundPostRepo() *postRepoStub {
	return &postRepoStub{
		getByIDFn: func(ctx context.Context, id string) (*models.Post, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
}
