// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"starboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account gets.
const DefaultPassword = "password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db           *gorm.DB
	rng          *rand.Rand
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	// One bcrypt hash shared by all seeded users; hashing per user makes
	// large seeds painfully slow.
	hash, _ := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	return &Factory{
		db:           db,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// CreateUser constructs and persists a sample user with a matching profile.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        fmt.Sprintf("%d.%s", gofakeit.Number(100, 999), gofakeit.Email()),
		PasswordHash: f.passwordHash,
	}
	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}

	// Most seeded users get a profile; some stay anonymous on purpose so
	// feeds exercise the fallback display path.
	if f.rng.Intn(10) < 8 {
		name := gofakeit.Name()
		profile := &models.Profile{ID: user.ID, FullName: &name}
		if f.rng.Intn(2) == 0 {
			path := fmt.Sprintf("%s/avatar/%d_seed.png", user.ID, time.Now().Unix())
			profile.AvatarPath = &path
		}
		if err := f.db.Create(profile).Error; err != nil {
			return nil, err
		}
	}

	return user, nil
}

// BuildPost constructs a post for the given author without persisting it.
func (f *Factory) BuildPost(user *models.User, kind string) *models.Post {
	post := &models.Post{
		ID:     uuid.NewString(),
		UserID: user.ID,
		Kind:   kind,
	}

	title := gofakeit.Sentence(5)
	post.Title = &title

	switch kind {
	case models.PostKindImage:
		path := fmt.Sprintf("%s/%s/%d_seed.jpg", user.ID, post.ID, time.Now().Unix())
		mime := "image/jpeg"
		post.MediaPath = &path
		post.MediaMime = &mime
	case models.PostKindVideo:
		path := fmt.Sprintf("%s/%s/%d_seed.mp4", user.ID, post.ID, time.Now().Unix())
		mime := "video/mp4"
		duration := gofakeit.Number(1000, 10000)
		post.MediaPath = &path
		post.MediaMime = &mime
		post.VideoDurationMs = &duration
	default:
		content := gofakeit.Paragraph(1, 3, 5, "\n")
		post.TextContent = &content
	}

	// realistic created_at spread over the last 90 days
	daysBack := f.rng.Intn(90)
	hoursBack := f.rng.Intn(24)
	post.CreatedAt = time.Now().Add(-time.Duration(daysBack)*24*time.Hour - time.Duration(hoursBack)*time.Hour)

	return post
}

// CreatePostsBatch persists multiple posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Create(&posts).Error
}

// CreateRating persists a rating of post by user. Comments appear on roughly
// a third of seeded ratings.
func (f *Factory) CreateRating(post *models.Post, user *models.User) error {
	rating := &models.Rating{
		PostID: post.ID,
		UserID: user.ID,
		Value:  f.rng.Intn(models.RatingMax-models.RatingMin+1) + models.RatingMin,
	}
	if f.rng.Intn(3) == 0 {
		comment := gofakeit.Sentence(8)
		rating.Comment = &comment
	}
	return f.db.Create(rating).Error
}

// randomKind picks a post kind with a text-heavy distribution.
func (f *Factory) randomKind() string {
	switch f.rng.Intn(10) {
	case 0, 1:
		return models.PostKindImage
	case 2:
		return models.PostKindVideo
	default:
		return models.PostKindText
	}
}
