package seed

import (
	"fmt"
	"log"

	"starboard/internal/models"

	"gorm.io/gorm"
)

// Seeder populates the database with demo users, posts and ratings.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll removes all seedable data, children first so foreign keys hold.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	for _, model := range []interface{}{
		&models.Rating{},
		&models.Post{},
		&models.Profile{},
		&models.User{},
	} {
		if err := s.db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// SeedUsers creates n users, most with profiles.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	log.Printf("Seeding %d users...", n)
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedPosts creates n posts spread across the given users.
func (s *Seeder) SeedPosts(users []*models.User, n int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to post as")
	}
	log.Printf("Seeding %d posts...", n)

	posts := make([]*models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.factory.rng.Intn(len(users))]
		posts = append(posts, s.factory.BuildPost(author, s.factory.randomKind()))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

// SeedRatings has each user rate a random subset of posts. A user never
// rates the same post twice here, matching the one-rating-per-user rule.
func (s *Seeder) SeedRatings(users []*models.User, posts []*models.Post) (int, error) {
	log.Printf("Seeding ratings from %d users over %d posts...", len(users), len(posts))

	total := 0
	for _, user := range users {
		for _, post := range posts {
			// ~20% of user/post pairs get a rating; own posts are skipped.
			if post.UserID == user.ID || s.factory.rng.Intn(5) != 0 {
				continue
			}
			if err := s.factory.CreateRating(post, user); err != nil {
				return total, fmt.Errorf("rate post %s as %s: %w", post.ID, user.ID, err)
			}
			total++
		}
	}
	return total, nil
}

// Run executes a full seed: optional clean, then users, posts and ratings.
func (s *Seeder) Run(numUsers, numPosts int, clean bool) error {
	if clean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users, err := s.SeedUsers(numUsers)
	if err != nil {
		return err
	}
	posts, err := s.SeedPosts(users, numPosts)
	if err != nil {
		return err
	}
	ratings, err := s.SeedRatings(users, posts)
	if err != nil {
		return err
	}

	log.Printf("Seeded %d users, %d posts, %d ratings", len(users), len(posts), ratings)
	return nil
}
