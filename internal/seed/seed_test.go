package seed

import (
	"testing"

	"starboard/internal/database"
	"starboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestSeederRun(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(8, 20, true))

	var userCount, postCount, ratingCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Rating{}).Count(&ratingCount).Error)

	assert.Equal(t, int64(8), userCount)
	assert.Equal(t, int64(20), postCount)

	// Every rating is in range and nobody rated their own post.
	var ratings []models.Rating
	require.NoError(t, db.Find(&ratings).Error)
	postAuthors := map[string]string{}
	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	for _, p := range posts {
		postAuthors[p.ID] = p.UserID
	}
	for _, r := range ratings {
		assert.GreaterOrEqual(t, r.Value, models.RatingMin)
		assert.LessOrEqual(t, r.Value, models.RatingMax)
		assert.NotEqual(t, postAuthors[r.PostID], r.UserID)
	}
}

func TestSeederClearAll(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db)

	require.NoError(t, s.Run(3, 5, false))
	require.NoError(t, s.ClearAll())

	for _, model := range database.PersistentModels() {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count)
	}
}

func TestFactoryCreateUser_UniqueEmails(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db)

	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		user, err := f.CreateUser()
		require.NoError(t, err)
		assert.False(t, seen[user.Email], "emails must not repeat: %s", user.Email)
		seen[user.Email] = true
	}
}
