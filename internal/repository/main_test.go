package repository

import (
	"testing"
	"time"

	"starboard/internal/database"
	"starboard/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory sqlite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

// setupMockDB returns a gorm DB backed by sqlmock for asserting exact SQL.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedTextPost(t *testing.T, db *gorm.DB, userID string) *models.Post {
	t.Helper()
	title := "hello"
	body := "world"
	post := &models.Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		Kind:        models.PostKindText,
		Title:       &title,
		TextContent: &body,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, db.Create(post).Error)
	return post
}
