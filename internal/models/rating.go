package models

import "time"

// Rating value bounds, inclusive.
const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is one user's rating of one post. The composite primary key
// (post_id, user_id) guarantees at most one active rating per rater per post;
// writes go through an upsert-on-conflict, never a read-then-write.
type Rating struct {
	PostID    string    `gorm:"type:uuid;primaryKey" json:"post_id"`
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	Value     int       `gorm:"not null;check:value >= 1 AND value <= 5" json:"value"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RatingWithProfile is a rating joined with the rater's profile for display.
type RatingWithProfile struct {
	UserID    string    `json:"user_id"`
	Value     int       `json:"value"`
	Comment   *string   `json:"comment"`
	UpdatedAt time.Time `json:"updated_at"`
	Profile   *Profile  `json:"profile,omitempty"`
}
