// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post kinds. Audio exists in the schema but creation is gated behind the
// audio_posts feature flag.
const (
	PostKindText  = "text"
	PostKindImage = "image"
	PostKindVideo = "video"
	PostKindAudio = "audio"
)

// Post represents a post in the Starboard application. A post is either pure
// text or carries exactly one media object uploaded at creation time; the
// media reference is immutable afterwards.
type Post struct {
	ID              string  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Kind            string  `gorm:"not null" json:"kind"`
	Title           *string `json:"title"`
	TextContent     *string `gorm:"type:text" json:"text_content"`
	MediaPath       *string `json:"media_path"`
	MediaMime       *string `json:"media_mime"`
	VideoDurationMs *int    `json:"video_duration_ms"`

	Ratings []Rating `gorm:"foreignKey:PostID" json:"-"`

	// AvgRating is not persisted; computed at read time from Ratings
	AvgRating float64 `gorm:"-" json:"avg_rating"`
	// RatingCount is not persisted; computed at read time
	RatingCount int `gorm:"-" json:"rating_count"`
	// UserRating is the viewer's own rating value (nil when unrated or anonymous)
	UserRating *int     `gorm:"-" json:"user_rating"`
	Profile    *Profile `gorm:"-" json:"profile,omitempty"`
	// MediaURL is the public read URL derived from MediaPath
	MediaURL *string `gorm:"-" json:"media_url,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsMediaKind reports whether the kind requires an uploaded media object.
func IsMediaKind(kind string) bool {
	switch kind {
	case PostKindImage, PostKindVideo, PostKindAudio:
		return true
	default:
		return false
	}
}
