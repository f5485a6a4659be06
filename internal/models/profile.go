package models

import "time"

// Profile holds a user's display settings. Keyed by the user's id, created
// implicitly the first time the user saves profile settings.
type Profile struct {
	ID         string  `gorm:"type:uuid;primaryKey" json:"id"`
	FullName   *string `json:"full_name"`
	AvatarPath *string `json:"avatar_path"`
	// AvatarURL is the public read URL derived from AvatarPath
	AvatarURL *string   `gorm:"-" json:"avatar_url,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the trimmed full name or a fallback for anonymous display.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil || *p.FullName == "" {
		return "Anon"
	}
	return *p.FullName
}
