// Package service contains the application's business logic.
package service

import (
	"math"

	"starboard/internal/models"
	"starboard/internal/storage"
)

// round2 rounds to two decimal places, the precision every rating average is
// reported at.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeStats derives a post's aggregate rating figures from its ratings.
// The average is 0 (not NaN) when nobody has rated. viewerID selects the
// viewer's own rating; pass "" for anonymous readers, whose UserRating stays
// nil.
func ComputeStats(ratings []models.Rating, viewerID string) (avg float64, count int, userRating *int) {
	count = len(ratings)
	if count == 0 {
		return 0, 0, nil
	}

	sum := 0
	for i := range ratings {
		sum += ratings[i].Value
		if viewerID != "" && ratings[i].UserID == viewerID {
			v := ratings[i].Value
			userRating = &v
		}
	}
	avg = round2(float64(sum) / float64(count))
	return avg, count, userRating
}

// ApplyStats fills the computed rating fields on a post for one viewer.
func ApplyStats(post *models.Post, viewerID string) {
	avg, count, userRating := ComputeStats(post.Ratings, viewerID)
	post.AvgRating = avg
	post.RatingCount = count
	post.UserRating = userRating
}

// AttachProfiles joins author profiles onto posts by user id. Posts whose
// author has never saved a profile keep a nil Profile; display layers fall
// back to an anonymous label. Empty input is fine on both sides.
func AttachProfiles(posts []*models.Post, profiles []models.Profile, avatars storage.BlobStore) {
	if len(posts) == 0 {
		return
	}
	byID := make(map[string]*models.Profile, len(profiles))
	for i := range profiles {
		decorateProfile(&profiles[i], avatars)
		byID[profiles[i].ID] = &profiles[i]
	}
	for _, p := range posts {
		p.Profile = byID[p.UserID]
	}
}

// AuthorIDs returns the deduplicated author ids of the given posts.
func AuthorIDs(posts []*models.Post) []string {
	seen := make(map[string]struct{}, len(posts))
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		ids = append(ids, p.UserID)
	}
	return ids
}

// decorateProfile derives the public avatar URL from the stored path.
func decorateProfile(profile *models.Profile, avatars storage.BlobStore) {
	if profile == nil || profile.AvatarPath == nil || avatars == nil {
		return
	}
	url := avatars.PublicURL(*profile.AvatarPath)
	profile.AvatarURL = &url
}

// decorateMediaURL derives the public media URL from the stored path.
func decorateMediaURL(post *models.Post, media storage.BlobStore) {
	if post.MediaPath == nil || media == nil {
		return
	}
	url := media.PublicURL(*post.MediaPath)
	post.MediaURL = &url
}
