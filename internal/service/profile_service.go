package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"starboard/internal/cache"
	"starboard/internal/models"
	"starboard/internal/observability"
	"starboard/internal/repository"
	"starboard/internal/storage"
	"starboard/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
	avatars     storage.BlobStore
}

type UpdateProfileInput struct {
	UserID   string
	FullName string
	Avatar   *MediaUpload
}

func NewProfileService(profileRepo repository.ProfileRepository, avatars storage.BlobStore) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, avatars: avatars}
}

// UpdateProfile saves display settings. The profile row is created on first
// save; saving identical values again is a harmless overwrite. The avatar is
// only replaced when a new file is part of the request.
func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	span, ctx := observability.NewSpan(ctx, "ProfileService.UpdateProfile")
	defer span.End()
	span.AddAttributes(attribute.Bool("profile.has_avatar", in.Avatar != nil))

	if err := validation.ValidateDisplayName(in.FullName); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	profile := &models.Profile{ID: in.UserID}
	if name := strings.TrimSpace(in.FullName); name != "" {
		profile.FullName = &name
	}

	var avatarPath string
	if in.Avatar != nil {
		if !strings.HasPrefix(in.Avatar.ContentType, "image/") {
			return nil, models.NewValidationError("Avatar must be an image file")
		}
		if in.Avatar.Size > MaxImageBytes {
			return nil, models.NewPayloadTooLargeError(fmt.Sprintf("Avatar exceeds the %d MiB limit", MaxImageBytes>>20))
		}

		avatarPath = fmt.Sprintf("%s/avatar/%d_%s", in.UserID, time.Now().Unix(), safeFilename(in.Avatar.Filename))
		if err := s.avatars.Put(ctx, avatarPath, in.Avatar.Body, in.Avatar.ContentType); err != nil {
			return nil, models.NewStoreFailure(err)
		}
		profile.AvatarPath = &avatarPath
	}

	if err := s.profileRepo.Upsert(ctx, profile, in.Avatar != nil); err != nil {
		span.SetError(err)
		// Remove the freshly uploaded avatar so the failed save leaves
		// no orphaned blob, even when the save failed because the
		// request itself was canceled.
		if avatarPath != "" {
			cleanupCtx := context.WithoutCancel(ctx)
			if delErr := s.avatars.Delete(cleanupCtx, avatarPath); delErr != nil {
				observability.RecordErrorInContext(cleanupCtx, delErr)
			}
			observability.MediaCompensationDeletes.Inc()
		}
		return nil, models.NewInternalError(err)
	}

	return s.GetProfile(ctx, in.UserID)
}

// GetProfile returns the stored profile, or an empty one when the user has
// never saved settings. Either way the result is renderable. Stored profiles
// are read cache-aside; the upsert path invalidates the entry.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var cached models.Profile
	if cache.GetJSON(ctx, cache.ProfileKey(userID), "profile", &cached) {
		return &cached, nil
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if profile == nil {
		// Never-saved profiles are not cached.
		return &models.Profile{ID: userID}, nil
	}
	decorateProfile(profile, s.avatars)
	cache.SetJSON(ctx, cache.ProfileKey(userID), profile, cache.ProfileTTL)
	return profile, nil
}
