package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"starboard/internal/cache"
	"starboard/internal/featureflags"
	"starboard/internal/models"
	"starboard/internal/observability"
	"starboard/internal/repository"
	"starboard/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Upload size caps, enforced before any blob write.
const (
	MaxImageBytes = 5 << 20  // 5 MiB
	MaxVideoBytes = 20 << 20 // 20 MiB
	MaxAudioBytes = 20 << 20 // 20 MiB

	// MaxVideoDurationMs is inclusive; a 10000ms clip is accepted.
	MaxVideoDurationMs = 10000

	maxTitleLen   = 300
	maxContentLen = 50000
)

// AudioPostsFlag gates audio post creation. The kind exists in the schema
// either way; only the write path is flagged.
const AudioPostsFlag = "audio_posts"

// MediaUpload carries one uploaded file through the service layer.
type MediaUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PostService struct {
	postRepo    repository.PostRepository
	profileRepo repository.ProfileRepository
	media       storage.BlobStore
	avatars     storage.BlobStore
	flags       *featureflags.Manager
}

type CreatePostInput struct {
	UserID      string
	Kind        string
	Title       string
	TextContent string
	DurationMs  *int
	Media       *MediaUpload
}

type ListFeedInput struct {
	Page     int
	PerPage  int
	ViewerID string
}

func NewPostService(
	postRepo repository.PostRepository,
	profileRepo repository.ProfileRepository,
	media storage.BlobStore,
	avatars storage.BlobStore,
	flags *featureflags.Manager,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		profileRepo: profileRepo,
		media:       media,
		avatars:     avatars,
		flags:       flags,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "PostService", "CreatePost")
	defer span.End()

	kind := in.Kind
	if kind == "" {
		kind = models.PostKindText
	}
	switch kind {
	case models.PostKindText, models.PostKindImage, models.PostKindVideo:
		// valid
	case models.PostKindAudio:
		if !s.flags.Enabled(AudioPostsFlag, in.UserID) {
			return nil, models.NewValidationError("Audio posts are not enabled")
		}
	default:
		return nil, models.NewValidationError("Invalid kind")
	}

	if len(in.Title) > maxTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if len(in.TextContent) > maxContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	if kind == models.PostKindText {
		if strings.TrimSpace(in.Title) == "" && strings.TrimSpace(in.TextContent) == "" {
			return nil, models.NewValidationError("A title or text content is required for text posts")
		}
		if in.Media != nil {
			return nil, models.NewValidationError("Text posts cannot carry media")
		}
	} else {
		if err := validateMedia(kind, in.Media, in.DurationMs); err != nil {
			return nil, err
		}
	}

	post := &models.Post{
		ID:     uuid.NewString(),
		UserID: in.UserID,
		Kind:   kind,
	}
	if t := strings.TrimSpace(in.Title); t != "" {
		post.Title = &t
	}
	if c := in.TextContent; c != "" {
		post.TextContent = &c
	}
	if kind == models.PostKindVideo {
		post.VideoDurationMs = in.DurationMs
	}

	var mediaPath string
	if in.Media != nil {
		mediaPath = mediaObjectPath(in.UserID, post.ID, in.Media.Filename)
		if err := s.media.Put(ctx, mediaPath, in.Media.Body, in.Media.ContentType); err != nil {
			return nil, models.NewStoreFailure(err)
		}
		post.MediaPath = &mediaPath
		post.MediaMime = &in.Media.ContentType
		observability.MediaUploadBytes.WithLabelValues(kind).Observe(float64(in.Media.Size))
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		// The blob landed but the row did not: remove the orphan so a
		// failed create leaves no trace. The insert may have failed
		// because the client disconnected and canceled the request, so
		// the cleanup runs on a context that survives cancellation.
		if mediaPath != "" {
			cleanupCtx := context.WithoutCancel(ctx)
			if delErr := s.media.Delete(cleanupCtx, mediaPath); delErr != nil {
				observability.RecordErrorInContext(cleanupCtx, delErr)
			}
			observability.MediaCompensationDeletes.Inc()
		}
		return nil, models.NewStoreFailure(err)
	}

	observability.PostsCreated.WithLabelValues(kind).Inc()
	observability.AddTraceAttributesToContext(ctx,
		attribute.String("post.id", post.ID),
		attribute.String("post.kind", kind),
	)

	s.hydrate(ctx, []*models.Post{post}, in.UserID)
	return post, nil
}

// validateMedia enforces the per-kind upload rules before any bytes are stored.
func validateMedia(kind string, media *MediaUpload, durationMs *int) error {
	if media == nil {
		return models.NewValidationError("A media file is required for " + kind + " posts")
	}

	var wantPrefix string
	var maxBytes int64
	switch kind {
	case models.PostKindImage:
		wantPrefix, maxBytes = "image/", MaxImageBytes
	case models.PostKindVideo:
		wantPrefix, maxBytes = "video/", MaxVideoBytes
	case models.PostKindAudio:
		wantPrefix, maxBytes = "audio/", MaxAudioBytes
	}

	if !strings.HasPrefix(media.ContentType, wantPrefix) {
		return models.NewValidationError(fmt.Sprintf("%s posts require a %s* file", kind, wantPrefix))
	}
	if media.Size > maxBytes {
		return models.NewPayloadTooLargeError(fmt.Sprintf("File exceeds the %d MiB limit for %s posts", maxBytes>>20, kind))
	}

	if kind == models.PostKindVideo || kind == models.PostKindAudio {
		if durationMs == nil {
			return models.NewValidationError("duration_ms is required for " + kind + " posts")
		}
		if *durationMs <= 0 || *durationMs > MaxVideoDurationMs {
			return models.NewValidationError(fmt.Sprintf("duration_ms must be between 1 and %d", MaxVideoDurationMs))
		}
	}

	return nil
}

// mediaObjectPath builds the storage path for an upload. The owner and post
// segments make the path self-describing; the timestamp prefix keeps repeated
// filenames from colliding.
func mediaObjectPath(userID, postID, filename string) string {
	return fmt.Sprintf("%s/%s/%d_%s", userID, postID, time.Now().Unix(), safeFilename(filename))
}

// safeFilename strips directory components and characters that have no
// business in an object key.
func safeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}

func (s *PostService) ListFeed(ctx context.Context, in ListFeedInput) ([]*models.Post, error) {
	offset := (in.Page - 1) * in.PerPage

	// Anonymous feeds carry no viewer-specific fields, so pages can be
	// shared through the cache.
	if in.ViewerID == "" {
		var posts []*models.Post
		key := cache.FeedKey(in.Page, in.PerPage)
		if cache.GetJSON(ctx, key, "feed", &posts) {
			return posts, nil
		}

		posts, err := s.postRepo.List(ctx, in.PerPage, offset)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		s.hydrate(ctx, posts, "")
		cache.SetJSON(ctx, key, posts, cache.FeedTTL)
		return posts, nil
	}

	posts, err := s.postRepo.List(ctx, in.PerPage, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.hydrate(ctx, posts, in.ViewerID)
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*models.Post, error) {
	// Like the feed, the detail view is only cacheable for anonymous
	// viewers; authenticated reads carry a per-viewer user_rating.
	if viewerID == "" {
		var cached models.Post
		if cache.GetJSON(ctx, cache.PostKey(id), "post", &cached) {
			return &cached, nil
		}
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	s.hydrate(ctx, []*models.Post{post}, viewerID)
	if viewerID == "" {
		cache.SetJSON(ctx, cache.PostKey(id), post, cache.PostTTL)
	}
	return post, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, userID string, page, perPage int, viewerID string) ([]*models.Post, error) {
	offset := (page - 1) * perPage
	posts, err := s.postRepo.ListByUserID(ctx, userID, perPage, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.hydrate(ctx, posts, viewerID)
	return posts, nil
}

// DeletePost soft-deletes the post only if userID owns it. A missing,
// already-deleted, or foreign post all surface as the same not-found error,
// so callers cannot probe for other users' posts.
func (s *PostService) DeletePost(ctx context.Context, postID, userID string) error {
	ctx, span := observability.GetTraceLayer().TraceServiceMethod(ctx, "PostService", "DeletePost")
	defer span.End()

	affected, err := s.postRepo.SoftDeleteOwned(ctx, postID, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if affected == 0 {
		return models.NewNotFoundError("Post")
	}
	observability.PostsDeleted.Inc()
	return nil
}

// hydrate fills the computed fields on a batch of posts for one viewer.
func (s *PostService) hydrate(ctx context.Context, posts []*models.Post, viewerID string) {
	if len(posts) == 0 {
		return
	}
	for _, p := range posts {
		ApplyStats(p, viewerID)
		decorateMediaURL(p, s.media)
	}

	profiles, err := s.profileRepo.GetByIDs(ctx, AuthorIDs(posts))
	if err != nil {
		// Profiles are presentation data; a failed join degrades to
		// anonymous display rather than failing the read.
		observability.RecordErrorInContext(ctx, err)
		return
	}
	AttachProfiles(posts, profiles, s.avatars)
}
