package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache key families. The feed is cached per page for anonymous readers only;
// authenticated feeds carry viewer-specific user_rating values and skip the
// cache entirely.
const (
	FeedKeyPrefix    = "feed:%d:%d"
	PostKeyPrefix    = "post:%s"
	ProfileKeyPrefix = "profile:%s"
)

const (
	FeedTTL    = 30 * time.Second
	PostTTL    = 2 * time.Minute
	ProfileTTL = 5 * time.Minute
)

func FeedKey(page, perPage int) string {
	return fmt.Sprintf(FeedKeyPrefix, page, perPage)
}

func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func ProfileKey(userID string) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidatePost drops the cached detail view for one post.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateProfile drops the cached profile for one user.
func InvalidateProfile(ctx context.Context, userID string) {
	Invalidate(ctx, ProfileKey(userID))
}

// InvalidateFeed drops every cached feed page. Feed pages are keyed by
// pagination, so a SCAN over the family is needed rather than a single DEL.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "feed:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
