package cache

import (
	"context"
	"time"
)

// Cached collection keys.
const (
	ProfilesListKey = "profiles:list"
	PostsListKey    = "posts:list"
)

// ListTTL bounds how stale a cached collection may be.
var ListTTL = 30 * time.Second

// Invalidate drops key. Errors are ignored; the TTL bounds staleness.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// InvalidateProfiles drops the cached profile list. Posts embed author
// names and avatars, so the post list goes too.
func InvalidateProfiles(ctx context.Context) {
	Invalidate(ctx, ProfilesListKey, PostsListKey)
}

// InvalidatePosts drops the cached post list.
func InvalidatePosts(ctx context.Context) {
	Invalidate(ctx, PostsListKey)
}
