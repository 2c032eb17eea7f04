package service

import (
	"context"
	"testing"

	"clubboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMember(t *testing.T, f *fixture, id string) {
	t.Helper()
	_, _, err := f.profiles.Save(context.Background(), id, &models.Profile{Username: id})
	require.NoError(t, err)
}

func TestBoardService_CreateRequiresProfile(t *testing.T) {
	f := newFixture(t)
	_, err := f.board.Create(context.Background(), "user-aaaaaaaaa", &models.BandPost{Theme: "Jazz", TargetParts: "Bass"})
	require.Error(t, err)
	assert.Equal(t, 400, models.StatusFor(err))
}

func TestBoardService_CreateOwnsPostAndValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedMember(t, f, "user-aaaaaaaaa")

	_, err := f.board.Create(ctx, "user-aaaaaaaaa", &models.BandPost{Theme: " ", TargetParts: "Bass"})
	assert.Equal(t, 400, models.StatusFor(err))

	post, err := f.board.Create(ctx, "user-aaaaaaaaa", &models.BandPost{
		ID: 99, ProfileID: "user-zzzzzzzzz", Theme: "Jazz", TargetParts: "Bass",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uint(99), post.ID)
	assert.Equal(t, "user-aaaaaaaaa", post.ProfileID)
	assert.Equal(t, models.PostTypeRegular, post.PostType)
}

func TestBoardService_UpdateAndDeleteOwnOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedMember(t, f, "user-aaaaaaaaa")
	post, err := f.board.Create(ctx, "user-aaaaaaaaa", &models.BandPost{Theme: "Jazz", TargetParts: "Bass"})
	require.NoError(t, err)

	_, err = f.board.Update(ctx, "user-bbbbbbbbb", post.ID, &models.BandPost{Theme: "Rock", TargetParts: "Perc"})
	assert.Equal(t, 403, models.StatusFor(err))

	updated, err := f.board.Update(ctx, "user-aaaaaaaaa", post.ID, &models.BandPost{
		PostType: models.PostTypeKikaku, Theme: "Rock", TargetParts: "Perc",
	})
	require.NoError(t, err)
	assert.Equal(t, "Rock", updated.Theme)
	assert.Equal(t, "user-aaaaaaaaa", updated.ProfileID)

	_, err = f.board.Update(ctx, "user-aaaaaaaaa", 4242, &models.BandPost{Theme: "x", TargetParts: "y"})
	assert.Equal(t, 404, models.StatusFor(err))

	assert.Equal(t, 403, models.StatusFor(f.board.Delete(ctx, "user-bbbbbbbbb", post.ID)))
	require.NoError(t, f.board.Delete(ctx, "user-aaaaaaaaa", post.ID))

	posts, err := f.board.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestBoardService_LikeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedMember(t, f, "user-aaaaaaaaa")
	post, err := f.board.Create(ctx, "user-aaaaaaaaa", &models.BandPost{Theme: "Jazz", TargetParts: "Bass"})
	require.NoError(t, err)

	added, err := f.board.Like(ctx, "user-bbbbbbbbb", post.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = f.board.Like(ctx, "user-bbbbbbbbb", post.ID)
	require.NoError(t, err)
	assert.False(t, added)

	posts, err := f.board.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Len(t, posts[0].Likes, 1)
	assert.True(t, posts[0].LikedBy("user-bbbbbbbbb"))

	removed, err := f.board.Unlike(ctx, "user-bbbbbbbbb", post.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = f.board.Unlike(ctx, "user-bbbbbbbbb", post.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = f.board.Like(ctx, "user-bbbbbbbbb", 4242)
	assert.Equal(t, 404, models.StatusFor(err))

	likeEvents := 0
	for _, c := range f.events.collections() {
		if c == "post_likes:INSERT" || c == "post_likes:DELETE" {
			likeEvents++
		}
	}
	assert.Equal(t, 2, likeEvents)
}

func TestBoardService_Comment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	seedMember(t, f, "user-aaaaaaaaa")
	post, err := f.board.Create(ctx, "user-aaaaaaaaa", &models.BandPost{Theme: "Jazz", TargetParts: "Bass"})
	require.NoError(t, err)

	_, err = f.board.Comment(ctx, "user-bbbbbbbbb", post.ID, "   ")
	assert.Equal(t, 400, models.StatusFor(err))
	_, err = f.board.Comment(ctx, "", post.ID, "hi")
	assert.Equal(t, 401, models.StatusFor(err))

	c, err := f.board.Comment(ctx, "user-bbbbbbbbb", post.ID, " interested ")
	require.NoError(t, err)
	assert.Equal(t, "interested", c.Content)
	assert.Equal(t, "user-bbbbbbbbb", c.ProfileID)
}
