package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile_NormalizeAndValidate(t *testing.T) {
	p := &Profile{ID: "user-abc123xyz", Username: "  taro  ", Part2: PartBass}
	p.Normalize()

	assert.Equal(t, "taro", p.Username)
	assert.Equal(t, []Part{PartUnset, PartBass, PartUnset, PartUnset}, p.PartList())
	assert.True(t, p.HasPart(PartBass))
	assert.False(t, p.HasPart(PartLead))
	require.NoError(t, p.Validate())

	tests := []struct {
		name   string
		mutate func(p *Profile)
	}{
		{"blank username", func(p *Profile) { p.Username = "   " }},
		{"unknown gaibu answer", func(p *Profile) { p.GaibuIyoku = "maybe" }},
		{"unknown part", func(p *Profile) { p.Part3 = "Tuba" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := *p
			tt.mutate(&bad)
			err := bad.Validate()
			var appErr *AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, CodeValidation, appErr.Code)
		})
	}
}

func TestBandPost_Validate(t *testing.T) {
	post := &BandPost{Theme: " ジブリ ", TargetParts: "Bass"}
	post.Normalize()
	assert.Equal(t, PostTypeRegular, post.PostType)
	assert.Equal(t, "ジブリ", post.Theme)
	assert.NoError(t, post.Validate())

	assert.Error(t, (&BandPost{TargetParts: "Bass", PostType: PostTypeKikaku}).Validate())
	assert.Error(t, (&BandPost{Theme: "x", PostType: PostTypeKikaku}).Validate())
	assert.Error(t, (&BandPost{Theme: "x", TargetParts: "y", PostType: "other"}).Validate())
}

func TestPostComment_VisibleTo(t *testing.T) {
	post := &BandPost{ProfileID: "owner"}
	byOther := &PostComment{ProfileID: "other"}
	byThird := &PostComment{ProfileID: "third"}

	assert.True(t, byOther.VisibleTo(post, "owner"))
	assert.True(t, byOther.VisibleTo(post, "other"))
	assert.False(t, byThird.VisibleTo(post, "other"))
	assert.False(t, byOther.VisibleTo(post, ""))
}

func TestBandPost_LikedBy(t *testing.T) {
	post := &BandPost{Likes: []PostLike{{PostID: 1, ProfileID: "a"}}}
	assert.True(t, post.LikedBy("a"))
	assert.False(t, post.LikedBy("b"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("x"), 400},
		{NewUnauthorizedError("x"), 401},
		{NewForbiddenError("x"), 403},
		{NewNotFoundError("Profile", "a"), 404},
		{NewConflictError("x"), 409},
		{fmt.Errorf("wrapped: %w", NewConflictError("x")), 409},
		{errors.New("plain"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}
