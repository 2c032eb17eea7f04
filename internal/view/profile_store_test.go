package view_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubboard/internal/models"
	"clubboard/internal/testutil"
	"clubboard/internal/view"
)

func newProfileStore(t *testing.T, memberID string, confirm view.Confirmer) (*view.ProfileStore, *testutil.MemoryGateway) {
	t.Helper()
	gw := testutil.NewMemoryGateway()
	s := view.NewProfileStore(gw, gw, confirm, nil)
	s.SetMemberID(memberID)
	return s, gw
}

func TestProfileStore_SaveRejectsEmptyName(t *testing.T) {
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	s.UpdateForm(func(f *view.ProfileForm) { f.Username = "   " })

	err := s.Save(context.Background())
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, view.MsgNameRequired, appErr.Message)
	assert.Empty(t, gw.Calls(), "no gateway call before validation passes")
}

func TestProfileStore_SaveRequiresIdentity(t *testing.T) {
	s, gw := newProfileStore(t, "", nil)
	s.UpdateForm(func(f *view.ProfileForm) { f.Username = "taro" })

	err := s.Save(context.Background())
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeUnauthorized, appErr.Code)
	assert.Zero(t, gw.Writes())
}

func TestProfileStore_SaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newProfileStore(t, "user-aaaaaaaaa", nil)
	s.UpdateForm(func(f *view.ProfileForm) {
		f.Username = "taro"
		f.Generation = "12"
		f.Part = models.PartBass
		f.GaibuIyoku = models.GaibuYes
	})

	require.NoError(t, s.Save(ctx))
	require.NoError(t, s.Save(ctx))

	profiles := s.Profiles()
	require.Len(t, profiles, 1)
	p := profiles[0]
	assert.Equal(t, "user-aaaaaaaaa", p.ID)
	assert.Equal(t, "taro", p.Username)
	require.NotNil(t, p.Generation)
	assert.Equal(t, 12, *p.Generation)
	assert.Equal(t, models.PartBass, p.Part)
	assert.Equal(t, models.PartUnset, p.Part2)

	form := s.Form()
	assert.Equal(t, "12", form.Generation)
}

func TestProfileStore_SaveSurfacesGatewayError(t *testing.T) {
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	gw.Fail["UpsertProfile"] = errors.New("connection reset")
	s.UpdateForm(func(f *view.ProfileForm) { f.Username = "taro" })

	err := s.Save(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), view.MsgSaveFailed)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, "taro", s.Form().Username)
}

func TestProfileStore_SoftDeleteRestore(t *testing.T) {
	ctx := context.Background()
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	gw.PutProfile(models.Profile{ID: "user-aaaaaaaaa", Username: "taro"})
	gw.PutProfile(models.Profile{ID: "user-bbbbbbbbb", Username: "hana"})
	require.NoError(t, s.FetchAll(ctx))

	require.NoError(t, s.SoftDelete(ctx, "user-aaaaaaaaa"))
	assert.True(t, s.MyDeleted())
	assert.Equal(t, []string{"user-bbbbbbbbb"}, ids(s.Visible()))
	stored, _ := gw.Profile("user-aaaaaaaaa")
	assert.NotNil(t, stored.DeletedAt)

	require.NoError(t, s.Restore(ctx))
	assert.False(t, s.MyDeleted())
	assert.ElementsMatch(t, []string{"user-aaaaaaaaa", "user-bbbbbbbbb"}, ids(s.Visible()))

	// restoring again changes nothing
	before, _ := gw.Profile("user-aaaaaaaaa")
	require.NoError(t, s.Restore(ctx))
	after, _ := gw.Profile("user-aaaaaaaaa")
	assert.Equal(t, before, after)
}

func TestProfileStore_SaveClearsSoftDelete(t *testing.T) {
	ctx := context.Background()
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	gw.PutProfile(models.Profile{ID: "user-aaaaaaaaa", Username: "taro"})
	require.NoError(t, s.FetchAll(ctx))
	require.True(t, s.LoadOwn())
	require.NoError(t, s.SoftDelete(ctx, "user-aaaaaaaaa"))

	require.NoError(t, s.Save(ctx))
	stored, _ := gw.Profile("user-aaaaaaaaa")
	assert.Nil(t, stored.DeletedAt)
	assert.False(t, s.MyDeleted())
}

func TestProfileStore_DeleteNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	var prompts []string
	answer := false
	confirm := view.ConfirmFunc(func(prompt string) bool {
		prompts = append(prompts, prompt)
		return answer
	})
	s, gw := newProfileStore(t, "user-aaaaaaaaa", confirm)
	gw.PutProfile(models.Profile{ID: "user-aaaaaaaaa", Username: "taro"})
	require.NoError(t, s.FetchAll(ctx))

	assert.ErrorIs(t, s.Delete(ctx, "user-aaaaaaaaa"), view.ErrCancelled)
	assert.ErrorIs(t, s.SoftDelete(ctx, "user-aaaaaaaaa"), view.ErrCancelled)
	assert.Zero(t, gw.Writes())

	answer = true
	require.NoError(t, s.Delete(ctx, "user-aaaaaaaaa"))
	assert.Equal(t, view.MsgConfirmDelete, prompts[0])
	assert.Empty(t, s.Profiles())
	assert.Empty(t, s.Form().Username)
	assert.Equal(t, models.PartUnset, s.Form().Part)
}

func TestProfileStore_StartEditOwnOnly(t *testing.T) {
	s, _ := newProfileStore(t, "user-aaaaaaaaa", nil)

	err := s.StartEdit(models.Profile{ID: "user-bbbbbbbbb", Username: "hana"})
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.CodeForbidden, appErr.Code)

	require.NoError(t, s.StartEdit(models.Profile{ID: "user-aaaaaaaaa", Username: "taro", Generation: gen(4)}))
	assert.Equal(t, "taro", s.Form().Username)
	assert.Equal(t, "4", s.Form().Generation)
}

func TestProfileStore_UploadAvatar(t *testing.T) {
	ctx := context.Background()
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)

	require.NoError(t, s.UploadAvatar(ctx, "My Photo.PNG", []byte("png-bytes")))
	assert.False(t, s.Uploading())

	url := s.Form().AvatarURL
	assert.Regexp(t, regexp.MustCompile(`^https://cdn\.example\.test/avatars/user-aaaaaaaaa/\d+-my-photo\.png\?t=\d+$`), url)

	calls := gw.Calls()
	assert.Equal(t, []string{"UploadObject", "PublicURL"}, calls)
	_, exists := gw.Profile("user-aaaaaaaaa")
	assert.False(t, exists, "the profile is not written until save")
}

func TestProfileStore_FetchKeepsPendingEdits(t *testing.T) {
	ctx := context.Background()
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	gw.PutProfile(models.Profile{ID: "user-aaaaaaaaa", Username: "taro", Bio: "saved"})
	require.NoError(t, s.FetchAll(ctx))
	require.True(t, s.LoadOwn())

	require.NoError(t, s.UploadAvatar(ctx, "me.png", []byte("png-bytes")))
	s.UpdateForm(func(f *view.ProfileForm) { f.Bio = "unsaved edit" })
	avatar := s.Form().AvatarURL
	require.NotEmpty(t, avatar)

	require.NoError(t, s.FetchAll(ctx))
	assert.Equal(t, avatar, s.Form().AvatarURL)
	assert.Equal(t, "unsaved edit", s.Form().Bio)

	require.NoError(t, s.Save(ctx))
	stored, _ := gw.Profile("user-aaaaaaaaa")
	assert.Equal(t, avatar, stored.AvatarURL)
	assert.Equal(t, "unsaved edit", stored.Bio)
}

func TestProfileStore_LoadOwn(t *testing.T) {
	ctx := context.Background()
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	assert.False(t, s.LoadOwn())

	gw.PutProfile(models.Profile{ID: "user-bbbbbbbbb", Username: "hana"})
	require.NoError(t, s.FetchAll(ctx))
	assert.False(t, s.LoadOwn())
	assert.Empty(t, s.Form().Username)

	gw.PutProfile(models.Profile{ID: "user-aaaaaaaaa", Username: "taro", Generation: gen(7)})
	require.NoError(t, s.FetchAll(ctx))
	assert.Empty(t, s.Form().Username, "fetch does not touch the form")
	require.True(t, s.LoadOwn())
	assert.Equal(t, "taro", s.Form().Username)
	assert.Equal(t, "7", s.Form().Generation)
}

// heldObjects blocks UploadObject until release is closed.
type heldObjects struct {
	started chan struct{}
	release chan struct{}
}

func (h *heldObjects) UploadObject(ctx context.Context, _ string, _ []byte) error {
	close(h.started)
	select {
	case <-h.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *heldObjects) PublicURL(_ context.Context, path string) (string, error) {
	return "https://cdn.example.test/avatars/" + path, nil
}

func TestProfileStore_UploadInFlightBlocksSaveAndUpload(t *testing.T) {
	ctx := context.Background()
	gw := testutil.NewMemoryGateway()
	objects := &heldObjects{started: make(chan struct{}), release: make(chan struct{})}
	s := view.NewProfileStore(gw, objects, nil, nil)
	s.SetMemberID("user-aaaaaaaaa")
	s.UpdateForm(func(f *view.ProfileForm) { f.Username = "taro" })

	done := make(chan error, 1)
	go func() { done <- s.UploadAvatar(ctx, "me.png", []byte("png-bytes")) }()

	select {
	case <-objects.started:
	case <-time.After(2 * time.Second):
		t.Fatal("upload did not start")
	}
	assert.True(t, s.Uploading())
	assert.ErrorIs(t, s.Save(ctx), view.ErrUploading)
	assert.ErrorIs(t, s.UploadAvatar(ctx, "other.png", []byte("x")), view.ErrUploading)
	assert.NotContains(t, gw.Calls(), "UpsertProfile")

	close(objects.release)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("upload did not finish")
	}
	assert.False(t, s.Uploading())

	require.NoError(t, s.Save(ctx))
	stored, ok := gw.Profile("user-aaaaaaaaa")
	require.True(t, ok)
	assert.Contains(t, stored.AvatarURL, "/user-aaaaaaaaa/")
}

func TestProfileStore_UploadFailureKeepsForm(t *testing.T) {
	s, gw := newProfileStore(t, "user-aaaaaaaaa", nil)
	s.UpdateForm(func(f *view.ProfileForm) { f.AvatarURL = "https://old" })
	gw.Fail["UploadObject"] = errors.New("bucket full")

	err := s.UploadAvatar(context.Background(), "a.jpg", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), view.MsgUploadFailed)
	assert.Equal(t, "https://old", s.Form().AvatarURL)
	assert.False(t, s.Uploading())
}

func TestAvatarPath(t *testing.T) {
	at := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "m1/1711962000000-avatar.png", view.AvatarPath("m1", ".png", at))
	assert.Equal(t, "m1/1711962000000-live-shot.jpeg", view.AvatarPath("m1", "C:\\pics\\Live Shot.JPEG", at))
	assert.Equal(t, "m1/1711962000000-face.png", view.AvatarPath("m1", "face", at))
}
