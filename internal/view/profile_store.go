package view

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gosimple/slug"

	"clubboard/internal/models"
)

// Messages shown by the profile views.
const (
	MsgNameRequired   = "名前を入力してください"
	MsgSaveFailed     = "保存に失敗しました"
	MsgDeleteFailed   = "削除に失敗しました"
	MsgUploadFailed   = "アップロードに失敗しました"
	MsgConfirmDelete  = "本当に削除しますか？"
	MsgConfirmHide    = "プロフィールを非表示にしますか？"
	MsgNoIdentity     = "ログインしてください"
	MsgNotYourProfile = "自分のプロフィールのみ編集できます"
)

// ProfileStore holds the profile list, the viewer's form and the filters.
// The lock guards state only; gateway calls run without it.
type ProfileStore struct {
	profiles ProfileGateway
	objects  ObjectGateway
	confirm  Confirmer
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	memberID  string
	list      []models.Profile
	myDeleted bool
	form      ProfileForm
	filter    FilterState
	uploading bool
}

// NewProfileStore returns an empty store. objects may be nil when avatars
// are not used; a nil confirm accepts every prompt.
func NewProfileStore(profiles ProfileGateway, objects ObjectGateway, confirm Confirmer, logger *slog.Logger) *ProfileStore {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileStore{
		profiles: profiles,
		objects:  objects,
		confirm:  confirm,
		logger:   logger,
		now:      time.Now,
		form:     NewProfileForm(),
		filter:   NewFilterState(),
	}
}

// SetMemberID sets the viewer. An empty id means nobody is signed in.
func (s *ProfileStore) SetMemberID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberID = id
	s.myDeleted = s.ownDeletedLocked()
}

func (s *ProfileStore) MemberID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberID
}

// Profiles returns a copy of the last fetched list.
func (s *ProfileStore) Profiles() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Profile(nil), s.list...)
}

// MyDeleted reports whether the viewer's own profile is soft-deleted.
func (s *ProfileStore) MyDeleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.myDeleted
}

func (s *ProfileStore) Form() ProfileForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *ProfileStore) SetForm(f ProfileForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

// UpdateForm edits the form in place.
func (s *ProfileStore) UpdateForm(fn func(f *ProfileForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.form)
}

func (s *ProfileStore) Filter() FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *ProfileStore) SetFilter(f FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Uploading reports whether an avatar upload is in flight.
func (s *ProfileStore) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

// Visible is the filtered list for the viewer.
func (s *ProfileStore) Visible() []models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return VisibleProfiles(s.list, s.memberID, s.myDeleted, s.filter)
}

func (s *ProfileStore) ownDeletedLocked() bool {
	if s.memberID == "" {
		return false
	}
	for i := range s.list {
		if s.list[i].ID == s.memberID {
			return s.list[i].IsDeleted()
		}
	}
	return false
}

// FetchAll replaces the list with the collaborator's. The form is left
// alone so unsaved edits and a pending avatar survive a refresh. On failure
// the previous list is kept.
func (s *ProfileStore) FetchAll(ctx context.Context) error {
	list, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch profiles", slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
	s.myDeleted = s.ownDeletedLocked()
	return nil
}

// LoadOwn copies the viewer's own record from the current list into the
// form. It reports whether a record was found.
func (s *ProfileStore) LoadOwn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberID == "" {
		return false
	}
	for i := range s.list {
		if s.list[i].ID == s.memberID {
			s.form.LoadFrom(s.list[i])
			return true
		}
	}
	return false
}

// Save writes the form as the viewer's profile. The full record is sent, so
// saving also clears a soft delete.
func (s *ProfileStore) Save(ctx context.Context) error {
	s.mu.Lock()
	if s.uploading {
		s.mu.Unlock()
		return ErrUploading
	}
	memberID := s.memberID
	form := s.form
	s.mu.Unlock()

	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if strings.TrimSpace(form.Username) == "" {
		return models.NewValidationError(MsgNameRequired)
	}
	p, err := form.ToProfile(memberID)
	if err != nil {
		return err
	}

	if err := s.profiles.UpsertProfile(ctx, p); err != nil {
		return fmt.Errorf("%s: %w", MsgSaveFailed, err)
	}
	return s.FetchAll(ctx)
}

// StartEdit loads p into the form. Only the viewer's own profile can be edited.
func (s *ProfileStore) StartEdit(p models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberID == "" || p.ID != s.memberID {
		return models.NewForbiddenError(MsgNotYourProfile)
	}
	s.form.LoadFrom(p)
	return nil
}

// SoftDelete hides profile id after confirmation.
func (s *ProfileStore) SoftDelete(ctx context.Context, id string) error {
	if s.MemberID() == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if !s.confirm.Confirm(MsgConfirmHide) {
		return ErrCancelled
	}
	at := s.now().UTC()
	if err := s.profiles.SetProfileDeletedAt(ctx, id, &at); err != nil {
		return fmt.Errorf("%s: %w", MsgDeleteFailed, err)
	}
	return s.FetchAll(ctx)
}

// Restore clears the viewer's soft delete.
func (s *ProfileStore) Restore(ctx context.Context) error {
	memberID := s.MemberID()
	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if err := s.profiles.SetProfileDeletedAt(ctx, memberID, nil); err != nil {
		return fmt.Errorf("%s: %w", MsgSaveFailed, err)
	}
	return s.FetchAll(ctx)
}

// Delete removes profile id permanently after confirmation. Deleting the
// viewer's own profile resets the form.
func (s *ProfileStore) Delete(ctx context.Context, id string) error {
	memberID := s.MemberID()
	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if !s.confirm.Confirm(MsgConfirmDelete) {
		return ErrCancelled
	}
	if err := s.profiles.DeleteProfile(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", MsgDeleteFailed, err)
	}
	if id == memberID {
		s.mu.Lock()
		s.form.Reset()
		s.mu.Unlock()
	}
	return s.FetchAll(ctx)
}

// AvatarPath is the object path of an upload by memberID at t:
// "<member>/<unix ms>-<slug>.<ext>".
func AvatarPath(memberID, filename string, t time.Time) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(base), "."))
	if ext == "" {
		ext = "png"
	}
	name := slug.Make(strings.TrimSuffix(base, path.Ext(base)))
	if name == "" {
		name = "avatar"
	}
	return fmt.Sprintf("%s/%d-%s.%s", memberID, t.UnixMilli(), name, ext)
}

// UploadAvatar stores body under the viewer's folder and points the form's
// avatar at it. The URL carries a timestamp so clients load the new image.
// Only one upload runs at a time.
func (s *ProfileStore) UploadAvatar(ctx context.Context, filename string, body []byte) error {
	if s.objects == nil {
		return models.NewValidationError(MsgUploadFailed)
	}
	s.mu.Lock()
	if s.memberID == "" {
		s.mu.Unlock()
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if s.uploading {
		s.mu.Unlock()
		return ErrUploading
	}
	s.uploading = true
	memberID := s.memberID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.uploading = false
		s.mu.Unlock()
	}()

	at := s.now()
	key := AvatarPath(memberID, filename, at)
	if err := s.objects.UploadObject(ctx, key, body); err != nil {
		return fmt.Errorf("%s: %w", MsgUploadFailed, err)
	}
	url, err := s.objects.PublicURL(ctx, key)
	if err != nil {
		return fmt.Errorf("%s: %w", MsgUploadFailed, err)
	}

	s.mu.Lock()
	s.form.AvatarURL = url + "?t=" + strconv.FormatInt(at.UnixMilli(), 10)
	s.mu.Unlock()
	return nil
}
