package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"clubboard/internal/models"
)

// Messages shown by the board views.
const (
	MsgPostFieldsRequired = "テーマと募集パートを入力してください"
	MsgPostFailed         = "投稿に失敗しました"
	MsgLikeFailed         = "いいねに失敗しました"
	MsgCommentRequired    = "コメントを入力してください"
	MsgCommentFailed      = "コメントに失敗しました"
	MsgNotYourPost        = "自分の投稿のみ編集できます"
)

// BoardStore holds the post list, the post form with its edit state and the
// per-post comment drafts.
type BoardStore struct {
	gw      BoardGateway
	confirm Confirmer
	logger  *slog.Logger

	mu        sync.Mutex
	memberID  string
	posts     []models.BandPost
	form      PostForm
	editingID uint
	drafts    map[uint]string
}

// NewBoardStore returns an idle store. A nil confirm accepts every prompt.
func NewBoardStore(gw BoardGateway, confirm Confirmer, logger *slog.Logger) *BoardStore {
	if confirm == nil {
		confirm = AlwaysConfirm
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardStore{
		gw:      gw,
		confirm: confirm,
		logger:  logger,
		form:    NewPostForm(),
		drafts:  make(map[uint]string),
	}
}

func (s *BoardStore) SetMemberID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memberID = id
}

// Posts returns a copy of the last fetched list, newest first.
func (s *BoardStore) Posts() []models.BandPost {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BandPost(nil), s.posts...)
}

func (s *BoardStore) Form() PostForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *BoardStore) SetForm(f PostForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = f
}

func (s *BoardStore) UpdateForm(fn func(f *PostForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.form)
}

// Editing returns the post being edited, if any.
func (s *BoardStore) Editing() (uint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingID, s.editingID != 0
}

// FetchAll replaces the list. Failures are logged and the list is kept.
func (s *BoardStore) FetchAll(ctx context.Context) error {
	posts, err := s.gw.ListPosts(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to fetch posts", slog.String("error", err.Error()))
		return err
	}
	s.mu.Lock()
	s.posts = posts
	s.mu.Unlock()
	return nil
}

// StartEdit moves to editing post. Only the viewer's own posts are editable.
func (s *BoardStore) StartEdit(post models.BandPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberID == "" || post.ProfileID != s.memberID {
		return models.NewForbiddenError(MsgNotYourPost)
	}
	s.form.LoadFrom(post)
	s.editingID = post.ID
	return nil
}

// CancelEdit clears the form and returns to idle.
func (s *BoardStore) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Reset()
	s.editingID = 0
}

// Save updates the edited post or creates a new one. The form is kept when
// the write fails.
func (s *BoardStore) Save(ctx context.Context) error {
	s.mu.Lock()
	memberID := s.memberID
	form := s.form
	editingID := s.editingID
	s.mu.Unlock()

	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	post := form.ToPost(memberID)
	if post.Theme == "" || post.TargetParts == "" {
		return models.NewValidationError(MsgPostFieldsRequired)
	}

	var err error
	if editingID != 0 {
		err = s.gw.UpdatePost(ctx, editingID, post)
	} else {
		err = s.gw.CreatePost(ctx, post)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", MsgPostFailed, err)
	}

	s.mu.Lock()
	s.form.Reset()
	s.editingID = 0
	s.mu.Unlock()
	return s.FetchAll(ctx)
}

// Delete removes post id after confirmation.
func (s *BoardStore) Delete(ctx context.Context, id uint) error {
	s.mu.Lock()
	memberID := s.memberID
	s.mu.Unlock()
	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if !s.confirm.Confirm(MsgConfirmDelete) {
		return ErrCancelled
	}
	if err := s.gw.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", MsgDeleteFailed, err)
	}
	s.mu.Lock()
	if s.editingID == id {
		s.form.Reset()
		s.editingID = 0
	}
	delete(s.drafts, id)
	s.mu.Unlock()
	return s.FetchAll(ctx)
}

// ToggleLike likes or unlikes postID for the viewer. A duplicate like is
// success. The list is re-fetched whatever the outcome.
func (s *BoardStore) ToggleLike(ctx context.Context, postID uint, alreadyLiked bool) error {
	s.mu.Lock()
	memberID := s.memberID
	s.mu.Unlock()
	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}

	var err error
	if alreadyLiked {
		err = s.gw.DeleteLike(ctx, postID, memberID)
	} else if err = s.gw.InsertLike(ctx, postID, memberID); errors.Is(err, ErrDuplicate) {
		err = nil
	}
	fetchErr := s.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", MsgLikeFailed, err)
	}
	return fetchErr
}

// IsLiked reports whether the viewer likes post.
func (s *BoardStore) IsLiked(post *models.BandPost) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memberID != "" && post.LikedBy(s.memberID)
}

func (s *BoardStore) SetCommentDraft(postID uint, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[postID] = text
}

func (s *BoardStore) CommentDraft(postID uint) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[postID]
}

// Comment posts the draft for postID and clears it.
func (s *BoardStore) Comment(ctx context.Context, postID uint) error {
	s.mu.Lock()
	memberID := s.memberID
	content := strings.TrimSpace(s.drafts[postID])
	s.mu.Unlock()

	if memberID == "" {
		return models.NewUnauthorizedError(MsgNoIdentity)
	}
	if content == "" {
		return models.NewValidationError(MsgCommentRequired)
	}
	if err := s.gw.InsertComment(ctx, postID, memberID, content); err != nil {
		return fmt.Errorf("%s: %w", MsgCommentFailed, err)
	}
	s.mu.Lock()
	delete(s.drafts, postID)
	s.mu.Unlock()
	return s.FetchAll(ctx)
}

// VisibleComments returns the comments on post the viewer may read, in
// submission order.
func (s *BoardStore) VisibleComments(post *models.BandPost) []models.PostComment {
	s.mu.Lock()
	viewer := s.memberID
	s.mu.Unlock()

	out := make([]models.PostComment, 0, len(post.Comments))
	for i := range post.Comments {
		if post.Comments[i].VisibleTo(post, viewer) {
			out = append(out, post.Comments[i])
		}
	}
	return out
}
