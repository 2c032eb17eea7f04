package service

import (
	"context"
	"strings"

	"clubboard/internal/models"
	"clubboard/internal/notifications"
	"clubboard/internal/repository"
)

// BoardService applies ownership rules to posts, likes and comments.
type BoardService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	profiles repository.ProfileRepository
	events   notifications.Publisher
}

func NewBoardService(
	posts repository.PostRepository,
	comments repository.CommentRepository,
	profiles repository.ProfileRepository,
	events notifications.Publisher,
) *BoardService {
	return &BoardService{
		posts:    posts,
		comments: comments,
		profiles: profiles,
		events:   publisherOrNoop(events),
	}
}

// List returns every post newest first with authors, likes and comments.
func (s *BoardService) List(ctx context.Context) ([]models.BandPost, error) {
	return s.posts.List(ctx)
}

// Create inserts post as the caller. The caller must have a profile.
func (s *BoardService) Create(ctx context.Context, callerID string, post *models.BandPost) (*models.BandPost, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to post")
	}
	post.Normalize()
	if err := post.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireProfile(ctx, callerID); err != nil {
		return nil, err
	}

	post.ID = 0
	post.ProfileID = callerID
	post.Likes = nil
	post.Comments = nil
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	announce(ctx, s.events, models.CollectionPosts, models.ChangeInsert, uintID(post.ID))
	return post, nil
}

// Update rewrites the editable fields of one of the caller's posts.
func (s *BoardService) Update(ctx context.Context, callerID string, id uint, changes *models.BandPost) (*models.BandPost, error) {
	existing, err := s.ownPost(ctx, callerID, id)
	if err != nil {
		return nil, err
	}
	changes.Normalize()
	if err := changes.Validate(); err != nil {
		return nil, err
	}

	existing.PostType = changes.PostType
	existing.Theme = changes.Theme
	existing.Members = changes.Members
	existing.TargetParts = changes.TargetParts
	existing.StartPeriod = changes.StartPeriod
	existing.ExtraRemarks = changes.ExtraRemarks
	if err := s.posts.Update(ctx, existing); err != nil {
		return nil, err
	}
	announce(ctx, s.events, models.CollectionPosts, models.ChangeUpdate, uintID(id))
	return existing, nil
}

// Delete removes one of the caller's posts with its likes and comments.
func (s *BoardService) Delete(ctx context.Context, callerID string, id uint) error {
	if _, err := s.ownPost(ctx, callerID, id); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	announce(ctx, s.events, models.CollectionPosts, models.ChangeDelete, uintID(id))
	return nil
}

// Like adds the caller to the post's likes. Liking twice is not an error;
// the result reports whether a like was added.
func (s *BoardService) Like(ctx context.Context, callerID string, postID uint) (bool, error) {
	if callerID == "" {
		return false, models.NewUnauthorizedError("Sign in to like posts")
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return false, err
	}
	added, err := s.posts.Like(ctx, postID, callerID)
	if err != nil {
		return false, err
	}
	if added {
		announce(ctx, s.events, models.CollectionLikes, models.ChangeInsert, uintID(postID))
	}
	return added, nil
}

// Unlike removes the caller's like. Removing a missing like is not an error.
func (s *BoardService) Unlike(ctx context.Context, callerID string, postID uint) (bool, error) {
	if callerID == "" {
		return false, models.NewUnauthorizedError("Sign in to like posts")
	}
	removed, err := s.posts.Unlike(ctx, postID, callerID)
	if err != nil {
		return false, err
	}
	if removed {
		announce(ctx, s.events, models.CollectionLikes, models.ChangeDelete, uintID(postID))
	}
	return removed, nil
}

// Comment appends a comment by the caller to a post.
func (s *BoardService) Comment(ctx context.Context, callerID string, postID uint, content string) (*models.PostComment, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to comment")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if err := s.requirePost(ctx, postID); err != nil {
		return nil, err
	}
	comment := &models.PostComment{PostID: postID, ProfileID: callerID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	announce(ctx, s.events, models.CollectionComments, models.ChangeInsert, uintID(comment.ID))
	return comment, nil
}

func (s *BoardService) ownPost(ctx context.Context, callerID string, id uint) (*models.BandPost, error) {
	if callerID == "" {
		return nil, models.NewUnauthorizedError("Sign in to change posts")
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	if post.ProfileID != callerID {
		return nil, models.NewForbiddenError("You can only change your own posts")
	}
	return post, nil
}

func (s *BoardService) requirePost(ctx context.Context, id uint) error {
	if _, err := s.posts.GetByID(ctx, id); err != nil {
		if repository.IsNotFound(err) {
			return models.NewNotFoundError("Post", id)
		}
		return err
	}
	return nil
}

func (s *BoardService) requireProfile(ctx context.Context, memberID string) error {
	if _, err := s.profiles.GetByID(ctx, memberID); err != nil {
		if repository.IsNotFound(err) {
			return models.NewValidationError("Save your profile before posting")
		}
		return err
	}
	return nil
}
