package service

import (
	"context"
	"time"

	"clubboard/internal/models"
	"clubboard/internal/notifications"
	"clubboard/internal/repository"
)

// ProfileService applies ownership rules to profile writes.
type ProfileService struct {
	repo   repository.ProfileRepository
	events notifications.Publisher
	now    func() time.Time
}

func NewProfileService(repo repository.ProfileRepository, events notifications.Publisher) *ProfileService {
	return &ProfileService{repo: repo, events: publisherOrNoop(events), now: time.Now}
}

// List returns every profile, deleted ones included, most recently saved first.
func (s *ProfileService) List(ctx context.Context) ([]models.Profile, error) {
	return s.repo.List(ctx)
}

// Save replaces the caller's profile with p. updated_at is stamped by the
// server; deleted_at is taken from p, so a save from a client that sends
// null restores a soft-deleted profile.
func (s *ProfileService) Save(ctx context.Context, callerID string, p *models.Profile) (*models.Profile, bool, error) {
	if callerID == "" {
		return nil, false, models.NewUnauthorizedError("Sign in to save a profile")
	}
	if p.ID == "" {
		p.ID = callerID
	}
	if p.ID != callerID {
		return nil, false, models.NewForbiddenError("You can only save your own profile")
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, false, err
	}
	p.UpdatedAt = s.now().UTC()

	created, err := s.repo.Upsert(ctx, p)
	if err != nil {
		return nil, false, err
	}
	typ := models.ChangeUpdate
	if created {
		typ = models.ChangeInsert
	}
	announce(ctx, s.events, models.CollectionProfiles, typ, p.ID)
	return p, created, nil
}

// SetDeleted soft-deletes (deleted=true) or restores the caller's profile.
// Restoring a profile that was never deleted changes nothing.
func (s *ProfileService) SetDeleted(ctx context.Context, callerID, id string, deleted bool) error {
	if err := ownProfile(callerID, id); err != nil {
		return err
	}
	var at *time.Time
	if deleted {
		now := s.now().UTC()
		at = &now
	}
	if err := s.repo.SetDeletedAt(ctx, id, at); err != nil {
		return err
	}
	announce(ctx, s.events, models.CollectionProfiles, models.ChangeUpdate, id)
	return nil
}

// Delete removes the caller's profile and everything that hangs off it.
func (s *ProfileService) Delete(ctx context.Context, callerID, id string) error {
	if err := ownProfile(callerID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	announce(ctx, s.events, models.CollectionProfiles, models.ChangeDelete, id)
	announce(ctx, s.events, models.CollectionPosts, models.ChangeDelete, "")
	return nil
}

// PurgeDeleted hard-deletes profiles soft-deleted for longer than retention.
func (s *ProfileService) PurgeDeleted(ctx context.Context, retention time.Duration) ([]string, error) {
	ids, err := s.repo.PurgeDeletedBefore(ctx, s.now().UTC().Add(-retention))
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		announce(ctx, s.events, models.CollectionProfiles, models.ChangeDelete, id)
	}
	if len(ids) > 0 {
		announce(ctx, s.events, models.CollectionPosts, models.ChangeDelete, "")
	}
	return ids, nil
}

func ownProfile(callerID, id string) error {
	if callerID == "" {
		return models.NewUnauthorizedError("Sign in to change a profile")
	}
	if id != callerID {
		return models.NewForbiddenError("You can only change your own profile")
	}
	return nil
}
