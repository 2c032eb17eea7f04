package repository

import (
	"context"
	"time"

	"clubboard/internal/cache"
	"clubboard/internal/models"
	"clubboard/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines the data operations on member profiles.
type ProfileRepository interface {
	List(ctx context.Context) ([]models.Profile, error)
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) (created bool, err error)
	SetDeletedAt(ctx context.Context, id string, at *time.Time) error
	Delete(ctx context.Context, id string) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

type profileRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db, log: observability.NewRepoLogger("profiles")}
}

func (r *profileRepository) List(ctx context.Context) ([]models.Profile, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "profiles")
	defer observability.TrackQuery("list", "profiles")()

	var profiles []models.Profile
	err := cache.Aside(ctx, cache.ProfilesListKey, &profiles, cache.ListTTL, func() error {
		return r.db.WithContext(ctx).Order("updated_at DESC").Find(&profiles).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	return profiles, nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert writes every column of profile, inserting or replacing by id.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) (bool, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "Upsert", "profiles")
	defer observability.TrackQuery("upsert", "profiles")()

	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Profile{}).Where("id = ?", profile.ID).Count(&n).Error; err != nil {
			return err
		}
		created = n == 0
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(profile).Error
	})
	observability.EndSpan(span, err)
	if err != nil {
		r.log.LogError(ctx, err, "upsert")
		return false, err
	}

	cache.InvalidateProfiles(ctx)
	if created {
		r.log.LogCreate(ctx, map[string]interface{}{"id": profile.ID})
	} else {
		r.log.LogUpdate(ctx, map[string]interface{}{"id": profile.ID})
	}
	return created, nil
}

// SetDeletedAt writes only deleted_at; updated_at keeps its value so the
// list order does not change on soft delete or restore.
func (r *profileRepository) SetDeletedAt(ctx context.Context, id string, at *time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Where("id = ?", id).
		UpdateColumn("deleted_at", at).Error
	if err != nil {
		r.log.LogError(ctx, err, "set_deleted_at")
		return err
	}
	cache.InvalidateProfiles(ctx)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": id, "deleted": at != nil})
	return nil
}

// Delete removes the profile together with its posts, likes and comments.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteProfileTree(tx, id)
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	cache.InvalidateProfiles(ctx)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

// PurgeDeletedBefore hard-deletes profiles soft-deleted before cutoff and
// returns their ids.
func (r *profileRepository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Profile{}).
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		for _, id := range ids {
			if err := deleteProfileTree(tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.log.LogError(ctx, err, "purge")
		return nil, err
	}
	if len(ids) > 0 {
		cache.InvalidateProfiles(ctx)
		r.log.LogDelete(ctx, map[string]interface{}{"purged": len(ids)})
	}
	return ids, nil
}

func deleteProfileTree(tx *gorm.DB, id string) error {
	ownPosts := func() *gorm.DB {
		return tx.Model(&models.BandPost{}).Select("id").Where("profile_id = ?", id)
	}
	if err := tx.Where("post_id IN (?) OR profile_id = ?", ownPosts(), id).Delete(&models.PostLike{}).Error; err != nil {
		return err
	}
	if err := tx.Where("post_id IN (?) OR profile_id = ?", ownPosts(), id).Delete(&models.PostComment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("profile_id = ?", id).Delete(&models.BandPost{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Profile{}).Error
}
