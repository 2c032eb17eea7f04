package repository

import (
	"context"

	"clubboard/internal/cache"
	"clubboard/internal/models"
	"clubboard/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the data operations on board posts and their likes.
type PostRepository interface {
	List(ctx context.Context) ([]models.BandPost, error)
	GetByID(ctx context.Context, id uint) (*models.BandPost, error)
	Create(ctx context.Context, post *models.BandPost) error
	Update(ctx context.Context, post *models.BandPost) error
	Delete(ctx context.Context, id uint) error
	Like(ctx context.Context, postID uint, profileID string) (bool, error)
	Unlike(ctx context.Context, postID uint, profileID string) (bool, error)
}

type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("band_posts")}
}

// List returns every post newest first with author, likes and comments
// (oldest first) attached.
func (r *postRepository) List(ctx context.Context) ([]models.BandPost, error) {
	ctx, span := observability.StartRepositorySpan(ctx, "List", "band_posts")
	defer observability.TrackQuery("list", "band_posts")()

	var posts []models.BandPost
	err := cache.Aside(ctx, cache.PostsListKey, &posts, cache.ListTTL, func() error {
		if err := r.db.WithContext(ctx).
			Preload("Likes", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC").Order("profile_id ASC")
			}).
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC").Order("id ASC")
			}).
			Order("created_at DESC").
			Order("id DESC").
			Find(&posts).Error; err != nil {
			return err
		}
		return attachAuthors(r.db.WithContext(ctx), posts)
	})
	observability.EndSpan(span, err)
	if err != nil {
		r.log.LogError(ctx, err, "list")
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.BandPost, error) {
	var post models.BandPost
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.BandPost) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return err
	}
	cache.InvalidatePosts(ctx)
	r.log.LogCreate(ctx, map[string]interface{}{"id": post.ID, "profile_id": post.ProfileID})
	return nil
}

// Update rewrites the editable columns. Owner and creation time are kept.
func (r *postRepository) Update(ctx context.Context, post *models.BandPost) error {
	err := r.db.WithContext(ctx).
		Model(&models.BandPost{ID: post.ID}).
		Select("post_type", "theme", "members", "target_parts", "start_period", "extra_remarks").
		Updates(post).Error
	if err != nil {
		r.log.LogError(ctx, err, "update")
		return err
	}
	cache.InvalidatePosts(ctx)
	r.log.LogUpdate(ctx, map[string]interface{}{"id": post.ID})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostComment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.BandPost{}, id).Error
	})
	if err != nil {
		r.log.LogError(ctx, err, "delete")
		return err
	}
	cache.InvalidatePosts(ctx)
	r.log.LogDelete(ctx, map[string]interface{}{"id": id})
	return nil
}

// Like inserts the (post, profile) pair unless it exists. It reports
// whether a row was added.
func (r *postRepository) Like(ctx context.Context, postID uint, profileID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PostLike{PostID: postID, ProfileID: profileID})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "like")
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePosts(ctx)
	}
	return result.RowsAffected > 0, nil
}

// Unlike removes the (post, profile) pair. It reports whether a row was removed.
func (r *postRepository) Unlike(ctx context.Context, postID uint, profileID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND profile_id = ?", postID, profileID).
		Delete(&models.PostLike{})
	if result.Error != nil {
		r.log.LogError(ctx, result.Error, "unlike")
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		cache.InvalidatePosts(ctx)
	}
	return result.RowsAffected > 0, nil
}

// attachAuthors fills Author on posts and their comments with one query.
func attachAuthors(db *gorm.DB, posts []models.BandPost) error {
	seen := map[string]struct{}{}
	var ids []string
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for i := range posts {
		add(posts[i].ProfileID)
		for j := range posts[i].Comments {
			add(posts[i].Comments[j].ProfileID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	var authors []models.Author
	if err := db.Model(&models.Profile{}).
		Select("id", "username", "avatar_url").
		Where("id IN ?", ids).
		Find(&authors).Error; err != nil {
		return err
	}
	byID := make(map[string]models.Author, len(authors))
	for _, a := range authors {
		byID[a.ID] = a
	}

	for i := range posts {
		if a, ok := byID[posts[i].ProfileID]; ok {
			a := a
			posts[i].Author = &a
		}
		for j := range posts[i].Comments {
			if a, ok := byID[posts[i].Comments[j].ProfileID]; ok {
				a := a
				posts[i].Comments[j].Author = &a
			}
		}
	}
	return nil
}
