package seed

import (
	"fmt"
	"os"
	"time"

	"clubboard/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// Fixture is a hand-written data set. Members get accounts with
// DefaultPassword; posts, likes and comments reference members by email.
type Fixture struct {
	Members []FixtureMember `yaml:"members"`
	Posts   []FixturePost   `yaml:"posts"`
}

type FixtureMember struct {
	Email      string   `yaml:"email"`
	Username   string   `yaml:"username"`
	Generation *int     `yaml:"generation"`
	Parts      []string `yaml:"parts"`
	Bio        string   `yaml:"bio"`
	Deleted    bool     `yaml:"deleted"`
}

type FixturePost struct {
	Author   string   `yaml:"author"`
	Type     string   `yaml:"type"`
	Theme    string   `yaml:"theme"`
	Parts    string   `yaml:"target_parts"`
	Start    string   `yaml:"start_period"`
	Remarks  string   `yaml:"extra_remarks"`
	LikedBy  []string `yaml:"liked_by"`
	Comments []struct {
		Author  string `yaml:"author"`
		Content string `yaml:"content"`
	} `yaml:"comments"`
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ApplyFixture writes f in one transaction.
func (s *Seeder) ApplyFixture(f *Fixture) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]string, len(f.Members))
		member := func(email string) (string, error) {
			id, ok := ids[email]
			if !ok {
				return "", fmt.Errorf("unknown member %q", email)
			}
			return id, nil
		}

		for _, m := range f.Members {
			user := models.User{Email: m.Email, Password: s.hash}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create account %s: %w", m.Email, err)
			}
			ids[m.Email] = user.ID

			p := models.Profile{
				ID:         user.ID,
				Username:   m.Username,
				Generation: m.Generation,
				Bio:        m.Bio,
				UpdatedAt:  time.Now().UTC(),
			}
			slots := []*models.Part{&p.Part, &p.Part2, &p.Part3, &p.Part4}
			for i, part := range m.Parts {
				if i < len(slots) {
					*slots[i] = models.Part(part)
				}
			}
			if m.Deleted {
				at := time.Now().UTC()
				p.DeletedAt = &at
			}
			p.Normalize()
			if err := p.Validate(); err != nil {
				return fmt.Errorf("member %s: %w", m.Email, err)
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create profile %s: %w", m.Email, err)
			}
		}

		for _, fp := range f.Posts {
			authorID, err := member(fp.Author)
			if err != nil {
				return err
			}
			post := models.BandPost{
				ProfileID:    authorID,
				PostType:     models.PostType(fp.Type),
				Theme:        fp.Theme,
				TargetParts:  fp.Parts,
				StartPeriod:  fp.Start,
				ExtraRemarks: fp.Remarks,
			}
			post.Normalize()
			if err := post.Validate(); err != nil {
				return fmt.Errorf("post %q: %w", fp.Theme, err)
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("create post %q: %w", fp.Theme, err)
			}
			for _, email := range fp.LikedBy {
				id, err := member(email)
				if err != nil {
					return err
				}
				if err := tx.Create(&models.PostLike{PostID: post.ID, ProfileID: id}).Error; err != nil {
					return fmt.Errorf("create like: %w", err)
				}
			}
			for _, c := range fp.Comments {
				id, err := member(c.Author)
				if err != nil {
					return err
				}
				if err := tx.Create(&models.PostComment{PostID: post.ID, ProfileID: id, Content: c.Content}).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
			}
		}
		return nil
	})
}
