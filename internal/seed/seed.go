// Package seed fills a development database with members, posts, likes and
// comments, either generated or read from a YAML fixture.
package seed

import (
	"fmt"
	"log"
	"time"

	"clubboard/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Options controls a generated seed run.
type Options struct {
	Members int
	Posts   int
	// Seed makes the generated data reproducible; 0 picks a random one.
	Seed int64
}

var (
	schools  = []string{"文学部", "法学部", "経済学部", "理工学部", "教育学部", "商学部"}
	artists  = []string{"Official髭男dism", "Mrs. GREEN APPLE", "YOASOBI", "Pentatonix", "The Real Group", "ゴスペラーズ", "King Gnu"}
	themes   = []string{"ジブリメドレー", "合わせ練習", "J-POPカバー", "洋楽アカペラ", "クリスマス企画", "ボカロ縛り", "ゴスペル"}
	periods  = []string{"4月から", "夏合宿まで", "学祭前", "後期", "未定"}
	ranges   = []string{"mid1C〜hiA", "lowG〜mid2G", "hiC〜hiF", "lowE〜mid2C"}
	counts   = []string{"0", "1", "2", "3", "4+"}
	comments = []string{"参加したいです！", "Bassまだ空いてますか？", "練習日はいつですか？", "興味あります", "よろしくお願いします"}
	answers  = []string{models.GaibuYes, models.GaibuNo, ""}
)

// Seeder writes seed data through db.
type Seeder struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	hash  string
}

// NewSeeder returns a seeder. A zero seed picks a random one.
func NewSeeder(db *gorm.DB, seed int64) (*Seeder, error) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Seeder{db: db, faker: gofakeit.New(seed), hash: string(hash)}, nil
}

// ClearAll removes every board row and account.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.PostComment{}, &models.PostLike{}, &models.BandPost{}, &models.Profile{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return fmt.Errorf("clear %T: %w", m, err)
			}
		}
		return nil
	})
}

// Run generates opts.Members accounts with profiles and opts.Posts posts with
// likes and comments.
func (s *Seeder) Run(opts Options) error {
	profiles, err := s.SeedMembers(opts.Members)
	if err != nil {
		return err
	}
	log.Printf("✓ %d members created", len(profiles))

	posts, err := s.SeedBoard(profiles, opts.Posts)
	if err != nil {
		return err
	}
	log.Printf("✓ %d posts created", len(posts))
	return nil
}

func (s *Seeder) part() models.Part {
	return models.Parts[s.faker.Number(0, len(models.Parts)-1)]
}

func (s *Seeder) pick(from []string) string {
	return s.faker.RandomString(from)
}

// BuildProfile returns an unsaved profile for memberID with generated fields.
func (s *Seeder) BuildProfile(memberID string) models.Profile {
	gen := s.faker.Number(1, 30)
	p := models.Profile{
		ID:              memberID,
		Username:        s.faker.Username(),
		SchoolInfo:      s.pick(schools),
		FavoriteArtists: s.pick(artists),
		BandImage:       s.faker.Sentence(4),
		LineName:        s.faker.FirstName(),
		OtherSNS:        "@" + s.faker.Username(),
		Remarks:         s.faker.Sentence(6),
		Bio:             s.faker.Paragraph(1, 2, 8, " "),
		VocalRange:      s.pick(ranges),
		GaibuIyoku:      s.pick(answers),
		Generation:      &gen,
		BandCount:       s.pick(counts),
		KikakuCount:     s.pick(counts),
		CurrentRegular:  s.pick(themes),
		CurrentKikaku:   s.pick(themes),
		Part:            s.part(),
		Part2:           s.part(),
		Part3:           models.PartUnset,
		Part4:           models.PartUnset,
		UpdatedAt:       s.faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now()).UTC(),
	}
	p.Normalize()
	return p
}

// SeedMembers creates n accounts, each with a profile keyed by the account id.
func (s *Seeder) SeedMembers(n int) ([]models.Profile, error) {
	profiles := make([]models.Profile, 0, n)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < n; i++ {
			user := models.User{
				Email:    fmt.Sprintf("member%03d@example.com", i+1),
				Password: s.hash,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("create account %s: %w", user.Email, err)
			}
			p := s.BuildProfile(user.ID)
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("create profile %s: %w", p.ID, err)
			}
			profiles = append(profiles, p)
		}
		return nil
	})
	return profiles, err
}

// SeedBoard creates n posts by random authors, each liked and commented on
// by a few other members.
func (s *Seeder) SeedBoard(authors []models.Profile, n int) ([]models.BandPost, error) {
	if len(authors) == 0 || n == 0 {
		return nil, nil
	}
	posts := make([]models.BandPost, 0, n)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < n; i++ {
			author := authors[s.faker.Number(0, len(authors)-1)]
			post := models.BandPost{
				ProfileID:    author.ID,
				PostType:     models.PostTypes[s.faker.Number(0, len(models.PostTypes)-1)],
				Theme:        s.pick(themes),
				Members:      s.faker.Name(),
				TargetParts:  string(s.part()),
				StartPeriod:  s.pick(periods),
				ExtraRemarks: s.faker.Sentence(8),
				CreatedAt:    s.faker.DateRange(time.Now().AddDate(0, -1, 0), time.Now()).UTC(),
			}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			for _, other := range authors {
				if other.ID == author.ID || !s.faker.Bool() {
					continue
				}
				like := models.PostLike{PostID: post.ID, ProfileID: other.ID}
				if err := tx.Create(&like).Error; err != nil {
					return fmt.Errorf("create like: %w", err)
				}
				if s.faker.Number(0, 3) == 0 {
					c := models.PostComment{PostID: post.ID, ProfileID: other.ID, Content: s.pick(comments)}
					if err := tx.Create(&c).Error; err != nil {
						return fmt.Errorf("create comment: %w", err)
					}
				}
			}
			posts = append(posts, post)
		}
		return nil
	})
	return posts, err
}
