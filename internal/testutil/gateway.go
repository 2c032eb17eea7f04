package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"clubboard/internal/models"
	"clubboard/internal/view"
)

// MemoryGateway is an in-memory backend for the views. It records every
// call by name and fails a call when Fail holds an error for that name.
type MemoryGateway struct {
	mu       sync.Mutex
	clock    time.Time
	calls    []string
	profiles map[string]models.Profile
	posts    map[uint]*models.BandPost
	nextPost uint
	nextCmt  uint
	objects  map[string][]byte
	accounts map[string]string
	session  *view.Session
	feeds    []chan models.ChangeEvent

	Fail map[string]error
}

// NewMemoryGateway returns an empty backend.
func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		clock:    time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC),
		profiles: make(map[string]models.Profile),
		posts:    make(map[uint]*models.BandPost),
		objects:  make(map[string][]byte),
		accounts: make(map[string]string),
		Fail:     make(map[string]error),
	}
}

func (g *MemoryGateway) record(name string) error {
	g.calls = append(g.calls, name)
	return g.Fail[name]
}

// tick advances the clock so every write has a distinct timestamp.
func (g *MemoryGateway) tick() time.Time {
	g.clock = g.clock.Add(time.Second)
	return g.clock
}

// Calls returns the names of the calls made so far.
func (g *MemoryGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

// Writes counts the calls other than reads.
func (g *MemoryGateway) Writes() int {
	n := 0
	for _, c := range g.Calls() {
		switch c {
		case "ListProfiles", "ListPosts", "PublicURL", "CurrentSession":
		default:
			n++
		}
	}
	return n
}

// Profile returns the stored profile id.
func (g *MemoryGateway) Profile(id string) (models.Profile, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p, ok := g.profiles[id]
	return p, ok
}

// PutProfile stores p without recording a call.
func (g *MemoryGateway) PutProfile(p models.Profile) {
	g.mu.Lock()
	defer g.mu.Unlock()
	p.Normalize()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = g.tick()
	}
	g.profiles[p.ID] = p
}

// Object returns an uploaded object.
func (g *MemoryGateway) Object(path string) ([]byte, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, ok := g.objects[path]
	return b, ok
}

// PostCount is the number of stored posts.
func (g *MemoryGateway) PostCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.posts)
}

// Emit sends ev to every open subscription.
func (g *MemoryGateway) Emit(ev models.ChangeEvent) {
	g.mu.Lock()
	feeds := append([]chan models.ChangeEvent(nil), g.feeds...)
	g.mu.Unlock()
	for _, ch := range feeds {
		ch <- ev
	}
}

func (g *MemoryGateway) ListProfiles(_ context.Context) ([]models.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("ListProfiles"); err != nil {
		return nil, err
	}
	out := make([]models.Profile, 0, len(g.profiles))
	for _, p := range g.profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (g *MemoryGateway) UpsertProfile(_ context.Context, p *models.Profile) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("UpsertProfile"); err != nil {
		return err
	}
	stored := *p
	stored.UpdatedAt = g.tick()
	g.profiles[p.ID] = stored
	return nil
}

func (g *MemoryGateway) SetProfileDeletedAt(_ context.Context, id string, at *time.Time) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("SetProfileDeletedAt"); err != nil {
		return err
	}
	p, ok := g.profiles[id]
	if !ok {
		return models.NewNotFoundError("Profile", id)
	}
	p.DeletedAt = at
	g.profiles[id] = p
	return nil
}

func (g *MemoryGateway) DeleteProfile(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("DeleteProfile"); err != nil {
		return err
	}
	delete(g.profiles, id)
	for pid, post := range g.posts {
		if post.ProfileID == id {
			delete(g.posts, pid)
		}
	}
	return nil
}

func (g *MemoryGateway) UploadObject(_ context.Context, path string, body []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("UploadObject"); err != nil {
		return err
	}
	g.objects[path] = append([]byte(nil), body...)
	return nil
}

func (g *MemoryGateway) PublicURL(_ context.Context, path string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("PublicURL"); err != nil {
		return "", err
	}
	return "https://cdn.example.test/avatars/" + path, nil
}

func (g *MemoryGateway) author(id string) *models.Author {
	p := g.profiles[id]
	return &models.Author{ID: id, Username: p.Username, AvatarURL: p.AvatarURL}
}

func (g *MemoryGateway) ListPosts(_ context.Context) ([]models.BandPost, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("ListPosts"); err != nil {
		return nil, err
	}
	out := make([]models.BandPost, 0, len(g.posts))
	for _, p := range g.posts {
		cp := *p
		cp.Author = g.author(p.ProfileID)
		cp.Likes = append([]models.PostLike(nil), p.Likes...)
		cp.Comments = make([]models.PostComment, len(p.Comments))
		for i, c := range p.Comments {
			c.Author = g.author(c.ProfileID)
			cp.Comments[i] = c
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (g *MemoryGateway) CreatePost(_ context.Context, p *models.BandPost) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CreatePost"); err != nil {
		return err
	}
	g.nextPost++
	stored := *p
	stored.ID = g.nextPost
	stored.CreatedAt = g.tick()
	stored.Likes, stored.Comments = nil, nil
	g.posts[stored.ID] = &stored
	p.ID = stored.ID
	return nil
}

func (g *MemoryGateway) UpdatePost(_ context.Context, id uint, p *models.BandPost) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("UpdatePost"); err != nil {
		return err
	}
	stored, ok := g.posts[id]
	if !ok {
		return models.NewNotFoundError("Post", id)
	}
	stored.PostType = p.PostType
	stored.Theme = p.Theme
	stored.Members = p.Members
	stored.TargetParts = p.TargetParts
	stored.StartPeriod = p.StartPeriod
	stored.ExtraRemarks = p.ExtraRemarks
	return nil
}

func (g *MemoryGateway) DeletePost(_ context.Context, id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("DeletePost"); err != nil {
		return err
	}
	delete(g.posts, id)
	return nil
}

// InsertLike reports view.ErrDuplicate when the like already exists.
func (g *MemoryGateway) InsertLike(_ context.Context, postID uint, profileID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("InsertLike"); err != nil {
		return err
	}
	post, ok := g.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	if post.LikedBy(profileID) {
		return view.ErrDuplicate
	}
	post.Likes = append(post.Likes, models.PostLike{PostID: postID, ProfileID: profileID, CreatedAt: g.tick()})
	return nil
}

func (g *MemoryGateway) DeleteLike(_ context.Context, postID uint, profileID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("DeleteLike"); err != nil {
		return err
	}
	post, ok := g.posts[postID]
	if !ok {
		return nil
	}
	kept := post.Likes[:0]
	for _, l := range post.Likes {
		if l.ProfileID != profileID {
			kept = append(kept, l)
		}
	}
	post.Likes = kept
	return nil
}

func (g *MemoryGateway) InsertComment(_ context.Context, postID uint, profileID, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("InsertComment"); err != nil {
		return err
	}
	post, ok := g.posts[postID]
	if !ok {
		return models.NewNotFoundError("Post", postID)
	}
	g.nextCmt++
	post.Comments = append(post.Comments, models.PostComment{
		ID:        g.nextCmt,
		PostID:    postID,
		ProfileID: profileID,
		Content:   content,
		CreatedAt: g.tick(),
	})
	return nil
}

// SignUp registers email. The account's member id is "member-" + email.
func (g *MemoryGateway) SignUp(_ context.Context, email, password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("SignUp"); err != nil {
		return err
	}
	if _, ok := g.accounts[email]; ok {
		return models.NewConflictError("User already exists")
	}
	g.accounts[email] = password
	return nil
}

func (g *MemoryGateway) SignIn(_ context.Context, email, password string) (view.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("SignIn"); err != nil {
		return view.Session{}, err
	}
	if pw, ok := g.accounts[email]; !ok || pw != password {
		return view.Session{}, models.NewUnauthorizedError("Invalid login credentials")
	}
	sess := view.Session{MemberID: "member-" + email, Email: email}
	g.session = &sess
	return sess, nil
}

func (g *MemoryGateway) SignOut(_ context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = nil
	return g.record("SignOut")
}

func (g *MemoryGateway) CurrentSession(_ context.Context) (view.Session, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("CurrentSession"); err != nil {
		return view.Session{}, false, err
	}
	if g.session == nil {
		return view.Session{}, false, nil
	}
	return *g.session, true, nil
}

// Subscribe returns a feed closed when ctx ends.
func (g *MemoryGateway) Subscribe(ctx context.Context, _ ...string) (<-chan models.ChangeEvent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.record("Subscribe"); err != nil {
		return nil, err
	}
	in := make(chan models.ChangeEvent, 16)
	out := make(chan models.ChangeEvent)
	g.feeds = append(g.feeds, in)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-in:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
