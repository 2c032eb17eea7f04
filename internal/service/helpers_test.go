package service

import (
	"context"
	"sync"
	"testing"

	"clubboard/internal/models"
	"clubboard/internal/repository"
	"clubboard/internal/testutil"
)

// recordingPublisher captures published change events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev models.ChangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) collections() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Collection+":"+string(ev.Type))
	}
	return out
}

type fixture struct {
	profiles *ProfileService
	board    *BoardService
	events   *recordingPublisher
	repos    struct {
		profiles repository.ProfileRepository
		posts    repository.PostRepository
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	f := &fixture{events: &recordingPublisher{}}
	f.repos.profiles = repository.NewProfileRepository(db)
	f.repos.posts = repository.NewPostRepository(db)
	f.profiles = NewProfileService(f.repos.profiles, f.events)
	f.board = NewBoardService(f.repos.posts, repository.NewCommentRepository(db), f.repos.profiles, f.events)
	return f
}
