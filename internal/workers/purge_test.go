package workers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"clubboard/internal/models"
	"clubboard/internal/repository"
	"clubboard/internal/service"
	"clubboard/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPurger struct {
	calls     atomic.Int32
	retention time.Duration
	ids       []string
	err       error
}

func (s *stubPurger) PurgeDeleted(_ context.Context, retention time.Duration) ([]string, error) {
	s.calls.Add(1)
	s.retention = retention
	return s.ids, s.err
}

func TestPurgeJob_Run(t *testing.T) {
	p := &stubPurger{ids: []string{"a", "b"}}
	n, err := NewPurgeJob(p, 48*time.Hour).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 48*time.Hour, p.retention)

	p.err = errors.New("db down")
	_, err = NewPurgeJob(p, time.Hour).Run(context.Background())
	assert.Error(t, err)
}

func TestPurgeJob_RemovesExpiredProfiles(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := repository.NewProfileRepository(db)
	profiles := service.NewProfileService(repo, nil)

	old := time.Now().UTC().Add(-72 * time.Hour)
	recent := time.Now().UTC().Add(-time.Hour)
	for _, p := range []models.Profile{
		{ID: "user-expired01", Username: "old", DeletedAt: &old},
		{ID: "user-recent001", Username: "recent", DeletedAt: &recent},
		{ID: "user-active001", Username: "active"},
	} {
		p := p
		p.Normalize()
		_, err := repo.Upsert(ctx, &p)
		require.NoError(t, err)
	}

	n, err := NewPurgeJob(profiles, 24*time.Hour).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	left, err := repo.List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range left {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"user-recent001", "user-active001"}, ids)
}

func TestStartPurgeScheduler(t *testing.T) {
	sched, err := StartPurgeScheduler(context.Background(), &stubPurger{}, 0, time.Minute)
	require.NoError(t, err)
	assert.Nil(t, sched, "zero retention disables the job")

	p := &stubPurger{}
	sched, err = StartPurgeScheduler(context.Background(), p, time.Hour, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, sched)
	t.Cleanup(func() { _ = sched.Shutdown() })

	assert.Eventually(t, func() bool { return p.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}
