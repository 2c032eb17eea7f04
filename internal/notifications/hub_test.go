package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"clubboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_BroadcastFiltersByCollection(t *testing.T) {
	hub := NewHub()
	profiles, err := hub.Register("user-aaaaaaaaa", nil, []string{models.CollectionProfiles})
	require.NoError(t, err)
	board, err := hub.Register("user-bbbbbbbbb", nil, []string{models.CollectionPosts, models.CollectionLikes})
	require.NoError(t, err)

	hub.Broadcast(models.ChangeEvent{Collection: models.CollectionLikes, Type: models.ChangeInsert, ID: "7"})

	select {
	case msg := <-board.Send:
		var ev models.ChangeEvent
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, models.CollectionLikes, ev.Collection)
		assert.Equal(t, models.ChangeInsert, ev.Type)
	case <-time.After(testEventuallyTimeout):
		t.Fatal("board subscriber did not receive event")
	}
	assert.Empty(t, profiles.Send)

	_ = hub.Shutdown(context.Background())
}

func TestHub_MemberConnectionLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerMember; i++ {
		_, err := hub.Register("user-ccccccccc", nil, models.Collections)
		require.NoError(t, err)
	}
	_, err := hub.Register("user-ccccccccc", nil, models.Collections)
	assert.ErrorIs(t, err, ErrMemberConnLimit)
	assert.Equal(t, maxConnsPerMember, hub.Count())
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("user-ddddddddd", nil, models.Collections)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)
	assert.Equal(t, 0, hub.Count())

	_, open := <-c.Send
	assert.False(t, open)
}

func TestHub_ShutdownRejectsNewClients(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("user-eeeeeeeee", nil, models.Collections)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	_, open := <-c.Send
	assert.False(t, open)

	_, err = hub.Register("user-eeeeeeeee", nil, models.Collections)
	assert.ErrorIs(t, err, ErrServerConnLimit)

	// A late unregister from the read pump must not panic.
	hub.UnregisterClient(c)
}

func TestClient_TrySendDropsWhenFull(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("user-fffffffff", nil, models.Collections)
	require.NoError(t, err)

	for i := 0; i < sendBuffer+5; i++ {
		c.TrySend([]byte(`{}`))
	}
	assert.Len(t, c.Send, sendBuffer)

	hub.UnregisterClient(c)
	assert.NotPanics(t, func() { c.TrySend([]byte(`{}`)) })
}
