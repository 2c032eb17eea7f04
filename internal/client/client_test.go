package client

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"clubboard/internal/config"
	"clubboard/internal/models"
	"clubboard/internal/server"
	"clubboard/internal/storage"
	"clubboard/internal/testutil"
	"clubboard/internal/view"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memberA = "user-aaaaaaaaa"

// startServer runs the real API on a loopback port and returns its URL.
func startServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := "http://" + ln.Addr().String()

	cfg := &config.Config{
		JWTSecret:          "client-test-secret-that-is-32-characters",
		Env:                "test",
		AllowLocalIdentity: true,
		AvatarMaxUploadMB:  1,
		AvatarMaxEdgePx:    64,
		PublicBaseURL:      baseURL,
	}
	store, err := storage.NewLocalStore(t.TempDir(), baseURL+storage.LocalMediaPrefix)
	require.NoError(t, err)
	srv, err := server.NewServerWithDeps(cfg, testutil.NewSQLiteDB(t), nil, store)
	require.NoError(t, err)

	app := srv.NewApp()
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return baseURL
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

func TestNew_RejectsBadURL(t *testing.T) {
	_, err := New("ftp://example.com")
	assert.Error(t, err)
	_, err = New("://nope")
	assert.Error(t, err)
}

func TestAPIError_DecodesServerBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profiles", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"already there","code":"CONFLICT"}`))
	}))
	defer ts.Close()

	c, err := New(ts.URL)
	require.NoError(t, err)
	_, err = c.ListProfiles(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, models.CodeConflict, apiErr.Code)
	assert.Equal(t, "already there", apiErr.Message)
	assert.ErrorIs(t, err, view.ErrDuplicate)
}

func TestClient_ProfileViewsEndToEnd(t *testing.T) {
	ctx := context.Background()
	c, err := New(startServer(t), WithLocalIdentity(memberA))
	require.NoError(t, err)

	store := view.NewProfileStore(c, c, view.AlwaysConfirm, nil)
	store.SetMemberID(memberA)
	store.UpdateForm(func(f *view.ProfileForm) {
		f.Username = "taro"
		f.Generation = "3"
		f.Part = models.PartLead
	})
	require.NoError(t, store.Save(ctx))
	require.Len(t, store.Profiles(), 1)

	require.NoError(t, store.UploadAvatar(ctx, "face.png", tinyPNG(t)))
	avatar := store.Form().AvatarURL
	assert.Contains(t, avatar, "/media/avatars/"+memberA+"/")
	assert.Contains(t, avatar, "?t=")

	resp, err := http.Get(avatar)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, store.Save(ctx))
	assert.Equal(t, avatar, store.Profiles()[0].AvatarURL)

	require.NoError(t, store.SoftDelete(ctx, memberA))
	assert.True(t, store.MyDeleted())
	assert.Empty(t, store.Visible())

	require.NoError(t, store.Restore(ctx))
	assert.False(t, store.MyDeleted())
	assert.Len(t, store.Visible(), 1)
}

func TestClient_BoardViewsEndToEnd(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)
	c, err := New(base, WithLocalIdentity(memberA))
	require.NoError(t, err)
	require.NoError(t, c.UpsertProfile(ctx, &models.Profile{ID: memberA, Username: "taro"}))

	board := view.NewBoardStore(c, view.AlwaysConfirm, nil)
	board.SetMemberID(memberA)
	board.UpdateForm(func(f *view.PostForm) {
		f.Theme = "合わせ練習"
		f.TargetParts = "Bass"
	})
	require.NoError(t, board.Save(ctx))
	post := board.Posts()[0]
	assert.Equal(t, "taro", post.Author.Username)

	require.NoError(t, board.StartEdit(post))
	board.UpdateForm(func(f *view.PostForm) { f.TargetParts = "Bass, Perc" })
	require.NoError(t, board.Save(ctx))
	require.Len(t, board.Posts(), 1)
	assert.Equal(t, "Bass, Perc", board.Posts()[0].TargetParts)

	require.NoError(t, board.ToggleLike(ctx, post.ID, false))
	require.NoError(t, board.ToggleLike(ctx, post.ID, false))
	liked := board.Posts()[0]
	assert.Len(t, liked.Likes, 1)
	assert.True(t, board.IsLiked(&liked))
	require.NoError(t, board.ToggleLike(ctx, post.ID, true))
	assert.Empty(t, board.Posts()[0].Likes)

	board.SetCommentDraft(post.ID, "よろしく")
	require.NoError(t, board.Comment(ctx, post.ID))
	commented := board.Posts()[0]
	require.Len(t, commented.Comments, 1)
	assert.Equal(t, "よろしく", board.VisibleComments(&commented)[0].Content)

	require.NoError(t, board.Delete(ctx, post.ID))
	assert.Empty(t, board.Posts())
}

func TestClient_AuthFlowPersistsToken(t *testing.T) {
	ctx := context.Background()
	base := startServer(t)
	tokens := view.NewFileStore(filepath.Join(t.TempDir(), "state.json"))

	c, err := New(base, WithTokenStore(tokens))
	require.NoError(t, err)
	gate := view.NewAuthGate(c)

	ok, err := gate.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	gate.SetCredentials("taro@example.com", "secret1")
	require.NoError(t, gate.SignUp(ctx))
	gate.SetCredentials("taro@example.com", "secret1")
	require.NoError(t, gate.Login(ctx))
	memberID := gate.MemberID()
	require.NotEmpty(t, memberID)

	// a fresh client picks the token up from the store
	again, err := New(base, WithTokenStore(tokens))
	require.NoError(t, err)
	restored := view.NewAuthGate(again)
	ok, err = restored.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, memberID, restored.MemberID())
	assert.Equal(t, "taro@example.com", restored.Email())

	require.NoError(t, restored.Logout(ctx))
	assert.Empty(t, again.Token())
	_, ok, err = tokens.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_SubscribeDeliversChanges(t *testing.T) {
	base := startServer(t)
	c, err := New(base, WithLocalIdentity(memberA))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := c.Subscribe(ctx, models.CollectionProfiles)
	require.NoError(t, err)

	// the hub registers the socket after the handshake, so keep writing
	// until an event comes through
	require.Eventually(t, func() bool {
		_ = c.UpsertProfile(context.Background(), &models.Profile{ID: memberA, Username: "taro"})
		select {
		case ev := <-events:
			return ev.Collection == models.CollectionProfiles && ev.ID == memberA
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-events:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestClient_SubscribeRequiresIdentity(t *testing.T) {
	c, err := New(startServer(t))
	require.NoError(t, err)

	_, err = c.Subscribe(context.Background())
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestClient_SubscribeReleasesConnWhenServerDrops(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "bye"))
		_ = conn.Close()
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithLocalIdentity(memberA))
	require.NoError(t, err)

	baseline := runtime.NumGoroutine()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := c.Subscribe(ctx, models.CollectionProfiles)
	require.NoError(t, err)

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not close after the server dropped it")
	}
	require.NoError(t, ctx.Err(), "the caller's context is still live")

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, 2*time.Second, 10*time.Millisecond)
}
