package service

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"clubboard/internal/config"
	"clubboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryStore) Put(_ context.Context, key string, body []byte, contentType string) error {
	m.objects[key] = body
	m.types[key] = contentType
	return nil
}

func (m *memoryStore) PublicURL(key string) string {
	return "https://cdn.example.com/avatars/" + key
}

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAvatarService_UploadShrinksLargeImages(t *testing.T) {
	store := newMemoryStore()
	svc := NewAvatarService(store, &config.Config{AvatarMaxUploadMB: 2, AvatarMaxEdgePx: 64})

	key, err := svc.Upload(context.Background(), "user-aaaaaaaaa", "user-aaaaaaaaa/1700000000000-me.png", pngOf(t, 256, 128))
	require.NoError(t, err)
	assert.Equal(t, "image/png", store.types[key])

	cfg, _, err := image.DecodeConfig(bytes.NewReader(store.objects[key]))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 32, cfg.Height)

	url, err := svc.PublicURL(key)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/user-aaaaaaaaa/1700000000000-me.png", url)
}

func TestAvatarService_UploadKeepsSmallImages(t *testing.T) {
	store := newMemoryStore()
	svc := NewAvatarService(store, nil)
	body := pngOf(t, 16, 16)

	key, err := svc.Upload(context.Background(), "user-aaaaaaaaa", "user-aaaaaaaaa/a.png", body)
	require.NoError(t, err)
	assert.Equal(t, body, store.objects[key])
}

func TestAvatarService_UploadRejections(t *testing.T) {
	svc := NewAvatarService(newMemoryStore(), &config.Config{AvatarMaxUploadMB: 1, AvatarMaxEdgePx: 64})
	ctx := context.Background()
	img := pngOf(t, 8, 8)

	tests := []struct {
		name     string
		callerID string
		key      string
		body     []byte
		status   int
	}{
		{"anonymous", "", "user-aaaaaaaaa/a.png", img, 401},
		{"foreign prefix", "user-aaaaaaaaa", "user-bbbbbbbbb/a.png", img, 403},
		{"escaping key", "user-aaaaaaaaa", "user-aaaaaaaaa/../b.png", img, 400},
		{"not an image", "user-aaaaaaaaa", "user-aaaaaaaaa/a.png", []byte("plain text body"), 400},
		{"empty", "user-aaaaaaaaa", "user-aaaaaaaaa/a.png", nil, 400},
		{"too large", "user-aaaaaaaaa", "user-aaaaaaaaa/a.png", make([]byte, 2<<20), 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(ctx, tt.callerID, tt.key, tt.body)
			require.Error(t, err)
			assert.Equal(t, tt.status, models.StatusFor(err))
		})
	}
}

// pngHeader is a PNG signature and IHDR chunk declaring w x h with no pixel data.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestAvatarService_UploadRejectsOversizedDimensions(t *testing.T) {
	store := newMemoryStore()
	svc := NewAvatarService(store, &config.Config{AvatarMaxUploadMB: 1, AvatarMaxEdgePx: 64})

	body := pngHeader(30000, 30000)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, 30000, cfg.Width)

	_, err = svc.Upload(context.Background(), "user-aaaaaaaaa", "user-aaaaaaaaa/1700000000000-bomb.png", body)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "30000x30000")
	assert.Empty(t, store.objects)
}
