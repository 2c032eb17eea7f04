package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clubboard/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{"user-abc123xyz/1700000000000-me.png", "user-abc123xyz/1700000000000-me.png", false},
		{"", "", true},
		{"/etc/passwd", "", true},
		{"user/../other/a.png", "", true},
		{"user//a.png", "", true},
		{"user\\a.png", "", true},
		{"./a.png", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalStore_PutAndURL(t *testing.T) {
	root := filepath.Join(t.TempDir(), "avatars")
	store, err := NewLocalStore(root, "http://localhost:8375/media/avatars/")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "user-abc123xyz/1-me.png", []byte("first"), "image/png"))
	require.NoError(t, store.Put(ctx, "user-abc123xyz/1-me.png", []byte("second"), "image/png"))

	data, err := os.ReadFile(filepath.Join(root, "user-abc123xyz", "1-me.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "user-abc123xyz"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	assert.Equal(t, "http://localhost:8375/media/avatars/user-abc123xyz/1-me.png", store.PublicURL("user-abc123xyz/1-me.png"))
	assert.ErrorIs(t, store.Put(ctx, "../escape.png", []byte("x"), "image/png"), ErrInvalidKey)
}

type fakePutter struct {
	input *s3.PutObjectInput
	err   error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Store_Put(t *testing.T) {
	store, err := NewS3Store(context.Background(), S3Config{
		Bucket:          "club-media",
		Prefix:          AvatarBucket,
		Region:          "auto",
		Endpoint:        "http://127.0.0.1:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicBaseURL:   "https://cdn.example.com/",
	})
	require.NoError(t, err)
	fake := &fakePutter{}
	store.client = fake

	require.NoError(t, store.Put(context.Background(), "user-abc123xyz/1-me.jpg", []byte("jpeg"), "image/jpeg"))
	require.NotNil(t, fake.input)
	assert.Equal(t, "club-media", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "avatars/user-abc123xyz/1-me.jpg", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(4), aws.ToInt64(fake.input.ContentLength))

	assert.Equal(t, "https://cdn.example.com/avatars/user-abc123xyz/1-me.jpg", store.PublicURL("user-abc123xyz/1-me.jpg"))

	fake.err = errors.New("denied")
	assert.Error(t, store.Put(context.Background(), "user-abc123xyz/2-me.jpg", []byte("x"), "image/jpeg"))
}

func TestNew_SelectsDriver(t *testing.T) {
	dir := t.TempDir()
	store, err := New(context.Background(), &config.Config{
		StorageDriver:   "local",
		StorageLocalDir: dir,
		PublicBaseURL:   "http://club.example",
	})
	require.NoError(t, err)
	local, ok := store.(*LocalStore)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, AvatarBucket), local.Root())
	assert.Equal(t, "http://club.example/media/avatars/a/b.png", store.PublicURL("a/b.png"))

	_, err = New(context.Background(), &config.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}
