// Package view holds the client-side state of the club board: the signed-in
// member, the profile list with its edit form and filters, and the recruiting
// board. Views talk to the backend only through the gateway interfaces below
// and re-fetch whole collections after every mutation.
package view

import (
	"context"
	"errors"
	"time"

	"clubboard/internal/models"
)

var (
	// ErrDuplicate is returned by a gateway when an insert hits an existing key.
	ErrDuplicate = errors.New("duplicate key")
	// ErrCancelled is returned when the member declines a confirmation.
	ErrCancelled = errors.New("cancelled")
	// ErrUploading is returned while an avatar upload is still in flight.
	ErrUploading = errors.New("アップロード中です")
)

// Session is the identity the auth collaborator reports.
type Session struct {
	MemberID string
	Email    string
}

// AuthGateway signs members in and out.
type AuthGateway interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	// CurrentSession reports the active session, if any.
	CurrentSession(ctx context.Context) (Session, bool, error)
}

// ProfileGateway is the profiles collection.
type ProfileGateway interface {
	// ListProfiles returns every profile, most recently updated first.
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) error
	SetProfileDeletedAt(ctx context.Context, id string, at *time.Time) error
	DeleteProfile(ctx context.Context, id string) error
}

// ObjectGateway is the avatars bucket.
type ObjectGateway interface {
	UploadObject(ctx context.Context, path string, body []byte) error
	PublicURL(ctx context.Context, path string) (string, error)
}

// BoardGateway is the posts collection with its likes and comments.
type BoardGateway interface {
	// ListPosts returns every post newest first with author, likes and comments.
	ListPosts(ctx context.Context) ([]models.BandPost, error)
	CreatePost(ctx context.Context, p *models.BandPost) error
	UpdatePost(ctx context.Context, id uint, p *models.BandPost) error
	DeletePost(ctx context.Context, id uint) error
	InsertLike(ctx context.Context, postID uint, profileID string) error
	DeleteLike(ctx context.Context, postID uint, profileID string) error
	InsertComment(ctx context.Context, postID uint, profileID, content string) error
}

// ChangeFeed delivers change events for the named collections until ctx ends.
type ChangeFeed interface {
	Subscribe(ctx context.Context, collections ...string) (<-chan models.ChangeEvent, error)
}

// Confirmer asks the member to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// AlwaysConfirm accepts every prompt.
var AlwaysConfirm = ConfirmFunc(func(string) bool { return true })
