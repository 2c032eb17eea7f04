package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"clubboard/internal/config"
	"clubboard/internal/models"
	"clubboard/internal/observability"
	"clubboard/internal/storage"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultAvatarMaxUploadMB = 5
	DefaultAvatarMaxEdgePx   = 1024
	JPEGQuality              = 85

	// MaxAvatarPixels caps the decoded size of an image we are asked to resize.
	MaxAvatarPixels = 40_000_000
)

var allowedAvatarTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// AvatarService stores profile images in the avatars bucket.
type AvatarService struct {
	store          storage.ObjectStore
	maxUploadBytes int
	maxEdge        int
}

func NewAvatarService(store storage.ObjectStore, cfg *config.Config) *AvatarService {
	maxMB := DefaultAvatarMaxUploadMB
	maxEdge := DefaultAvatarMaxEdgePx
	if cfg != nil {
		if cfg.AvatarMaxUploadMB > 0 {
			maxMB = cfg.AvatarMaxUploadMB
		}
		if cfg.AvatarMaxEdgePx > 0 {
			maxEdge = cfg.AvatarMaxEdgePx
		}
	}
	return &AvatarService{store: store, maxUploadBytes: maxMB << 20, maxEdge: maxEdge}
}

// MaxUploadBytes is the largest accepted upload.
func (s *AvatarService) MaxUploadBytes() int { return s.maxUploadBytes }

// Upload writes body under key, which must start with "<callerID>/". JPEG
// and PNG images larger than the configured edge are scaled down; GIF and
// WebP are stored as sent.
func (s *AvatarService) Upload(ctx context.Context, callerID, key string, body []byte) (string, error) {
	if callerID == "" {
		return "", models.NewUnauthorizedError("Sign in to upload an avatar")
	}
	clean, err := storage.CleanKey(key)
	if err != nil {
		return "", models.NewValidationError(err.Error())
	}
	if !strings.HasPrefix(clean, callerID+"/") {
		return "", models.NewForbiddenError("Avatars must be stored under your own member id")
	}
	if len(body) == 0 {
		return "", models.NewValidationError("Empty upload")
	}
	if len(body) > s.maxUploadBytes {
		return "", models.NewValidationError(fmt.Sprintf("File too large (max %d MB)", s.maxUploadBytes>>20))
	}

	contentType := http.DetectContentType(body)
	if _, ok := allowedAvatarTypes[contentType]; !ok {
		return "", models.NewValidationError("Unsupported image type " + contentType)
	}
	if contentType == "image/jpeg" || contentType == "image/png" {
		body, err = s.shrink(body, contentType)
		if err != nil {
			return "", err
		}
	}

	if err := s.store.Put(ctx, clean, body, contentType); err != nil {
		return "", models.NewInternalError(err)
	}
	observability.AvatarUploadBytes.Observe(float64(len(body)))
	return clean, nil
}

// PublicURL resolves the URL a stored avatar is served from.
func (s *AvatarService) PublicURL(key string) (string, error) {
	clean, err := storage.CleanKey(key)
	if err != nil {
		return "", models.NewValidationError(err.Error())
	}
	return s.store.PublicURL(clean), nil
}

func (s *AvatarService) shrink(body []byte, contentType string) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return nil, models.NewValidationError("Unreadable image")
	}
	if cfg.Width <= s.maxEdge && cfg.Height <= s.maxEdge {
		return body, nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxAvatarPixels {
		return nil, models.NewValidationError(fmt.Sprintf("Image too large (%dx%d)", cfg.Width, cfg.Height))
	}

	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, models.NewValidationError("Unreadable image")
	}
	dst := resizeToFit(src, s.maxEdge)

	var buf bytes.Buffer
	switch contentType {
	case "image/png":
		err = png.Encode(&buf, dst)
	default:
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality})
	}
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("encode avatar: %w", err))
	}
	return buf.Bytes(), nil
}

func resizeToFit(src image.Image, maxEdge int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxEdge && h <= maxEdge) {
		return src
	}

	scale := float64(maxEdge) / float64(w)
	if hs := float64(maxEdge) / float64(h); hs < scale {
		scale = hs
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}
