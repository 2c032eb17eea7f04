package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clubboard/internal/models"
)

func profilePath(id string) string {
	return "/profiles/" + url.PathEscape(id)
}

func (c *Client) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpsertProfile(ctx context.Context, p *models.Profile) error {
	return c.do(ctx, http.MethodPut, profilePath(p.ID), nil, p, p)
}

// SetProfileDeletedAt soft-deletes id, or restores it when at is nil. The
// server stamps its own time.
func (c *Client) SetProfileDeletedAt(ctx context.Context, id string, at *time.Time) error {
	body := map[string]*time.Time{"deleted_at": at}
	return c.do(ctx, http.MethodPatch, profilePath(id), nil, body, nil)
}

func (c *Client) DeleteProfile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, profilePath(id), nil, nil, nil)
}

func avatarPath(key string) string {
	parts := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/storage/avatars/" + strings.Join(parts, "/")
}

func (c *Client) UploadObject(ctx context.Context, key string, body []byte) error {
	return c.do(ctx, http.MethodPut, avatarPath(key), nil, body, nil)
}

func (c *Client) PublicURL(ctx context.Context, key string) (string, error) {
	var out struct {
		PublicURL string `json:"public_url"`
	}
	if err := c.do(ctx, http.MethodGet, "/storage/avatars/public-url", url.Values{"path": {key}}, nil, &out); err != nil {
		return "", err
	}
	return out.PublicURL, nil
}
