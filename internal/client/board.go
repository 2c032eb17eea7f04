package client

import (
	"context"
	"fmt"
	"net/http"

	"clubboard/internal/models"
	"clubboard/internal/view"
)

type postBody struct {
	PostType     models.PostType `json:"post_type"`
	Theme        string          `json:"theme"`
	Members      string          `json:"members"`
	TargetParts  string          `json:"target_parts"`
	StartPeriod  string          `json:"start_period"`
	ExtraRemarks string          `json:"extra_remarks"`
}

func newPostBody(p *models.BandPost) postBody {
	return postBody{
		PostType:     p.PostType,
		Theme:        p.Theme,
		Members:      p.Members,
		TargetParts:  p.TargetParts,
		StartPeriod:  p.StartPeriod,
		ExtraRemarks: p.ExtraRemarks,
	}
}

func postPath(id uint, rest string) string {
	return fmt.Sprintf("/posts/%d%s", id, rest)
}

func (c *Client) ListPosts(ctx context.Context) ([]models.BandPost, error) {
	var out []models.BandPost
	if err := c.do(ctx, http.MethodGet, "/posts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePost sets p.ID to the id the server assigned.
func (c *Client) CreatePost(ctx context.Context, p *models.BandPost) error {
	var created models.BandPost
	if err := c.do(ctx, http.MethodPost, "/posts", nil, newPostBody(p), &created); err != nil {
		return err
	}
	p.ID = created.ID
	return nil
}

func (c *Client) UpdatePost(ctx context.Context, id uint, p *models.BandPost) error {
	return c.do(ctx, http.MethodPut, postPath(id, ""), nil, newPostBody(p), nil)
}

func (c *Client) DeletePost(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, postPath(id, ""), nil, nil, nil)
}

// InsertLike likes postID as the signed-in member; the server takes the
// member from the credentials, not from profileID. An existing like is
// reported as view.ErrDuplicate.
func (c *Client) InsertLike(ctx context.Context, postID uint, _ string) error {
	var out struct {
		Added bool `json:"added"`
	}
	if err := c.do(ctx, http.MethodPut, postPath(postID, "/likes/me"), nil, nil, &out); err != nil {
		return err
	}
	if !out.Added {
		return view.ErrDuplicate
	}
	return nil
}

func (c *Client) DeleteLike(ctx context.Context, postID uint, _ string) error {
	return c.do(ctx, http.MethodDelete, postPath(postID, "/likes/me"), nil, nil, nil)
}

func (c *Client) InsertComment(ctx context.Context, postID uint, _ string, content string) error {
	body := map[string]string{"content": content}
	return c.do(ctx, http.MethodPost, postPath(postID, "/comments"), nil, body, nil)
}
