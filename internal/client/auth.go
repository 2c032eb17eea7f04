package client

import (
	"context"
	"net/http"

	"clubboard/internal/view"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token    string `json:"token"`
	MemberID string `json:"member_id"`
	User     *struct {
		Email string `json:"email"`
	} `json:"user"`
}

func (r sessionResponse) session() view.Session {
	s := view.Session{MemberID: r.MemberID}
	if r.User != nil {
		s.Email = r.User.Email
	}
	return s
}

func (c *Client) SignUp(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/signup", nil, credentials{email, password}, nil)
}

// SignIn stores the issued token for later calls.
func (c *Client) SignIn(ctx context.Context, email, password string) (view.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{email, password}, &resp); err != nil {
		return view.Session{}, err
	}
	if err := c.setToken(resp.Token); err != nil {
		return view.Session{}, err
	}
	return resp.session(), nil
}

// SignOut revokes the held token. The token is dropped locally even when
// the server has already forgotten it.
func (c *Client) SignOut(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}
	err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	if IsStatus(err, http.StatusUnauthorized) {
		err = nil
	}
	if clearErr := c.setToken(""); err == nil {
		err = clearErr
	}
	return err
}

// CurrentSession asks the server who the held credentials belong to. An
// expired or revoked token is dropped and reports no session.
func (c *Client) CurrentSession(ctx context.Context) (view.Session, bool, error) {
	c.mu.RLock()
	anonymous := c.token == "" && c.memberID == ""
	c.mu.RUnlock()
	if anonymous {
		return view.Session{}, false, nil
	}

	var resp sessionResponse
	err := c.do(ctx, http.MethodGet, "/auth/session", nil, nil, &resp)
	if IsStatus(err, http.StatusUnauthorized) {
		return view.Session{}, false, c.setToken("")
	}
	if err != nil {
		return view.Session{}, false, err
	}
	return resp.session(), true, nil
}
