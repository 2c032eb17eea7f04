package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"clubboard/internal/models"
)

// Subscribe opens the change feed. The channel closes when ctx ends or the
// server drops the connection. A notice that events were dropped arrives as
// an event with an empty collection; receivers should re-fetch everything.
func (c *Client) Subscribe(ctx context.Context, collections ...string) (<-chan models.ChangeEvent, error) {
	var query url.Values
	if len(collections) > 0 {
		query = url.Values{"collection": {strings.Join(collections, ",")}}
	}
	u, err := url.Parse(c.endpoint("/ws/changes", query))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}

	header := http.Header{}
	c.authorize(header)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	if err != nil {
		if resp != nil {
			return nil, decodeError(resp)
		}
		return nil, err
	}

	out := make(chan models.ChangeEvent, 16)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		case <-done:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.WarnContext(ctx, "Change feed closed", slog.String("error", err.Error()))
				}
				return
			}
			var ev models.ChangeEvent
			if err := json.Unmarshal(raw, &ev); err != nil {
				slog.WarnContext(ctx, "Undecodable change event", slog.String("error", err.Error()))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
