package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"clubboard/internal/models"
	"clubboard/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerMember = 8
	maxTotalConns     = 5000
)

var (
	// ErrMemberConnLimit is returned when a member has too many open feeds.
	ErrMemberConnLimit = errors.New("member connection limit reached")
	// ErrServerConnLimit is returned when the hub is full.
	ErrServerConnLimit = errors.New("server connection limit reached")
)

// Hub maps member id to that member's change-feed clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	closed     bool
	logger     *observability.FeedLogger
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	h := &Hub{conns: make(map[string]map[*Client]struct{})}
	h.logger = observability.NewFeedLogger(h.Name())
	return h
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "change feed hub" }

// Register adds a connection for memberID watching collections.
func (h *Hub) Register(memberID string, conn *websocket.Conn, collections []string) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[memberID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[memberID] = m
	}
	if len(m) >= maxConnsPerMember {
		return nil, ErrMemberConnLimit
	}

	client := NewClient(h, conn, memberID, collections)
	m[client] = struct{}{}
	h.totalConns++
	observability.FeedConnections.Inc()
	h.logger.LogConnect(context.Background(), memberID, collections)
	return client, nil
}

// UnregisterClient removes client and closes its send channel. Safe to call twice.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.MemberID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.MemberID)
	}
	h.totalConns--
	close(client.Send)
	observability.FeedConnections.Dec()
	h.logger.LogDisconnect(context.Background(), client.MemberID, "unregistered")
}

// Count returns the number of open clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Broadcast delivers ev to every client watching its collection.
func (h *Hub) Broadcast(ev models.ChangeEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.LogError(context.Background(), err, string(ev.Type))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.conns {
		for c := range clients {
			if c.Wants(ev.Collection) {
				c.TrySend(data)
			}
		}
	}
}

// Publish broadcasts in-process. It lets a single instance run without Redis.
func (h *Hub) Publish(_ context.Context, ev models.ChangeEvent) error {
	h.Broadcast(ev)
	observability.ChangeEventsPublished.WithLabelValues(ev.Collection, string(ev.Type)).Inc()
	return nil
}

// StartWiring forwards every event the Notifier receives to local clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	if err := n.StartChangeSubscriber(ctx, h.Broadcast); err != nil {
		return fmt.Errorf("wire change feed: %w", err)
	}
	return nil
}

// Shutdown closes every client's send channel; each WritePump then sends a
// going-away close frame and exits.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true

	for memberID, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.FeedConnections.Dec()
			h.logger.LogDisconnect(context.Background(), memberID, "shutdown")
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
