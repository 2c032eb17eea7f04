// Package notifications fans committed change events out to live subscribers.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"clubboard/internal/models"
	"clubboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

const changeChannelPrefix = "changes:"

// Publisher delivers a change event to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, ev models.ChangeEvent) error
}

// ChangeChannel returns the Redis channel carrying events for a collection.
func ChangeChannel(collection string) string {
	return changeChannelPrefix + collection
}

// Notifier publishes change events into Redis channels so every server
// instance can forward them to its own subscribers.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// Publish sends ev to its collection channel. A nil client is a no-op.
func (n *Notifier) Publish(ctx context.Context, ev models.ChangeEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	if err := n.rdb.Publish(ctx, ChangeChannel(ev.Collection), payload).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("publish").Inc()
		return err
	}
	observability.ChangeEventsPublished.WithLabelValues(ev.Collection, string(ev.Type)).Inc()
	return nil
}

// StartChangeSubscriber subscribes to every change channel and calls onEvent
// for each decoded event until ctx is cancelled.
func (n *Notifier) StartChangeSubscriber(
	ctx context.Context, onEvent func(ev models.ChangeEvent),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, changeChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe change channels: %w", err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in ChangeSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					var ev models.ChangeEvent
					if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
						log.Printf("invalid change event on %s: %v", msg.Channel, err)
						return
					}
					if ev.Collection == "" {
						ev.Collection = strings.TrimPrefix(msg.Channel, changeChannelPrefix)
					}
					onEvent(ev)
				}()
			}
		}
	}()

	return nil
}
