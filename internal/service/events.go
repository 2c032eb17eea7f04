// Package service holds the business rules behind the HTTP API: ownership,
// validation and change notification around the repositories.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"clubboard/internal/models"
	"clubboard/internal/notifications"
)

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, models.ChangeEvent) error { return nil }

func publisherOrNoop(p notifications.Publisher) notifications.Publisher {
	if p == nil {
		return noopPublisher{}
	}
	return p
}

// announce publishes a change after the mutation committed. Delivery is
// best effort; subscribers also re-fetch after their own writes.
func announce(ctx context.Context, p notifications.Publisher, collection string, typ models.ChangeType, id string) {
	ev := models.ChangeEvent{Collection: collection, Type: typ, ID: id, At: time.Now().UTC()}
	if err := p.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "change event not published",
			slog.String("collection", collection),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
	}
}

func uintID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
