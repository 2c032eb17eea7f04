package view

import (
	"context"
	"log/slog"
)

// Watch re-fetches through refetch on every change event for collections
// until ctx ends or the feed closes. Refetch failures are logged and the
// watch continues.
func Watch(ctx context.Context, feed ChangeFeed, refetch func(context.Context) error, collections ...string) error {
	events, err := feed.Subscribe(ctx, collections...)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			slog.DebugContext(ctx, "Change received",
				slog.String("collection", ev.Collection),
				slog.String("type", string(ev.Type)),
			)
			if err := refetch(ctx); err != nil {
				slog.WarnContext(ctx, "Refetch after change failed", slog.String("error", err.Error()))
			}
		}
	}
}
