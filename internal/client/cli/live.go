package cli

import (
	"context"
	"fmt"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/realtime"
)

// History prints the persisted live-update history for one order or
// booking, oldest first. Works offline.
func (a *App) History(ctx context.Context, entityID string) error {
	events := a.push.History(ctx, entityID)
	if len(events) == 0 {
		fmt.Fprintf(a.out, "No updates recorded for %s\n", entityID)
		return nil
	}

	for _, ev := range events {
		line := ev.Status
		if line == "" {
			line = ev.Message
		}
		fmt.Fprintf(a.out, "  %s  %-15s %s\n",
			ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Type, line)
	}
	return nil
}

// Track subscribes to live updates for one order or booking and prints them
// as they arrive.
func (a *App) Track(ctx context.Context, entityID string) error {
	a.push.TrackOrder(entityID)
	a.push.TrackBooking(entityID)

	a.push.Subscribe(realtime.EventAny, func(ev models.UpdateEvent) {
		if ev.EntityID != entityID {
			return
		}
		fmt.Fprintf(a.out, "[%s] %s %s %s\n",
			ev.Timestamp.Format("15:04:05"), ev.Type, ev.Status, ev.Message)
	})

	fmt.Fprintf(a.out, "Tracking %s\n", entityID)
	return nil
}
