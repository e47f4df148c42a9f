package syncer

import (
	"context"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
)

// CleanupExpired trims synced entities older than the retention horizon.
// Pending items are never trimmed regardless of age: unsynced work is only
// dropped by the user, not by housekeeping.
func (e *Engine) CleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-e.cfg.RetentionHorizon)
	removed := 0

	bookings := e.store.Bookings(ctx)
	if kept := keepLive(bookings, cutoff); len(kept) != len(bookings) {
		removed += len(bookings) - len(kept)
		e.store.SaveBookings(ctx, kept)
	}

	orders := e.store.Orders(ctx)
	if kept := keepLive(orders, cutoff); len(kept) != len(orders) {
		removed += len(orders) - len(kept)
		e.store.SaveOrders(ctx, kept)
	}

	reviews := e.store.Reviews(ctx)
	if kept := keepLive(reviews, cutoff); len(kept) != len(reviews) {
		removed += len(reviews) - len(kept)
		e.store.SaveReviews(ctx, kept)
	}

	// Per-entity event histories age out with their entities: once the
	// newest update is past the horizon, the whole history goes.
	for _, id := range e.store.EventHistoryEntities(ctx) {
		hist := e.store.EventHistory(ctx, id)
		if len(hist) > 0 && hist[len(hist)-1].Timestamp.After(cutoff) {
			continue
		}
		e.store.Remove(ctx, storage.EventHistoryKey(id))
		removed++
	}

	if removed > 0 {
		e.log.Info(ctx, "retention cleanup removed expired items", "removed", removed)
	}
}

// keepLive filters out items that are both synced and older than the cutoff,
// preserving order.
func keepLive[S models.Syncable](items []S, cutoff time.Time) []S {
	kept := make([]S, 0, len(items))
	for _, it := range items {
		if it.IsSynced() && it.CreatedTime().Before(cutoff) {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}
