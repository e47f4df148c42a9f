package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/netx"
)

// OfflineSnapshot is a self-contained copy of everything the app needs to
// run without a network: the session, every pending queue, and the cached
// catalogs. It lives under its own key, separate from the live collections.
type OfflineSnapshot struct {
	CapturedAt  time.Time            `json:"capturedAt"`
	AuthToken   string               `json:"authToken,omitempty"`
	User        *models.User         `json:"user,omitempty"`
	Bookings    []*models.Booking    `json:"bookings"`
	Orders      []*models.Order      `json:"orders"`
	Reviews     []*models.Review     `json:"reviews"`
	Cart        []models.CartItem    `json:"cart"`
	Hotels      []models.Hotel       `json:"hotels"`
	Restaurants []models.Restaurant  `json:"restaurants"`
}

// CreateSnapshot captures the current local dataset under the snapshot key.
func (e *Engine) CreateSnapshot(ctx context.Context) bool {
	snap := OfflineSnapshot{
		CapturedAt:  time.Now(),
		AuthToken:   e.store.AuthToken(ctx),
		User:        e.store.CurrentUser(ctx),
		Bookings:    e.store.Bookings(ctx),
		Orders:      e.store.Orders(ctx),
		Reviews:     e.store.Reviews(ctx),
		Cart:        e.store.Cart(ctx),
		Hotels:      e.store.Hotels(ctx),
		Restaurants: e.store.Restaurants(ctx),
	}

	ok := e.store.Set(ctx, storage.KeySnapshot, snap)
	if ok {
		e.log.Info(ctx, "offline snapshot captured",
			"bookings", len(snap.Bookings), "orders", len(snap.Orders))
	}
	return ok
}

// RestoreFromSnapshot replaces the live collections with the last snapshot.
// Returns false when no snapshot exists; the live data is left untouched.
func (e *Engine) RestoreFromSnapshot(ctx context.Context) bool {
	snap := storage.Get[*OfflineSnapshot](ctx, e.store, storage.KeySnapshot, nil)
	if snap == nil {
		return false
	}

	if snap.AuthToken != "" {
		e.store.SaveAuthToken(ctx, snap.AuthToken)
	}
	if snap.User != nil {
		e.store.SaveCurrentUser(ctx, snap.User)
	}
	e.store.SaveBookings(ctx, snap.Bookings)
	e.store.SaveOrders(ctx, snap.Orders)
	e.store.SaveReviews(ctx, snap.Reviews)
	e.store.SaveCart(ctx, snap.Cart)
	e.store.SaveHotels(ctx, snap.Hotels)
	e.store.SaveRestaurants(ctx, snap.Restaurants)

	e.log.Info(ctx, "restored from offline snapshot", "capturedAt", snap.CapturedAt)
	return true
}

// EnableOfflineMode snapshots the dataset and suspends automatic syncing
// until DisableOfflineMode. Local edits keep accumulating as usual.
func (e *Engine) EnableOfflineMode(ctx context.Context) {
	if e.offlineMode.Swap(true) {
		return
	}
	e.CreateSnapshot(ctx)
	e.log.Info(ctx, "offline mode enabled")
	e.bus.publish(Event{Type: EventOfflineModeEnabled})
}

// DisableOfflineMode resumes automatic syncing and, if the backend is
// reachable, kicks off a pass right away to drain what accumulated.
func (e *Engine) DisableOfflineMode(ctx context.Context) {
	if !e.offlineMode.Swap(false) {
		return
	}
	e.log.Info(ctx, "offline mode disabled")
	e.bus.publish(Event{Type: EventOfflineModeDisabled})

	if e.online.Load() {
		go e.SyncNow(context.Background())
	}
}

// BackupSnapshot exports the whole database and uploads it to a presigned
// URL obtained from the backend.
func (e *Engine) BackupSnapshot(ctx context.Context) error {
	blob, err := e.store.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to export database: %w", err)
	}

	url, err := e.api.BackupUploadURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to request upload url: %w", err)
	}

	if err := netx.UploadToPresignedURL(ctx, url, blob); err != nil {
		return fmt.Errorf("failed to upload backup: %w", err)
	}

	e.log.Info(ctx, "backup uploaded", "bytes", len(blob))
	return nil
}
