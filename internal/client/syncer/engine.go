// Package syncer owns connectivity state, the periodic sync loop, the
// per-entity pending queues, and snapshot/restore of the local dataset.
// One full pass walks the collections in a fixed order (user, bookings,
// orders, cart, reviews) pushing everything not yet acknowledged by the
// backend; one item's failure never aborts the batch.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/smforson1/book-bite-sub000/internal/client/api"
	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/session"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/common"
	"github.com/smforson1/book-bite-sub000/internal/logging"
)

// Config carries the engine's tunables. Zero values fall back to defaults.
type Config struct {
	SyncInterval        time.Duration
	OnlineCheckInterval time.Duration
	PingTimeout         time.Duration
	RetentionHorizon    time.Duration
	RetentionInterval   time.Duration
	MaxSyncAttempts     int
}

func (c *Config) withDefaults() {
	if c.SyncInterval <= 0 {
		c.SyncInterval = 30 * time.Second
	}
	if c.OnlineCheckInterval <= 0 {
		c.OnlineCheckInterval = 10 * time.Second
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = 3 * time.Second
	}
	if c.RetentionHorizon <= 0 {
		c.RetentionHorizon = 30 * 24 * time.Hour
	}
	if c.RetentionInterval <= 0 {
		c.RetentionInterval = time.Hour
	}
	if c.MaxSyncAttempts <= 0 {
		c.MaxSyncAttempts = 5
	}
}

// Engine is the sync engine. Construct with New, then Start/Stop. Instances
// are independent, so tests can run several side by side.
type Engine struct {
	cfg   Config
	store *storage.Store
	api   api.Client
	sess  *session.Manager
	log   logging.Logger
	bus   *Bus

	cron        *cron.Cron
	cancelWatch context.CancelFunc

	online      atomic.Bool
	syncing     atomic.Bool
	offlineMode atomic.Bool

	mu     sync.Mutex
	status Status
}

func New(cfg Config, store *storage.Store, apiClient api.Client, sess *session.Manager, log logging.Logger) *Engine {
	cfg.withDefaults()
	return &Engine{
		cfg:   cfg,
		store: store,
		api:   apiClient,
		sess:  sess,
		log:   log.With("component", "syncer"),
		bus:   NewBus(),
	}
}

// Events returns the engine's event bus.
func (e *Engine) Events() *Bus { return e.bus }

// Online reports the current connectivity state.
func (e *Engine) Online() bool { return e.online.Load() }

// OfflineModeEnabled reports whether the app is pinned to offline mode.
func (e *Engine) OfflineModeEnabled() bool { return e.offlineMode.Load() }

// Start launches the periodic sync pass, the retention housekeeping job,
// and the connectivity watcher.
func (e *Engine) Start(ctx context.Context) error {
	if e.cron != nil {
		return nil
	}

	e.cron = cron.New()

	if _, err := e.cron.AddFunc(fmt.Sprintf("@every %s", e.cfg.SyncInterval), func() {
		if e.online.Load() && !e.offlineMode.Load() {
			e.SyncNow(context.Background())
		}
	}); err != nil {
		return fmt.Errorf("schedule sync pass: %w", err)
	}

	if _, err := e.cron.AddFunc(fmt.Sprintf("@every %s", e.cfg.RetentionInterval), func() {
		e.CleanupExpired(context.Background())
	}); err != nil {
		return fmt.Errorf("schedule retention: %w", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	e.cancelWatch = cancel
	go e.watchOnline(watchCtx)

	e.cron.Start()
	e.log.Info(ctx, "sync engine started",
		"syncInterval", e.cfg.SyncInterval, "retentionHorizon", e.cfg.RetentionHorizon)
	return nil
}

// Stop halts the scheduler and the connectivity watcher. Running jobs are
// allowed to finish.
func (e *Engine) Stop() {
	if e.cancelWatch != nil {
		e.cancelWatch()
		e.cancelWatch = nil
	}
	if e.cron != nil {
		<-e.cron.Stop().Done()
		e.cron = nil
	}
}

// watchOnline probes the backend and drives connectivity transitions.
func (e *Engine) watchOnline(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.OnlineCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(context.Background(), e.cfg.PingTimeout)
			err := e.api.Ping(pingCtx)
			cancel()
			e.SetOnline(err == nil)

		case <-ctx.Done():
			return
		}
	}
}

// SetOnline records a connectivity transition. Going online triggers an
// immediate out-of-band sync pass; going offline only updates status and
// notifies — in-flight attempts fail naturally through their own requests.
func (e *Engine) SetOnline(online bool) {
	prev := e.online.Swap(online)
	if prev == online {
		return
	}

	e.log.Info(context.Background(), "connectivity changed", "online", online)
	e.bus.publish(Event{Type: EventNetworkStatus, Online: online})

	if online && !e.offlineMode.Load() {
		go e.SyncNow(context.Background())
	}
}

// Hydrate pulls the user's bookings and orders from the backend and merges
// them into the local store. A fresh install starts empty; hydration brings
// the user's existing history in after login. Pending local edits always win
// over the server copy until they are pushed.
func (e *Engine) Hydrate(ctx context.Context) error {
	user := e.store.CurrentUser(ctx)
	if user == nil {
		return common.ErrNoSession
	}

	bookings, err := e.api.FetchBookings(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("fetch bookings: %w", err)
	}
	orders, err := e.api.FetchOrders(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("fetch orders: %w", err)
	}

	e.store.SaveBookings(ctx, mergeRemote(e.store.Bookings(ctx), bookings))
	e.store.SaveOrders(ctx, mergeRemote(e.store.Orders(ctx), orders))

	e.log.Info(ctx, "hydrated from backend",
		"bookings", len(bookings), "orders", len(orders))
	return nil
}

// mergeRemote folds the backend's copy of a collection into the local one.
// The backend is the authority for everything it has acknowledged; entities
// it does not return were deleted server-side and are dropped here too.
// Local entities it has never seen stay queued for the next push.
func mergeRemote[S models.Syncable](local, remote []S) []S {
	byID := make(map[string]S, len(local))
	for _, item := range local {
		byID[item.EntityID()] = item
	}

	merged := make([]S, 0, len(remote))
	for _, item := range remote {
		if prev, ok := byID[item.EntityID()]; ok && !prev.IsSynced() {
			merged = append(merged, prev)
		} else {
			item.MarkSynced("")
			merged = append(merged, item)
		}
		delete(byID, item.EntityID())
	}

	for _, item := range local {
		if _, pending := byID[item.EntityID()]; pending && !item.IsSynced() {
			merged = append(merged, item)
		}
	}
	return merged
}

// passState tracks progress across the steps of one pass.
type passState struct {
	total     int
	processed int
}

// SyncNow runs one full sync pass. If a pass is already running the call is
// a silent no-op: not queued, not an error — status stays "syncing" either
// way, so the caller cannot observe a difference.
func (e *Engine) SyncNow(ctx context.Context) {
	if !e.syncing.CompareAndSwap(false, true) {
		return
	}
	defer e.syncing.Store(false)

	e.bus.publish(Event{Type: EventSyncStart})

	// Pushes need a usable session; catalogs are public and refresh anyway.
	if e.sess != nil && !e.sess.Active(ctx) {
		e.log.Debug(ctx, "no active session, skipping pending queues")
		e.refreshCatalogs(ctx)
		e.setStatus(func(s *Status) { s.IsSyncing = false })
		e.bus.publish(Event{Type: EventSyncComplete})
		return
	}

	bookings := e.store.Bookings(ctx)
	orders := e.store.Orders(ctx)
	reviews := e.store.Reviews(ctx)
	cart := e.store.Cart(ctx)
	user := e.store.CurrentUser(ctx)

	ps := &passState{}
	ps.total = countPending(e.cfg.MaxSyncAttempts, bookings) +
		countPending(e.cfg.MaxSyncAttempts, orders) +
		countPending(e.cfg.MaxSyncAttempts, reviews)
	if user != nil && !user.Synced {
		ps.total++
	}
	if len(cart) > 0 {
		ps.total++
	}

	e.setStatus(func(s *Status) {
		s.IsSyncing = true
		s.Errors = nil
		s.Progress = 0
		s.TotalItems = ps.total
		s.PendingItems = ps.total
	})

	var errs []string

	// Fixed step order; each step isolates its own failures.
	errs = append(errs, e.syncUser(ctx, user, ps)...)
	errs = append(errs, syncPending(ctx, e, "booking", bookings, ps, func(ctx context.Context, b *models.Booking) (string, error) {
		if models.IsLocalID(b.ID) {
			return e.api.CreateBooking(ctx, b)
		}
		return "", e.api.UpdateBooking(ctx, b)
	})...)
	e.store.SaveBookings(ctx, bookings)

	errs = append(errs, syncPending(ctx, e, "order", orders, ps, func(ctx context.Context, o *models.Order) (string, error) {
		if models.IsLocalID(o.ID) {
			return e.api.CreateOrder(ctx, o)
		}
		return "", e.api.UpdateOrder(ctx, o)
	})...)
	e.store.SaveOrders(ctx, orders)

	errs = append(errs, e.syncCart(ctx, user, cart, ps)...)

	errs = append(errs, syncPending(ctx, e, "review", reviews, ps, func(ctx context.Context, r *models.Review) (string, error) {
		if models.IsLocalID(r.ID) {
			return e.api.CreateReview(ctx, r)
		}
		return "", e.api.UpdateReview(ctx, r)
	})...)
	e.store.SaveReviews(ctx, reviews)

	e.refreshCatalogs(ctx)

	finished := time.Now()
	e.setStatus(func(s *Status) {
		s.IsSyncing = false
		s.Errors = errs
		s.PendingItems = ps.total - ps.processed + len(errs)
		if len(errs) == 0 {
			s.LastSync = finished
			s.Progress = 100
			s.PendingItems = 0
		}
	})

	if len(errs) > 0 {
		err := fmt.Errorf("sync pass finished with %d failed items", len(errs))
		e.log.Warn(ctx, "sync pass finished with errors", "failed", len(errs))
		e.bus.publish(Event{Type: EventSyncError, Err: err})
		return
	}

	e.log.Info(ctx, "sync pass complete", "items", ps.total)
	e.bus.publish(Event{Type: EventSyncComplete})
}

// advance counts one processed item and moves the progress indicator.
func (e *Engine) advance(ps *passState) {
	ps.processed++
	e.setStatus(func(s *Status) {
		if ps.total > 0 {
			s.Progress = ps.processed * 100 / ps.total
		}
		s.PendingItems = ps.total - ps.processed
	})
}

func countPending[S models.Syncable](maxAttempts int, items []S) int {
	n := 0
	for _, it := range items {
		if !it.IsSynced() && it.Attempts() < maxAttempts {
			n++
		}
	}
	return n
}

// syncPending walks items in array order and pushes every pending one.
// A failed item stays pending, gets its message recorded, and the walk
// continues; items that exhaust their retry budget are dead-lettered and
// skipped by later passes until re-armed.
func syncPending[S models.Syncable](ctx context.Context, e *Engine, label string, items []S, ps *passState, push func(context.Context, S) (string, error)) []string {
	var errs []string
	for _, item := range items {
		if item.IsSynced() {
			continue
		}
		if item.Attempts() >= e.cfg.MaxSyncAttempts {
			continue
		}

		serverID, err := push(ctx, item)
		if err != nil {
			item.RecordFailure()
			msg := fmt.Sprintf("%s %s: %v", label, item.EntityID(), err)
			errs = append(errs, msg)
			e.log.Warn(ctx, "failed to sync item", "type", label, "id", item.EntityID(), "error", err)
			if item.Attempts() >= e.cfg.MaxSyncAttempts {
				e.deadLetter(ctx, item.EntityID())
			}
			e.advance(ps)
			continue
		}

		item.MarkSynced(serverID)
		e.advance(ps)
	}
	return errs
}

func (e *Engine) syncUser(ctx context.Context, user *models.User, ps *passState) []string {
	if user == nil || user.Synced {
		return nil
	}

	if err := e.api.UpdateProfile(ctx, user); err != nil {
		e.log.Warn(ctx, "failed to sync profile", "error", err)
		e.advance(ps)
		return []string{fmt.Sprintf("user %s: %v", user.ID, err)}
	}

	user.Synced = true
	e.store.SaveCurrentUser(ctx, user)
	e.advance(ps)
	return nil
}

// syncCart replaces the server-side cart with the local one. The operation
// is idempotent, so the cart needs no per-item synced flags.
func (e *Engine) syncCart(ctx context.Context, user *models.User, cart []models.CartItem, ps *passState) []string {
	if len(cart) == 0 || user == nil {
		return nil
	}

	if err := e.api.SyncCart(ctx, user.ID, cart); err != nil {
		e.log.Warn(ctx, "failed to sync cart", "error", err)
		e.advance(ps)
		return []string{fmt.Sprintf("cart: %v", err)}
	}

	e.advance(ps)
	return nil
}

// refreshCatalogs pulls the hotel and restaurant catalogs so browsing works
// offline. Failures are logged only; catalogs are a cache, not pending work.
func (e *Engine) refreshCatalogs(ctx context.Context) {
	if hotels, err := e.api.FetchHotels(ctx); err == nil {
		e.store.SaveHotels(ctx, hotels)
	} else {
		e.log.Debug(ctx, "failed to refresh hotels", "error", err)
	}

	if restaurants, err := e.api.FetchRestaurants(ctx); err == nil {
		e.store.SaveRestaurants(ctx, restaurants)
	} else {
		e.log.Debug(ctx, "failed to refresh restaurants", "error", err)
	}
}

// deadLetter parks an entity id whose retry budget is exhausted.
func (e *Engine) deadLetter(ctx context.Context, id string) {
	ids := storage.Get(ctx, e.store, storage.KeyDeadLetter, []string{})
	for _, existing := range ids {
		if existing == id {
			return
		}
	}
	ids = append(ids, id)
	e.store.Set(ctx, storage.KeyDeadLetter, ids)

	e.setStatus(func(s *Status) { s.DeadLettered = len(ids) })
	e.log.Warn(ctx, "item dead-lettered after exhausting retries", "id", id)
}

// DeadLettered lists the parked entity ids.
func (e *Engine) DeadLettered(ctx context.Context) []string {
	return storage.Get(ctx, e.store, storage.KeyDeadLetter, []string{})
}

// RetryDeadLettered clears the dead-letter list and resets the attempt
// counters of the parked entities so the next pass picks them up again.
func (e *Engine) RetryDeadLettered(ctx context.Context) {
	parked := e.DeadLettered(ctx)
	if len(parked) == 0 {
		return
	}
	set := make(map[string]struct{}, len(parked))
	for _, id := range parked {
		set[id] = struct{}{}
	}

	bookings := e.store.Bookings(ctx)
	for _, b := range bookings {
		if _, ok := set[b.ID]; ok {
			b.SyncAttempts = 0
		}
	}
	e.store.SaveBookings(ctx, bookings)

	orders := e.store.Orders(ctx)
	for _, o := range orders {
		if _, ok := set[o.ID]; ok {
			o.SyncAttempts = 0
		}
	}
	e.store.SaveOrders(ctx, orders)

	reviews := e.store.Reviews(ctx)
	for _, r := range reviews {
		if _, ok := set[r.ID]; ok {
			r.SyncAttempts = 0
		}
	}
	e.store.SaveReviews(ctx, reviews)

	e.store.Remove(ctx, storage.KeyDeadLetter)
	e.setStatus(func(s *Status) { s.DeadLettered = 0 })
}
