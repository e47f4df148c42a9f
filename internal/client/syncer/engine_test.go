package syncer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/smforson1/book-bite-sub000/internal/client/api"
	"github.com/smforson1/book-bite-sub000/internal/client/models"
	"github.com/smforson1/book-bite-sub000/internal/client/session"
	"github.com/smforson1/book-bite-sub000/internal/client/storage"
	"github.com/smforson1/book-bite-sub000/internal/common"
	"github.com/smforson1/book-bite-sub000/internal/logging"
)

// fakeAPI counts calls and fails on demand. Zero value succeeds everything.
type fakeAPI struct {
	api.Client

	mu             sync.Mutex
	createBookings int
	updateBookings int
	createOrders   int
	createReviews  int
	cartSyncs      int
	profilePushes  int

	failBookingID string
	failAll       bool

	remoteBookings []*models.Booking
	remoteOrders   []*models.Order

	blockCreate chan struct{}
}

func (f *fakeAPI) Ping(ctx context.Context) error { return nil }

func (f *fakeAPI) CreateBooking(ctx context.Context, b *models.Booking) (string, error) {
	f.mu.Lock()
	f.createBookings++
	blocked := f.blockCreate
	f.mu.Unlock()

	if blocked != nil {
		<-blocked
	}
	if f.failAll || b.ID == f.failBookingID {
		return "", common.ErrUnavailable
	}
	return "srv-" + b.ID, nil
}

func (f *fakeAPI) UpdateBooking(ctx context.Context, b *models.Booking) error {
	f.mu.Lock()
	f.updateBookings++
	f.mu.Unlock()
	if f.failAll {
		return common.ErrUnavailable
	}
	return nil
}

func (f *fakeAPI) CreateOrder(ctx context.Context, o *models.Order) (string, error) {
	f.mu.Lock()
	f.createOrders++
	f.mu.Unlock()
	if f.failAll {
		return "", common.ErrUnavailable
	}
	return "srv-" + o.ID, nil
}

func (f *fakeAPI) CreateReview(ctx context.Context, r *models.Review) (string, error) {
	f.mu.Lock()
	f.createReviews++
	f.mu.Unlock()
	if f.failAll {
		return "", common.ErrUnavailable
	}
	return "srv-" + r.ID, nil
}

func (f *fakeAPI) UpdateProfile(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	f.profilePushes++
	f.mu.Unlock()
	if f.failAll {
		return common.ErrUnavailable
	}
	return nil
}

func (f *fakeAPI) SyncCart(ctx context.Context, userID string, items []models.CartItem) error {
	f.mu.Lock()
	f.cartSyncs++
	f.mu.Unlock()
	if f.failAll {
		return common.ErrUnavailable
	}
	return nil
}

func (f *fakeAPI) FetchBookings(ctx context.Context, userID string) ([]*models.Booking, error) {
	if f.failAll {
		return nil, common.ErrUnavailable
	}
	return f.remoteBookings, nil
}

func (f *fakeAPI) FetchOrders(ctx context.Context, userID string) ([]*models.Order, error) {
	if f.failAll {
		return nil, common.ErrUnavailable
	}
	return f.remoteOrders, nil
}

func (f *fakeAPI) FetchHotels(ctx context.Context) ([]models.Hotel, error) {
	return []models.Hotel{{ID: "h1", Name: "Grand"}}, nil
}

func (f *fakeAPI) FetchRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return []models.Restaurant{{ID: "r1", Name: "Mama's"}}, nil
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createBookings + f.updateBookings + f.createOrders +
		f.createReviews + f.cartSyncs + f.profilePushes
}

func newTestEngine(t *testing.T, cfg Config, fake *fakeAPI) (*Engine, *storage.Store) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.InitDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewDefault("error")
	store := storage.New(db, log)
	sess := session.NewManager(store, log)
	require.True(t, sess.Begin(ctx, "opaque-token", &models.User{ID: "u1", Synced: true}))

	return New(cfg, store, fake, sess, log), store
}

func TestSyncNowPushesPendingItems(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{}
	e, store := newTestEngine(t, Config{}, fake)

	b1 := models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 2), 2, 300)
	b2 := models.NewBooking("u1", "h1", "rm2", time.Now(), time.Now().AddDate(0, 0, 1), 1, 120)
	store.SaveBookings(ctx, []*models.Booking{b1, b2})

	o1 := models.NewOrder("u1", "r1", "12 Main St", []models.OrderItem{{MenuItemID: "m1", Price: 10, Quantity: 2}})
	store.SaveOrders(ctx, []*models.Order{o1})

	e.SyncNow(ctx)

	bookings := store.Bookings(ctx)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.True(t, b.IsSynced())
		assert.False(t, models.IsLocalID(b.ID), "server id should replace the local one")
	}

	orders := store.Orders(ctx)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsSynced())

	st := e.Status()
	assert.False(t, st.IsSyncing)
	assert.Empty(t, st.Errors)
	assert.Equal(t, 100, st.Progress)
	assert.Zero(t, st.PendingItems)
	assert.False(t, st.LastSync.IsZero())

	// Catalogs refreshed as part of the pass.
	assert.Len(t, store.Hotels(ctx), 1)
	assert.Len(t, store.Restaurants(ctx), 1)
}

func TestSyncNowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{}
	e, store := newTestEngine(t, Config{}, fake)

	store.SaveBookings(ctx, []*models.Booking{
		models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 99),
	})

	e.SyncNow(ctx)
	first := fake.calls()
	e.SyncNow(ctx)

	assert.Equal(t, first, fake.calls(), "second pass must not re-push synced items")
}

func TestSyncNowIsolatesItemFailures(t *testing.T) {
	ctx := context.Background()

	b1 := models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 100)
	b2 := models.NewBooking("u1", "h1", "rm2", time.Now(), time.Now().AddDate(0, 0, 1), 1, 100)
	b3 := models.NewBooking("u1", "h1", "rm3", time.Now(), time.Now().AddDate(0, 0, 1), 1, 100)

	fake := &fakeAPI{failBookingID: b2.ID}
	e, store := newTestEngine(t, Config{}, fake)
	store.SaveBookings(ctx, []*models.Booking{b1, b2, b3})

	var syncErr error
	e.Events().Subscribe(EventSyncError, func(ev Event) { syncErr = ev.Err })

	e.SyncNow(ctx)

	bookings := store.Bookings(ctx)
	require.Len(t, bookings, 3)
	assert.True(t, bookings[0].IsSynced())
	assert.False(t, bookings[1].IsSynced(), "failed item stays pending")
	assert.Equal(t, 1, bookings[1].Attempts())
	assert.True(t, bookings[2].IsSynced(), "failure must not abort the batch")

	st := e.Status()
	require.Len(t, st.Errors, 1)
	assert.Contains(t, st.Errors[0], b2.ID)
	assert.Equal(t, 1, st.PendingItems)
	assert.True(t, st.LastSync.IsZero(), "a failed pass does not advance LastSync")
	require.Error(t, syncErr)
}

func TestSyncNowAtMostOneInFlight(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{blockCreate: make(chan struct{})}
	e, store := newTestEngine(t, Config{}, fake)

	store.SaveBookings(ctx, []*models.Booking{
		models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 50),
	})

	done := make(chan struct{})
	go func() {
		e.SyncNow(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		return fake.createBookings == 1
	}, time.Second, 5*time.Millisecond)

	// A second call while the first is mid-flight is a silent no-op.
	e.SyncNow(ctx)
	fake.mu.Lock()
	assert.Equal(t, 1, fake.createBookings)
	fake.mu.Unlock()

	close(fake.blockCreate)
	<-done
}

func TestSetOnlineTriggersSync(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{}
	e, store := newTestEngine(t, Config{}, fake)

	store.SaveBookings(ctx, []*models.Booking{
		models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 75),
	})

	e.SetOnline(false)
	assert.Zero(t, fake.calls(), "going offline must not sync")

	e.SetOnline(true)
	require.Eventually(t, func() bool {
		return len(store.Bookings(ctx)) == 1 && store.Bookings(ctx)[0].IsSynced()
	}, 2*time.Second, 10*time.Millisecond)

	// Repeating the same state is not a transition.
	before := fake.calls()
	e.SetOnline(true)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, before, fake.calls())
}

func TestOfflineModeSuspendsSyncing(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{}
	e, store := newTestEngine(t, Config{}, fake)

	store.SaveBookings(ctx, []*models.Booking{
		models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 60),
	})

	e.EnableOfflineMode(ctx)
	e.SetOnline(true)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, fake.calls(), "offline mode suppresses reconnect-triggered sync")

	e.DisableOfflineMode(ctx)
	require.Eventually(t, func() bool {
		bs := store.Bookings(ctx)
		return len(bs) == 1 && bs[0].IsSynced()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t, Config{}, &fakeAPI{})

	b := models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 2, 200)
	store.SaveBookings(ctx, []*models.Booking{b})
	store.SaveCart(ctx, []models.CartItem{{MenuItemID: "m1", Name: "Jollof", Price: 8, Quantity: 1}})

	require.True(t, e.CreateSnapshot(ctx))

	// Lose the live collections, as a reinstall or wipe would.
	store.Remove(ctx, storage.KeyBookings)
	store.Remove(ctx, storage.KeyCart)
	store.Remove(ctx, storage.KeyAuthToken)
	require.Empty(t, store.Bookings(ctx))

	require.True(t, e.RestoreFromSnapshot(ctx))

	restored := store.Bookings(ctx)
	require.Len(t, restored, 1)
	assert.Equal(t, b.ID, restored[0].ID)
	assert.Len(t, store.Cart(ctx), 1)
	assert.Equal(t, "opaque-token", store.AuthToken(ctx))
}

func TestRestoreWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	e, _ := newTestEngine(t, Config{}, &fakeAPI{})
	assert.False(t, e.RestoreFromSnapshot(ctx))
}

func TestCleanupExpiredKeepsPendingItems(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t, Config{RetentionHorizon: 24 * time.Hour}, &fakeAPI{})

	oldSynced := models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now(), 1, 10)
	oldSynced.CreatedAt = time.Now().Add(-48 * time.Hour)
	oldSynced.MarkSynced("srv-1")

	oldPending := models.NewBooking("u1", "h1", "rm2", time.Now(), time.Now(), 1, 10)
	oldPending.CreatedAt = time.Now().Add(-48 * time.Hour)

	fresh := models.NewBooking("u1", "h1", "rm3", time.Now(), time.Now(), 1, 10)
	fresh.MarkSynced("srv-2")

	store.SaveBookings(ctx, []*models.Booking{oldSynced, oldPending, fresh})

	e.CleanupExpired(ctx)

	kept := store.Bookings(ctx)
	require.Len(t, kept, 2)
	assert.Equal(t, oldPending.ID, kept[0].ID, "pending items survive any age")
	assert.Equal(t, "srv-2", kept[1].ID)
}

func TestCleanupExpiredDropsStaleEventHistories(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t, Config{RetentionHorizon: 24 * time.Hour}, &fakeAPI{})

	store.SaveEventHistory(ctx, "ord-old", []models.UpdateEvent{
		{Type: models.EventOrderStatus, EntityID: "ord-old", Status: "delivered",
			Timestamp: time.Now().Add(-48 * time.Hour)},
	})
	store.SaveEventHistory(ctx, "ord-new", []models.UpdateEvent{
		{Type: models.EventOrderStatus, EntityID: "ord-new", Status: "preparing",
			Timestamp: time.Now()},
	})

	e.CleanupExpired(ctx)

	assert.Empty(t, store.EventHistory(ctx, "ord-old"))
	assert.Len(t, store.EventHistory(ctx, "ord-new"), 1)
	assert.Equal(t, []string{"ord-new"}, store.EventHistoryEntities(ctx))
}

func TestDeadLetterAfterExhaustedRetries(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{failAll: true}
	e, store := newTestEngine(t, Config{MaxSyncAttempts: 2}, fake)

	b := models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 40)
	store.SaveBookings(ctx, []*models.Booking{b})

	e.SyncNow(ctx)
	e.SyncNow(ctx)
	require.Equal(t, 2, fake.createBookings)
	assert.Equal(t, []string{b.ID}, e.DeadLettered(ctx))

	// Parked items are skipped by later passes.
	e.SyncNow(ctx)
	assert.Equal(t, 2, fake.createBookings)

	fake.failAll = false
	e.RetryDeadLettered(ctx)
	assert.Empty(t, e.DeadLettered(ctx))

	e.SyncNow(ctx)
	bs := store.Bookings(ctx)
	require.Len(t, bs, 1)
	assert.True(t, bs[0].IsSynced())
}

func TestHydrateSeedsFreshInstall(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{
		remoteBookings: []*models.Booking{{ID: "bkg-1", UserID: "u1", HotelID: "h1"}},
		remoteOrders:   []*models.Order{{ID: "ord-1", UserID: "u1", RestaurantID: "r1"}},
	}
	e, store := newTestEngine(t, Config{}, fake)

	require.NoError(t, e.Hydrate(ctx))

	bookings := store.Bookings(ctx)
	require.Len(t, bookings, 1)
	assert.Equal(t, "bkg-1", bookings[0].ID)
	assert.True(t, bookings[0].IsSynced(), "backend entities arrive acknowledged")

	orders := store.Orders(ctx)
	require.Len(t, orders, 1)
	assert.True(t, orders[0].IsSynced())
}

func TestHydrateKeepsPendingEdits(t *testing.T) {
	ctx := context.Background()

	localEdit := &models.Booking{ID: "bkg-1", UserID: "u1", HotelID: "h1", Guests: 4}
	localNew := models.NewBooking("u1", "h2", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 80)
	staleSynced := &models.Booking{ID: "bkg-gone", UserID: "u1"}
	staleSynced.MarkSynced("")

	fake := &fakeAPI{
		remoteBookings: []*models.Booking{{ID: "bkg-1", UserID: "u1", HotelID: "h1", Guests: 2}},
	}
	e, store := newTestEngine(t, Config{}, fake)
	store.SaveBookings(ctx, []*models.Booking{localEdit, localNew, staleSynced})

	require.NoError(t, e.Hydrate(ctx))

	bookings := store.Bookings(ctx)
	require.Len(t, bookings, 2)
	assert.Equal(t, 4, bookings[0].Guests, "a pending local edit wins over the server copy")
	assert.False(t, bookings[0].IsSynced())
	assert.Equal(t, localNew.ID, bookings[1].ID, "locally created entities stay queued")
}

func TestHydrateWithoutSession(t *testing.T) {
	ctx := context.Background()
	e, store := newTestEngine(t, Config{}, &fakeAPI{})
	store.Remove(ctx, storage.KeyUser)

	assert.ErrorIs(t, e.Hydrate(ctx), common.ErrNoSession)
}

func TestSyncNowSkipsQueuesWithoutSession(t *testing.T) {
	ctx := context.Background()
	fake := &fakeAPI{}
	e, store := newTestEngine(t, Config{}, fake)

	store.SaveBookings(ctx, []*models.Booking{
		models.NewBooking("u1", "h1", "rm1", time.Now(), time.Now().AddDate(0, 0, 1), 1, 30),
	})
	store.Remove(ctx, storage.KeyAuthToken)

	e.SyncNow(ctx)

	assert.Zero(t, fake.createBookings)
	assert.False(t, store.Bookings(ctx)[0].IsSynced())
	assert.Len(t, store.Hotels(ctx), 1, "public catalogs still refresh")
}

func TestStatusCloneIsDetached(t *testing.T) {
	e, _ := newTestEngine(t, Config{}, &fakeAPI{})

	e.setStatus(func(s *Status) { s.Errors = []string{"boom"} })
	st := e.Status()
	st.Errors[0] = "mutated"

	assert.Equal(t, "boom", e.Status().Errors[0])
}
