package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
)

// Typed accessors per entity collection. Reads deserialize straight into the
// entity structs, so date-like fields come back as time.Time rather than the
// strings the underlying storage holds.

func (s *Store) Bookings(ctx context.Context) []*models.Booking {
	return Get(ctx, s, KeyBookings, []*models.Booking{})
}

func (s *Store) SaveBookings(ctx context.Context, items []*models.Booking) bool {
	return s.Set(ctx, KeyBookings, items)
}

func (s *Store) Orders(ctx context.Context) []*models.Order {
	return Get(ctx, s, KeyOrders, []*models.Order{})
}

func (s *Store) SaveOrders(ctx context.Context, items []*models.Order) bool {
	return s.Set(ctx, KeyOrders, items)
}

func (s *Store) Reviews(ctx context.Context) []*models.Review {
	return Get(ctx, s, KeyReviews, []*models.Review{})
}

func (s *Store) SaveReviews(ctx context.Context, items []*models.Review) bool {
	return s.Set(ctx, KeyReviews, items)
}

func (s *Store) Cart(ctx context.Context) []models.CartItem {
	return Get(ctx, s, KeyCart, []models.CartItem{})
}

func (s *Store) SaveCart(ctx context.Context, items []models.CartItem) bool {
	return s.Set(ctx, KeyCart, items)
}

func (s *Store) Hotels(ctx context.Context) []models.Hotel {
	return Get(ctx, s, KeyHotels, []models.Hotel{})
}

func (s *Store) SaveHotels(ctx context.Context, items []models.Hotel) bool {
	return s.Set(ctx, KeyHotels, items)
}

func (s *Store) Restaurants(ctx context.Context) []models.Restaurant {
	return Get(ctx, s, KeyRestaurants, []models.Restaurant{})
}

func (s *Store) SaveRestaurants(ctx context.Context, items []models.Restaurant) bool {
	return s.Set(ctx, KeyRestaurants, items)
}

// CurrentUser returns nil when no user is stored.
func (s *Store) CurrentUser(ctx context.Context) *models.User {
	return Get[*models.User](ctx, s, KeyUser, nil)
}

func (s *Store) SaveCurrentUser(ctx context.Context, u *models.User) bool {
	return s.Set(ctx, KeyUser, u)
}

// AuthToken returns the stored session token, or "" when absent or when the
// record failed its integrity check.
func (s *Store) AuthToken(ctx context.Context) string {
	return Get(ctx, s, KeyAuthToken, "")
}

// SaveAuthToken writes the session token with integrity protection.
func (s *Store) SaveAuthToken(ctx context.Context, token string) bool {
	return s.Set(ctx, KeyAuthToken, token, WithChecksum())
}

// EventHistory returns the persisted live-update history for one entity,
// oldest first.
func (s *Store) EventHistory(ctx context.Context, entityID string) []models.UpdateEvent {
	return Get(ctx, s, EventHistoryKey(entityID), []models.UpdateEvent{})
}

func (s *Store) SaveEventHistory(ctx context.Context, entityID string, events []models.UpdateEvent) bool {
	return s.Set(ctx, EventHistoryKey(entityID), events)
}

// EventHistoryEntities returns the id of every entity with a persisted
// live-update history, sorted.
func (s *Store) EventHistoryEntities(ctx context.Context) []string {
	pairs, err := s.repo.ListPrefix(ctx, eventHistoryPrefix)
	if err != nil {
		s.log.Error(ctx, "failed to list event histories", "error", err)
		return nil
	}

	ids := make([]string, 0, len(pairs))
	for key := range pairs {
		ids = append(ids, strings.TrimPrefix(key, eventHistoryPrefix))
	}
	sort.Strings(ids)
	return ids
}
