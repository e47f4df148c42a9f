// Package api defines the backend surface consumed by the sync engine and
// the CLI, and its HTTP implementation. The backend's internals are opaque;
// every call returns a uniform success/data/error envelope.
package api

import (
	"context"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
)

// Client is the request/response API exposed by the backend. A response with
// success=false is reported as an error; callers never see the envelope.
type Client interface {
	Close() error

	// Ping checks backend reachability. The sync engine's connectivity
	// watcher drives the OFFLINE/ONLINE transitions off it.
	Ping(ctx context.Context) error

	// Login authenticates and returns the session token plus the profile.
	Login(ctx context.Context, email, password string) (string, *models.User, error)

	// MarkLogin records a session start for the user.
	MarkLogin(ctx context.Context, userID string) error

	// UpdateProfile pushes locally edited profile fields.
	UpdateProfile(ctx context.Context, u *models.User) error

	// Create* push a locally minted entity and return the backend-assigned
	// id. Update* push changes to an entity the backend already knows.
	CreateBooking(ctx context.Context, b *models.Booking) (string, error)
	UpdateBooking(ctx context.Context, b *models.Booking) error
	CreateOrder(ctx context.Context, o *models.Order) (string, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	CreateReview(ctx context.Context, r *models.Review) (string, error)
	UpdateReview(ctx context.Context, r *models.Review) error

	// Fetch-by-user variants.
	FetchBookings(ctx context.Context, userID string) ([]*models.Booking, error)
	FetchOrders(ctx context.Context, userID string) ([]*models.Order, error)

	// Catalog fetches, cached locally for offline browsing.
	FetchHotels(ctx context.Context) ([]models.Hotel, error)
	FetchRestaurants(ctx context.Context) ([]models.Restaurant, error)

	// SyncCart replaces the user's server-side cart with the local one.
	SyncCart(ctx context.Context, userID string, items []models.CartItem) error

	// BackupUploadURL returns a presigned URL for uploading a snapshot
	// archive.
	BackupUploadURL(ctx context.Context) (string, error)
}
