package models

import "time"

// BookingStatus tracks a hotel booking through its lifecycle.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a hotel room reservation.
type Booking struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	HotelID    string        `json:"hotelId"`
	RoomID     string        `json:"roomId"`
	CheckIn    time.Time     `json:"checkIn"`
	CheckOut   time.Time     `json:"checkOut"`
	Guests     int           `json:"guests"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`

	syncState
}

func (b *Booking) EntityID() string { return b.ID }

func (b *Booking) MarkSynced(serverID string) {
	if serverID != "" {
		b.ID = serverID
	}
	b.markSynced()
}

func (b *Booking) CreatedTime() time.Time { return b.CreatedAt }

// NewBooking builds a locally created booking that still needs a backend
// create call.
func NewBooking(userID, hotelID, roomID string, checkIn, checkOut time.Time, guests int, totalPrice float64) *Booking {
	now := time.Now()
	return &Booking{
		ID:         NewLocalID(),
		UserID:     userID,
		HotelID:    hotelID,
		RoomID:     roomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     guests,
		TotalPrice: totalPrice,
		Status:     BookingStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
