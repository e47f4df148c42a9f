package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/client/models"
)

// Book creates a hotel booking locally and queues it for sync. Works fully
// offline; the booking gets its backend id on the next successful pass.
func (a *App) Book(ctx context.Context) error {
	user := a.sess.CurrentUser(ctx)
	if user == nil {
		fmt.Fprintln(a.out, "Log in first")
		return nil
	}

	hotels := a.store.Hotels(ctx)
	for _, h := range hotels {
		fmt.Fprintf(a.out, "  %s  %s (%s)\n", h.ID, h.Name, h.City)
	}

	hotelID, err := GetSimpleText(a.reader, "Hotel id", a.out)
	if err != nil {
		return err
	}
	roomID, err := GetSimpleText(a.reader, "Room id", a.out)
	if err != nil {
		return err
	}
	checkIn, err := GetDate(a.reader, "Check-in (YYYY-MM-DD)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	checkOut, err := GetDate(a.reader, "Check-out (YYYY-MM-DD)", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}
	guests, err := GetInt(a.reader, "Guests", a.out)
	if err != nil {
		fmt.Fprintln(a.out, err)
		return err
	}

	price := roomPrice(hotels, hotelID, roomID) * float64(nights(checkIn, checkOut))

	booking := models.NewBooking(user.ID, hotelID, roomID, checkIn, checkOut, guests, price)
	bookings := append(a.store.Bookings(ctx), booking)
	if !a.store.SaveBookings(ctx, bookings) {
		return fmt.Errorf("failed to save booking")
	}

	fmt.Fprintf(a.out, "Booking %s queued for sync\n", booking.ID)
	if a.engine.Online() {
		go a.engine.SyncNow(context.Background())
	}
	return nil
}

func nights(in, out time.Time) int {
	n := int(out.Sub(in).Hours() / 24)
	if n < 1 {
		n = 1
	}
	return n
}

func roomPrice(hotels []models.Hotel, hotelID, roomID string) float64 {
	for _, h := range hotels {
		if h.ID != hotelID {
			continue
		}
		for _, r := range h.Rooms {
			if r.ID == roomID {
				return r.Price
			}
		}
	}
	return 0
}
