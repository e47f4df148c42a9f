package storage

// Fixed keys addressing each persisted collection or setting. Every value is
// a JSON-serialized Record envelope.
const (
	KeyUser        = "bookbite:user"
	KeyAuthToken   = "bookbite:auth_token"
	KeyBookings    = "bookbite:bookings"
	KeyOrders      = "bookbite:orders"
	KeyReviews     = "bookbite:reviews"
	KeyCart        = "bookbite:cart"
	KeyHotels      = "bookbite:hotels"
	KeyRestaurants = "bookbite:restaurants"
	KeySnapshot    = "bookbite:offline_snapshot"
	KeyDeadLetter  = "bookbite:dead_letter"
)

const eventHistoryPrefix = "bookbite:events:"

// EventHistoryKey returns the key holding the live-update history for one
// entity (an order or booking id).
func EventHistoryKey(entityID string) string {
	return eventHistoryPrefix + entityID
}
