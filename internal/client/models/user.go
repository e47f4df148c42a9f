package models

import "time"

// User is the authenticated app user. Profile edits made offline set
// Synced=false and are pushed by the sync engine's user step.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	Synced    bool      `json:"synced"`
}

// CartItem is one menu item held in the shopping cart. The cart is a local
// working set; the whole collection is replaced on the backend when synced.
type CartItem struct {
	MenuItemID   string    `json:"menuItemId"`
	RestaurantID string    `json:"restaurantId"`
	Name         string    `json:"name"`
	Price        float64   `json:"price"`
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"addedAt"`
}
