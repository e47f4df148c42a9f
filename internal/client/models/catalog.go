package models

// Catalog entities are read-only on the device: fetched during a sync pass
// and cached so browsing works offline. They never enter a pending queue.

// Room is a bookable hotel room.
type Room struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Capacity int     `json:"capacity"`
	Price    float64 `json:"price"`
}

// Hotel is a bookable property.
type Hotel struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	City    string  `json:"city"`
	Rating  float64 `json:"rating"`
	Rooms   []Room  `json:"rooms"`
}

// MenuItem is an orderable dish.
type MenuItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Restaurant is an orderable venue.
type Restaurant struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Address string     `json:"address"`
	City    string     `json:"city"`
	Cuisine string     `json:"cuisine"`
	Rating  float64    `json:"rating"`
	Menu    []MenuItem `json:"menu"`
}
