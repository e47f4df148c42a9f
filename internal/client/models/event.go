package models

import (
	"encoding/json"
	"time"
)

// Live-update event types pushed by the backend.
const (
	EventOrderStatus    = "order_status"
	EventBookingStatus  = "booking_status"
	EventDriverLocation = "driver_location"
	EventChatMessage    = "chat_message"
)

// UpdateEvent is one server-initiated status update. Events are stored
// per-entity as an append-only history: never mutated, only appended and
// trimmed from the head by retention.
type UpdateEvent struct {
	Type      string          `json:"type"`
	EntityID  string          `json:"entityId"`
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Extra     json.RawMessage `json:"extra,omitempty"`
}
