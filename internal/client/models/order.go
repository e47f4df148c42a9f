package models

import "time"

// OrderStatus tracks a restaurant order through delivery.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusOnTheWay  OrderStatus = "on_the_way"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// OrderItem is one line of an order.
type OrderItem struct {
	MenuItemID string  `json:"menuItemId"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

// Order is a restaurant food order.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	RestaurantID    string      `json:"restaurantId"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"totalPrice"`
	Status          OrderStatus `json:"status"`
	DeliveryAddress string      `json:"deliveryAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`

	syncState
}

func (o *Order) EntityID() string { return o.ID }

func (o *Order) MarkSynced(serverID string) {
	if serverID != "" {
		o.ID = serverID
	}
	o.markSynced()
}

func (o *Order) CreatedTime() time.Time { return o.CreatedAt }

// NewOrder builds a locally created order that still needs a backend create
// call.
func NewOrder(userID, restaurantID, address string, items []OrderItem) *Order {
	now := time.Now()
	var total float64
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}
	return &Order{
		ID:              NewLocalID(),
		UserID:          userID,
		RestaurantID:    restaurantID,
		Items:           items,
		TotalPrice:      total,
		Status:          OrderStatusPending,
		DeliveryAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
