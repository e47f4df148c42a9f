package models

import "time"

// ReviewTarget distinguishes what a review is about.
type ReviewTarget string

const (
	ReviewTargetHotel      ReviewTarget = "hotel"
	ReviewTargetRestaurant ReviewTarget = "restaurant"
)

// Review is a user rating of a hotel or restaurant.
type Review struct {
	ID         string       `json:"id"`
	UserID     string       `json:"userId"`
	TargetID   string       `json:"targetId"`
	TargetType ReviewTarget `json:"targetType"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment"`
	CreatedAt  time.Time    `json:"createdAt"`

	syncState
}

func (r *Review) EntityID() string { return r.ID }

func (r *Review) MarkSynced(serverID string) {
	if serverID != "" {
		r.ID = serverID
	}
	r.markSynced()
}

func (r *Review) CreatedTime() time.Time { return r.CreatedAt }

// NewReview builds a locally created review pending backend creation.
func NewReview(userID, targetID string, targetType ReviewTarget, rating int, comment string) *Review {
	return &Review{
		ID:         NewLocalID(),
		UserID:     userID,
		TargetID:   targetID,
		TargetType: targetType,
		Rating:     rating,
		Comment:    comment,
		CreatedAt:  time.Now(),
	}
}
