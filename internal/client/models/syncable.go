package models

import "time"

// Syncable is implemented (with pointer receivers) by every entity the sync
// engine pushes to the backend: Booking, Order, Review.
type Syncable interface {
	// EntityID returns the current id, local or backend-assigned.
	EntityID() string

	// IsSynced reports whether the backend has acknowledged the latest
	// local state of the entity.
	IsSynced() bool

	// MarkSynced flips the entity to synced. If the backend assigned a new
	// id (entity was created server-side), serverID replaces the local one;
	// pass "" to keep the existing id.
	MarkSynced(serverID string)

	// Attempts returns how many consecutive pushes of this entity failed.
	Attempts() int

	// RecordFailure increments the failed-push counter.
	RecordFailure()

	// CreatedTime returns the creation instant, used by retention.
	CreatedTime() time.Time
}

// syncState carries the local-only bookkeeping embedded in each syncable
// entity. SyncAttempts backs the bounded-retry policy and never travels to
// the backend.
type syncState struct {
	Synced       bool `json:"synced"`
	SyncAttempts int  `json:"syncAttempts,omitempty"`
}

func (s *syncState) IsSynced() bool { return s.Synced }

func (s *syncState) Attempts() int { return s.SyncAttempts }

func (s *syncState) RecordFailure() { s.SyncAttempts++ }

func (s *syncState) markSynced() {
	s.Synced = true
	s.SyncAttempts = 0
}
