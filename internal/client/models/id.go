// Package models defines the marketplace entities held in the local store
// and exchanged with the backend.
package models

import (
	"strings"

	"github.com/google/uuid"

	"github.com/smforson1/book-bite-sub000/internal/common"
)

// NewLocalID mints an id for an entity created on the device. The prefix
// tells the sync engine the backend has never seen this entity, so the push
// must be a create rather than an update.
func NewLocalID() string {
	return common.LocalIDPrefix + uuid.NewString()
}

// IsLocalID reports whether id was minted on the device.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, common.LocalIDPrefix)
}
