// Package common defines shared constants and sentinel errors used across
// the client layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrIntegrity        = errors.New("integrity check failed")
	ErrMalformedArchive = errors.New("malformed archive")

	// Transport-level errors.
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRejected     = errors.New("rejected by server")

	// ErrNoSession is returned by operations that need a logged-in user.
	ErrNoSession = errors.New("no active session")

	// Live-update channel errors.
	ErrNotConnected   = errors.New("not connected")
	ErrConnectTimeout = errors.New("connect timeout")
)
