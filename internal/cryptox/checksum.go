// Package cryptox provides the integrity digest used by the durable store
// for security-sensitive records (session token, credentials).
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Checksum returns the hex-encoded SHA-256 digest of data.
func Checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// VerifyChecksum reports whether data matches the stored digest.
// Comparison is constant-time.
func VerifyChecksum(data []byte, checksum string) bool {
	return subtle.ConstantTimeCompare([]byte(Checksum(data)), []byte(checksum)) == 1
}
