package storage

import "encoding/json"

// SchemaVersion is written into every record by the current build. A record
// read back with a different stored version passes through the store's
// migration hook before being returned.
const SchemaVersion = "1.2.0"

// Record is the envelope around every persisted value. Timestamp crosses the
// text boundary through timex.EncodeTime/DecodeTime; Checksum is present only
// for security-sensitive records.
type Record struct {
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
	Version   string          `json:"version"`
	Checksum  string          `json:"checksum,omitempty"`
}

// MigrateFunc upgrades a record payload written by an older build. The
// returned payload is re-saved under the current version. Returning an error
// discards the record and falls back to the caller's default.
type MigrateFunc func(key string, data json.RawMessage, fromVersion string) (json.RawMessage, error)

// IdentityMigration keeps the payload as-is; the record is simply re-stamped
// with the current version.
func IdentityMigration(key string, data json.RawMessage, fromVersion string) (json.RawMessage, error) {
	return data, nil
}
