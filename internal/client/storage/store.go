package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/common"
	"github.com/smforson1/book-bite-sub000/internal/cryptox"
	"github.com/smforson1/book-bite-sub000/internal/logging"
	"github.com/smforson1/book-bite-sub000/internal/timex"
)

// Store wraps the raw repository with the Record envelope: versioning,
// optional integrity checksums, and a migration hook. All operations are
// total; failures are logged and reported through sentinel returns, never
// panics.
type Store struct {
	db      *sql.DB
	repo    Repository
	log     logging.Logger
	version string
	migrate MigrateFunc

	integrityErrors atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithVersion overrides the schema version stamped into new records.
// Tests use it to exercise the migration path.
func WithVersion(v string) Option {
	return func(s *Store) { s.version = v }
}

// WithMigration replaces the identity migration hook.
func WithMigration(m MigrateFunc) Option {
	return func(s *Store) { s.migrate = m }
}

// New builds a Store over the client database.
func New(db *sql.DB, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		db:      db,
		repo:    NewSQLiteRepository(db),
		log:     log.With("component", "storage"),
		version: SchemaVersion,
		migrate: IdentityMigration,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetOption configures one Set call.
type SetOption func(*Record, []byte)

// WithChecksum attaches an integrity digest of the serialized payload.
// Used for security-sensitive records (session token, credentials).
func WithChecksum() SetOption {
	return func(r *Record, data []byte) {
		r.Checksum = cryptox.Checksum(data)
	}
}

// Set serializes value into a Record and writes it under key. Returns false
// (and logs) on any failure.
func (s *Store) Set(ctx context.Context, key string, value any, opts ...SetOption) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Error(ctx, "failed to serialize value", "key", key, "error", err)
		return false
	}

	rec := Record{
		Data:      data,
		Timestamp: timex.EncodeTime(time.Now()),
		Version:   s.version,
	}
	for _, opt := range opts {
		opt(&rec, data)
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		s.log.Error(ctx, "failed to serialize record", "key", key, "error", err)
		return false
	}

	if err := s.repo.Set(ctx, key, raw); err != nil {
		s.log.Error(ctx, "failed to write record", "key", key, "error", err)
		return false
	}
	return true
}

// Remove deletes key. Best-effort and idempotent.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.repo.Delete(ctx, key); err != nil {
		s.log.Error(ctx, "failed to remove record", "key", key, "error", err)
		return false
	}
	return true
}

// Clear deletes every key. Best-effort and idempotent.
func (s *Store) Clear(ctx context.Context) bool {
	if err := s.repo.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear storage", "error", err)
		return false
	}
	return true
}

// IntegrityErrors returns how many records were discarded because their
// checksum did not match since the store was constructed.
func (s *Store) IntegrityErrors() int64 {
	return s.integrityErrors.Load()
}

// payload reads the record under key and returns its (possibly migrated)
// payload bytes. A nil return with ok=false means the caller should fall
// back to its default.
func (s *Store) payload(ctx context.Context, key string) (json.RawMessage, bool) {
	raw, err := s.repo.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "failed to read record", "key", key, "error", err)
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		s.log.Error(ctx, "failed to decode record envelope", "key", key, "error", err)
		return nil, false
	}

	if rec.Checksum != "" && !cryptox.VerifyChecksum(rec.Data, rec.Checksum) {
		s.integrityErrors.Add(1)
		s.log.Error(ctx, "discarding record", "key", key, "error", common.ErrIntegrity)
		_ = s.repo.Delete(ctx, key)
		return nil, false
	}

	data := rec.Data
	if rec.Version != s.version {
		migrated, err := s.migrate(key, data, rec.Version)
		if err != nil {
			s.log.Error(ctx, "migration failed, discarding record",
				"key", key, "from", rec.Version, "to", s.version, "error", err)
			return nil, false
		}
		data = migrated

		// Re-save under the current version so the hook runs once per key.
		rec.Data = data
		rec.Version = s.version
		if rec.Checksum != "" {
			rec.Checksum = cryptox.Checksum(data)
		}
		if upgraded, err := json.Marshal(rec); err == nil {
			if err := s.repo.Set(ctx, key, upgraded); err != nil {
				s.log.Warn(ctx, "failed to persist migrated record", "key", key, "error", err)
			}
		}
	}

	return data, true
}

// Get reads and deserializes the value under key. On a missing key, version
// migration failure, checksum mismatch, or any deserialization failure it
// returns def.
func Get[T any](ctx context.Context, s *Store, key string, def T) T {
	data, ok := s.payload(ctx, key)
	if !ok {
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		s.log.Error(ctx, "failed to deserialize value", "key", key, "error", err)
		return def
	}
	return v
}
