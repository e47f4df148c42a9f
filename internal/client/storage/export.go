package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/smforson1/book-bite-sub000/internal/common"
	"github.com/smforson1/book-bite-sub000/internal/dbx"
	"github.com/smforson1/book-bite-sub000/internal/timex"
)

// Archive is a full-database dump: every stored record envelope keyed as on
// disk, tagged with the export instant and the exporting build's version.
type Archive struct {
	ExportedAt string                     `json:"exportedAt"`
	Version    string                     `json:"version"`
	Entries    map[string]json.RawMessage `json:"entries"`
}

// ExportAll dumps the entire database into a single blob, used for backups
// and by the sync engine's snapshot feature.
func (s *Store) ExportAll(ctx context.Context) ([]byte, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	arch := Archive{
		ExportedAt: timex.EncodeTime(time.Now()),
		Version:    s.version,
		Entries:    make(map[string]json.RawMessage, len(all)),
	}
	for k, v := range all {
		arch.Entries[k] = json.RawMessage(v)
	}

	return json.Marshal(arch)
}

// ImportAll replaces the database contents with the archive's entries.
// Unlike the other store operations it is not total: a malformed blob is
// rejected with common.ErrMalformedArchive and nothing is written. The write
// itself is transactional.
func (s *Store) ImportAll(ctx context.Context, blob []byte) error {
	var arch Archive
	if err := json.Unmarshal(blob, &arch); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedArchive, err)
	}
	if arch.Entries == nil {
		return fmt.Errorf("%w: missing entries", common.ErrMalformedArchive)
	}

	// Every entry must at least parse as a record envelope.
	for key, raw := range arch.Entries {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("%w: entry %q: %v", common.ErrMalformedArchive, key, err)
		}
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		for key, raw := range arch.Entries {
			if err := repo.Set(ctx, key, raw); err != nil {
				return err
			}
		}
		return nil
	})
}
