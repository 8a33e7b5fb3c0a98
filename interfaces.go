package recordseal

import (
	"context"

	"github.com/hengadev/recordseal/internal/store"
)

// Source supplies record bytes by name and accepts the artifacts produced by
// Process. Get returns an error wrapping ErrNotFound when name does not exist.
//
// Implementations: source.Dir for a local directory and providers/s3.Bucket for
// an S3 bucket.
type Source interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
}

// Entry is one persisted sealing of a record.
type Entry = store.Entry

// RecordStore is the append-only log of sealed records.
//
// Append returns the id of the new entry. Latest returns the most recently
// appended entry for identifier, or an error wrapping ErrNotFound. Count
// returns how many entries exist for identifier.
type RecordStore interface {
	Append(ctx context.Context, entry Entry) (string, error)
	Latest(ctx context.Context, identifier string) (Entry, error)
	Count(ctx context.Context, identifier string) (int, error)
	Close() error
}

// KeyStore keeps encryption keys for pipelines configured with persist_key.
// GetKey returns an error wrapping ErrKeyUnavailable when no key exists.
// DeleteKey removes the key of an entry that was never appended; deleting a
// missing key is not an error.
type KeyStore interface {
	PutKey(ctx context.Context, entryID, identifier string, key []byte) error
	GetKey(ctx context.Context, entryID string) ([]byte, error)
	DeleteKey(ctx context.Context, entryID string) error
}
