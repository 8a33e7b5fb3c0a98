package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hengadev/recordseal/internal/sealerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// entryStore is the contract shared by both backends.
type entryStore interface {
	Append(ctx context.Context, e Entry) (string, error)
	Latest(ctx context.Context, identifier string) (Entry, error)
	Count(ctx context.Context, identifier string) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

func backends(t *testing.T) map[string]func(t *testing.T) entryStore {
	t.Helper()
	return map[string]func(t *testing.T) entryStore{
		"sqlite": func(t *testing.T) entryStore {
			s, err := OpenSQLite(filepath.Join(t.TempDir(), "entries.db"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
		"badger": func(t *testing.T) entryStore {
			s, err := OpenBadger(BadgerConfig{Dir: t.TempDir()})
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		},
	}
}

func TestStore_AppendAndLatest(t *testing.T) {
	ctx := context.Background()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)

			first, err := s.Append(ctx, Entry{
				Identifier:  "H001",
				Fingerprint: "aaa",
				Ciphertext:  []byte{1, 2, 3},
				Suite:       "aes-256-gcm",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, first)

			second, err := s.Append(ctx, Entry{
				Identifier:  "H001",
				Fingerprint: "bbb",
				Ciphertext:  []byte{4, 5, 6},
				Suite:       "aes-256-gcm",
			})
			require.NoError(t, err)
			assert.NotEqual(t, first, second)

			_, err = s.Append(ctx, Entry{Identifier: "H002", Fingerprint: "ccc", Ciphertext: []byte{7}, Suite: "aes-256-gcm"})
			require.NoError(t, err)

			latest, err := s.Latest(ctx, "H001")
			require.NoError(t, err)
			assert.Equal(t, second, latest.ID)
			assert.Equal(t, "H001", latest.Identifier)
			assert.Equal(t, "bbb", latest.Fingerprint)
			assert.Equal(t, []byte{4, 5, 6}, latest.Ciphertext)
			assert.False(t, latest.CreatedAt.IsZero())

			n, err := s.Count(ctx, "H001")
			require.NoError(t, err)
			assert.Equal(t, 2, n)
		})
	}
}

func TestStore_LatestNotFound(t *testing.T) {
	ctx := context.Background()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_, err := s.Latest(ctx, "missing")
			assert.ErrorIs(t, err, sealerr.ErrNotFound)
		})
	}
}

func TestStore_IdentifierPrefixesDoNotCollide(t *testing.T) {
	ctx := context.Background()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			_, err := s.Append(ctx, Entry{Identifier: "H01", Fingerprint: "long", Ciphertext: []byte{1}, Suite: "aes-256-gcm"})
			require.NoError(t, err)

			_, err = s.Latest(ctx, "H0")
			assert.ErrorIs(t, err, sealerr.ErrNotFound)
		})
	}
}

func TestStore_DuplicateEntryID(t *testing.T) {
	ctx := context.Background()

	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			e := Entry{ID: "fixed-id", Identifier: "H001", Fingerprint: "aaa", Ciphertext: []byte{1}, Suite: "aes-256-gcm"}
			id, err := s.Append(ctx, e)
			require.NoError(t, err)
			assert.Equal(t, "fixed-id", id)

			_, err = s.Append(ctx, e)
			assert.ErrorIs(t, err, sealerr.ErrStorageUnavailable)
		})
	}
}

func TestStore_Ping(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, open(t).Ping(context.Background()))
		})
	}
}
