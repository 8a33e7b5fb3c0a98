package store

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/hengadev/recordseal/internal/reliability"
	"github.com/hengadev/recordseal/internal/sealerr"
	"github.com/sirupsen/logrus"
)

const (
	entryPrefix   = "entry/"
	entryIDPrefix = "entryid/"
	sequenceKey   = "seq/entries"
)

// BadgerConfig configures a Badger backed store.
type BadgerConfig struct {
	// Dir is the database directory. Empty means in-memory.
	Dir    string
	Logger *logrus.Logger
}

// Badger is an entry store backed by an embedded Badger database.
// Entry keys are entry/<hex identifier>/<sequence>, so a reverse prefix scan
// yields the latest entry for an identifier.
type Badger struct {
	db  *badger.DB
	seq *badger.Sequence
	log *logrus.Logger
}

// OpenBadger opens or creates the Badger database described by cfg.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = nil
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to open badger at '%s': %w", cfg.Dir, err))
	}

	seq, err := db.GetSequence([]byte(sequenceKey), 100)
	if err != nil {
		db.Close()
		return nil, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to lease entry sequence: %w", err))
	}

	cfg.Logger.WithField("dir", cfg.Dir).Debug("badger entry store opened")
	return &Badger{db: db, seq: seq, log: cfg.Logger}, nil
}

func identifierPrefix(identifier string) []byte {
	return []byte(entryPrefix + hex.EncodeToString([]byte(identifier)) + "/")
}

func entryKey(identifier string, seq uint64) []byte {
	key := identifierPrefix(identifier)
	return binary.BigEndian.AppendUint64(key, seq)
}

// Append stores e and returns its entry id.
func (b *Badger) Append(ctx context.Context, e Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e = e.prepare()

	n, err := b.seq.Next()
	if err != nil {
		return "", sealerr.NewStorageError(sealerr.Append, fmt.Errorf("failed to allocate sequence: %w", err))
	}

	value, err := json.Marshal(e)
	if err != nil {
		return "", sealerr.NewStorageError(sealerr.Append, fmt.Errorf("failed to encode entry: %w", err))
	}

	key := entryKey(e.Identifier, n)
	write := func(ctx context.Context) error {
		return b.db.Update(func(txn *badger.Txn) error {
			idKey := []byte(entryIDPrefix + e.ID)
			if _, err := txn.Get(idKey); err == nil {
				return fmt.Errorf("entry '%s' already exists", e.ID)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(idKey, key); err != nil {
				return err
			}
			return txn.Set(key, value)
		})
	}
	err = reliability.RetryWithConfig(ctx, write, reliability.RetryConfig{
		MaxAttempts: 5,
		ShouldRetry: func(err error, _ int) bool { return errors.Is(err, badger.ErrConflict) },
		OnRetry: func(attempt int, _ time.Duration, err error) {
			b.log.WithField("attempt", attempt).WithError(err).Debug("retrying conflicting entry write")
		},
	})
	if err != nil {
		return "", sealerr.NewStorageError(sealerr.Append, fmt.Errorf("failed to write entry for '%s': %w", e.Identifier, err))
	}
	return e.ID, nil
}

// Latest returns the most recently appended entry for identifier.
func (b *Badger) Latest(ctx context.Context, identifier string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	prefix := identifierPrefix(identifier)
	var (
		e     Entry
		found bool
	)
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append(append([]byte(nil), prefix...), 0xFF))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		value, err := it.Item().ValueCopy(nil)
		if err != nil {
			return err
		}
		found = true
		return json.Unmarshal(value, &e)
	})
	if err != nil {
		return Entry{}, sealerr.NewStorageError(sealerr.Load, fmt.Errorf("failed to read latest entry for '%s': %w", identifier, err))
	}
	if !found {
		return Entry{}, sealerr.NewNotFoundError(identifier, sealerr.Load)
	}
	return e, nil
}

// Count returns how many entries exist for identifier.
func (b *Badger) Count(ctx context.Context, identifier string) (int, error) {
	prefix := identifierPrefix(identifier)
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, sealerr.NewStorageError(sealerr.Load, err)
	}
	return n, nil
}

// Ping reports an error once the database has been closed.
func (b *Badger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.db.IsClosed() {
		return sealerr.NewStorageError(sealerr.Load, errors.New("badger database is closed"))
	}
	return nil
}

// Close releases the sequence lease and closes the database.
func (b *Badger) Close() error {
	if b.db == nil {
		return nil
	}
	if err := b.seq.Release(); err != nil {
		b.log.WithError(err).Warn("failed to release entry sequence")
	}
	return b.db.Close()
}
