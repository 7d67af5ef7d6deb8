package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/repstats/repstats/pkg/logger"
)

// BadgerTier is the cross-session tier: an embedded badger store whose
// entries carry a native TTL matching the manager's validity window.
// Every operation degrades to a miss on failure; a broken disk must
// never break a query (the in-memory tiers stay authoritative).
type BadgerTier struct {
	db  *badger.DB
	ttl time.Duration
	log logger.Logger
}

// BadgerOption applies a configuration option to a BadgerTier.
type BadgerOption func(*BadgerTier)

// WithBadgerTTL sets the native expiry applied to each entry.
func WithBadgerTTL(ttl time.Duration) BadgerOption {
	return func(t *BadgerTier) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithBadgerLogger sets a custom logger.
func WithBadgerLogger(log logger.Logger) BadgerOption {
	return func(t *BadgerTier) {
		if log != nil {
			t.log = log
		}
	}
}

// NewBadgerTier opens the persistent tier at path. An empty path opens
// an in-memory instance, which tests use.
func NewBadgerTier(path string, opts ...BadgerOption) (*BadgerTier, error) {
	t := &BadgerTier{ttl: DefaultTTL}
	for _, opt := range opts {
		opt(t)
	}

	options := badger.DefaultOptions(path).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	if path == "" {
		options = options.WithInMemory(true)
	}

	db, err := badger.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	t.db = db
	return t, nil
}

func (t *BadgerTier) Name() string { return "persistent" }

func (t *BadgerTier) Get(ctx context.Context, key string) ([]byte, bool) {
	var value []byte
	err := t.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) && t.log != nil {
			t.log.Debug(ctx, "persistent tier read failed", logger.String("key", key), logger.Error(err))
		}
		return nil, false
	}
	return value, true
}

func (t *BadgerTier) Set(_ context.Context, key string, value []byte) error {
	return t.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value).WithTTL(t.ttl)
		return txn.SetEntry(entry)
	})
}

func (t *BadgerTier) Delete(_ context.Context, key string) error {
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Clear drops all entries.
func (t *BadgerTier) Clear(ctx context.Context) {
	if err := t.db.DropAll(); err != nil && t.log != nil {
		t.log.Debug(ctx, "persistent tier clear failed", logger.Error(err))
	}
}

// Close flushes and closes the underlying store.
func (t *BadgerTier) Close() error {
	return t.db.Close()
}
