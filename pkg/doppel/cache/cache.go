// Package cache provides a persistent digest cache for the doppel duplicate
// detector, backed by Badger. A cached digest is only trusted while the
// file's size and modification time match the values recorded when the
// digest was computed; anything else is treated as a miss. The cache is an
// I/O optimization for repeat scans and never influences grouping semantics.
package cache

import (
	"errors"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v4"

	"github.com/doppelkit/doppel/pkg/doppel/types"
)

// ErrNotFound is returned when no valid cache entry exists for a path.
var ErrNotFound = errors.New("cache entry not found")

// Cache wraps Badger for digest caching.
type Cache struct {
	db *badger.DB
}

// DefaultPath returns the default cache location under $XDG_CACHE_HOME.
func DefaultPath() string {
	return filepath.Join(xdg.CacheHome, "doppel", "digests")
}

// Open opens or creates a cache at the given path.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Badger's own logging is noise here

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached digest for path if the stored size and mtime
// match the current values exactly. A stale entry is a miss, not an error.
func (c *Cache) Lookup(path string, size, mtime int64) (types.Digest, error) {
	var entry Entry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(MakeKey(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.Decode)
	})
	if err != nil {
		return types.Digest{}, err
	}

	if entry.Size != size || entry.Mtime != mtime {
		return types.Digest{}, ErrNotFound
	}

	return entry.Digest, nil
}

// Store records a freshly computed digest for path.
func (c *Cache) Store(path string, size, mtime int64, digest types.Digest) error {
	entry := Entry{Size: size, Mtime: mtime, Digest: digest}
	value, err := entry.Encode()
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(MakeKey(path), value)
	})
}

// StoreBatch records multiple digests in a single write batch.
func (c *Cache) StoreBatch(entries map[string]Entry) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for path, entry := range entries {
		value, err := entry.Encode()
		if err != nil {
			return err
		}
		if err := wb.Set(MakeKey(path), value); err != nil {
			return err
		}
	}

	return wb.Flush()
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	return c.db.DropAll()
}
