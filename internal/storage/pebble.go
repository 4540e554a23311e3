package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

// Key namespaces (simulating the data types of the logical store)
const (
	PrefixHash       = "h:"
	PrefixString     = "s:"
	PrefixListLength = "n:"
	PrefixListItem   = "l:"
)

// keySep separates a logical key from a hash field or list position
const keySep = 0x00

const defaultCacheSize = 512 << 20

// Options configures the Pebble database
type Options struct {
	CacheSize int64  // block cache size in bytes, defaults to 512MB
	NoSync    bool   // skip fsync on every write; call Sync() at checkpoints
	FS        vfs.FS // filesystem override, nil means the OS filesystem
}

// PebbleDB wraps the Pebble database and exposes hash, string and list
// operations on top of its flat keyspace
type PebbleDB struct {
	db     *pebble.DB
	noSync bool

	prim stripedLock // serializes read-then-write primitives (HSetNX, RPush, HDel)
	keys stripedLock // single-writer sections handed out by Lock
}

// NewPebbleDB creates a new PebbleDB instance
func NewPebbleDB(path string, opts Options) (*PebbleDB, error) {
	if opts.FS == nil {
		// Ensure directory exists
		if err := os.MkdirAll(path, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache := pebble.NewCache(cacheSize)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: 500,
		FS:           opts.FS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &PebbleDB{db: db, noSync: opts.NoSync}, nil
}

// NewMemPebbleDB opens a PebbleDB backed by an in-memory filesystem
func NewMemPebbleDB() (*PebbleDB, error) {
	return NewPebbleDB("", Options{CacheSize: 8 << 20, FS: vfs.NewMem()})
}

// Close closes the database
func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// Sync forces a flush to disk. Use this at checkpoints when NoSync is set.
func (p *PebbleDB) Sync() error {
	return p.db.Flush()
}

// writeOptions returns the appropriate write options based on sync mode
func (p *PebbleDB) writeOptions() *pebble.WriteOptions {
	if p.noSync {
		return pebble.NoSync
	}
	return pebble.Sync
}

// get retrieves a raw value, returning nil if the key does not exist
func (p *PebbleDB) get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer closer.Close()

	// Copy the value since it's only valid until closer.Close()
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *PebbleDB) set(key, value []byte) error {
	return p.db.Set(key, value, p.writeOptions())
}

// scan calls fn for every key within [lower, upper). Key and value are only
// valid for the duration of the call.
func (p *PebbleDB) scan(lower, upper []byte, fn func(key, value []byte) error) error {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return err
	}

	for iter.First(); iter.Valid(); iter.Next() {
		if err := fn(iter.Key(), iter.Value()); err != nil {
			_ = iter.Close()
			return err
		}
	}
	if err := iter.Error(); err != nil {
		_ = iter.Close()
		return err
	}
	return iter.Close()
}

// scanPrefix calls fn for every key starting with prefix
func (p *PebbleDB) scanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return p.scan(prefix, prefixUpperBound(prefix), fn)
}

// prefixUpperBound returns the upper bound for prefix iteration
func prefixUpperBound(prefix []byte) []byte {
	if len(prefix) == 0 {
		return nil
	}
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		if upper[i] < 0xff {
			upper[i]++
			return upper[:i+1]
		}
	}
	return nil
}
