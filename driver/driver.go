// Package driver defines the storage abstraction used by litecache.
//
// A Driver is a durable key/value table holding one row per key with the value
// and its createdAt/expiresAt/accessedAt timestamps. Drivers never interpret
// expiry: Get returns an entry even when it has logically expired, and the
// cache decides what that means.
//
// Implementations must be byte-for-byte transparent for values: Get returns
// exactly the bytes previously passed to Put for the same key.
package driver

import (
	"context"
	"iter"
	"time"
)

// Kind names a concrete driver implementation.
type Kind string

const (
	// KindNative is SQLite through the cgo binding (mattn/go-sqlite3).
	KindNative Kind = "native"
	// KindFallback is SQLite compiled to pure Go (modernc.org/sqlite).
	KindFallback Kind = "fallback"
	// KindMemory is the in-process adapter, mostly useful in tests.
	KindMemory Kind = "memory"
)

func (k Kind) String() string { return string(k) }

// Entry is a stored row. Timestamps have millisecond precision.
type Entry struct {
	Key        string
	Value      []byte
	CreatedAt  time.Time
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// Driver is the narrow storage surface the cache depends on.
// Callers serialize access; implementations need not be safe for concurrent use
// beyond what their engine provides.
type Driver interface {
	Kind() Kind

	// Put upserts e, overwriting any existing row for e.Key.
	Put(ctx context.Context, e Entry) error

	// Get returns (entry, true, nil) on hit and (Entry{}, false, nil) on miss.
	// Expired rows are returned as-is.
	Get(ctx context.Context, key string) (Entry, bool, error)

	// Touch records a read of key at the given time. Missing keys are ignored.
	Touch(ctx context.Context, key string, at time.Time) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// ListExpired yields every key whose expiresAt <= now. Ordering is unspecified.
	// The sequence holds storage resources while it runs; do not issue other
	// calls on the same driver until iteration stops.
	ListExpired(ctx context.Context, now time.Time) iter.Seq2[string, error]

	// Scan yields metadata for every row. Entry.Value is nil.
	Scan(ctx context.Context) iter.Seq2[Entry, error]

	// Count returns the physical row count, expired rows included.
	Count(ctx context.Context) (int, error)

	// Clear removes every row.
	Clear(ctx context.Context) error

	Close() error
}

// Millis converts t to the unix-millisecond representation used in storage.
func Millis(t time.Time) int64 { return t.UnixMilli() }

// FromMillis is the inverse of Millis.
func FromMillis(ms int64) time.Time { return time.UnixMilli(ms) }
