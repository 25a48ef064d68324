package litecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/litecache/codec"
	"github.com/unkn0wn-root/litecache/driver"
	"github.com/unkn0wn-root/litecache/hot"
	"github.com/unkn0wn-root/litecache/selector"
)

// Cache is the public cache surface. V is the caller's value type;
// serialization is handled by a pluggable Codec[V].
// All methods are safe for concurrent use.
type Cache[V any] interface {
	// Get returns (value, true, nil) on hit. Expired entries are deleted and
	// reported as a miss.
	Get(ctx context.Context, key string) (v V, ok bool, err error)
	// Set stores value for ttl (0 => Config.TTL), evicting first if the cache is full.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// Delete is idempotent.
	Delete(ctx context.Context, key string) error
	// Has behaves like Get without returning the value. An entry whose value
	// cannot be decoded is deleted and reported absent, as Get does.
	Has(ctx context.Context, key string) (bool, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
	Stats(ctx context.Context) (Stats, error)
	// SweepExpired deletes every expired entry and returns how many were removed.
	SweepExpired(ctx context.Context) (int, error)
	Close(ctx context.Context) error
}

// Stats is a read-only snapshot.
type Stats struct {
	Count  int // live (unexpired) entries
	Stored int // physical rows, expired ones included
	Max    int
	TTL    time.Duration
	Driver driver.Kind
}

// Options configure a cache. Config and Codec are required; the rest have
// sensible defaults.
type Options[V any] struct {
	Config Config
	Codec  c.Codec[V]

	Logger Logger // nil => built from Config.Log, or NopLogger
	Hooks  Hooks  // nil => NopHooks

	// Driver, when set, is used instead of selecting and opening one from
	// Config. The cache takes ownership and closes it on Close.
	Driver driver.Driver
	// Hot is an optional in-process read tier. The cache closes it on Close.
	Hot hot.Tier
	// Capabilities overrides host probing for driver selection.
	Capabilities *selector.Capabilities
	// Now overrides the clock; mostly for tests.
	Now func() time.Time
}

func New[V any](opts Options[V]) (Cache[V], error) {
	return newCache[V](opts)
}
