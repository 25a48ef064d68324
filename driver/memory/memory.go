// Package memory provides an in-process driver backed by allegro/bigcache.
// Rows are framed with their timestamps so the driver keeps the same
// contract as the SQL adapters: nothing is dropped until the cache deletes it.
package memory

import (
	"context"
	"errors"
	"iter"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/litecache/driver"
	"github.com/unkn0wn-root/litecache/internal/wire"
)

// keep bigcache from expiring anything on its own
const lifeWindow = 100 * 365 * 24 * time.Hour

type Config struct {
	Shards             int // power of two; 0 => 16
	MaxEntriesInWindow int // sizing hint; 0 => 1024
	MaxEntrySize       int // sizing hint in bytes; 0 => 256
}

// Driver is an in-memory driver.Driver.
type Driver struct {
	c *bc.BigCache
}

var _ driver.Driver = (*Driver)(nil)

func New(cfg Config) (*Driver, error) {
	conf := bc.DefaultConfig(lifeWindow)
	conf.CleanWindow = 0
	conf.Shards = 16
	conf.MaxEntriesInWindow = 1024
	conf.MaxEntrySize = 256
	conf.Verbose = false
	conf.HardMaxCacheSize = 0 // a size cap would let bigcache drop rows on its own
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, &driver.OpenError{Driver: driver.KindMemory, Path: ":memory:", Err: err}
	}
	return &Driver{c: c}, nil
}

func (d *Driver) Kind() driver.Kind { return driver.KindMemory }

func (d *Driver) Put(_ context.Context, e driver.Entry) error {
	rec := wire.EncodeEntry(wire.Entry{
		CreatedAt:  driver.Millis(e.CreatedAt),
		ExpiresAt:  driver.Millis(e.ExpiresAt),
		AccessedAt: driver.Millis(e.AccessedAt),
		Payload:    e.Value,
	})
	return driver.Fault("put", e.Key, d.c.Set(e.Key, rec))
}

func (d *Driver) Get(_ context.Context, key string) (driver.Entry, bool, error) {
	b, err := d.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return driver.Entry{}, false, nil
	}
	if err != nil {
		return driver.Entry{}, false, driver.Fault("get", key, err)
	}
	rec, err := wire.DecodeEntry(b)
	if err != nil {
		return driver.Entry{}, false, driver.Fault("get", key, err)
	}
	return toEntry(key, rec, true), true, nil
}

func (d *Driver) Touch(_ context.Context, key string, at time.Time) error {
	b, err := d.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	if err != nil {
		return driver.Fault("touch", key, err)
	}
	rec, err := wire.DecodeEntry(b)
	if err != nil {
		return driver.Fault("touch", key, err)
	}
	rec.AccessedAt = driver.Millis(at)
	return driver.Fault("touch", key, d.c.Set(key, wire.EncodeEntry(rec)))
}

func (d *Driver) Delete(_ context.Context, key string) error {
	err := d.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return driver.Fault("delete", key, err)
}

func (d *Driver) ListExpired(_ context.Context, now time.Time) iter.Seq2[string, error] {
	cutoff := driver.Millis(now)
	return func(yield func(string, error) bool) {
		for key, rec := range d.records() {
			if rec.ExpiresAt <= cutoff && !yield(key, nil) {
				return
			}
		}
	}
}

func (d *Driver) Scan(_ context.Context) iter.Seq2[driver.Entry, error] {
	return func(yield func(driver.Entry, error) bool) {
		for key, rec := range d.records() {
			if !yield(toEntry(key, rec, false), nil) {
				return
			}
		}
	}
}

// records walks the bigcache iterator. Entries removed or overwritten while
// iterating, and records that fail to decode, are skipped.
func (d *Driver) records() iter.Seq2[string, wire.Entry] {
	return func(yield func(string, wire.Entry) bool) {
		it := d.c.Iterator()
		for it.SetNext() {
			info, err := it.Value()
			if err != nil {
				continue
			}
			rec, err := wire.DecodeEntry(info.Value())
			if err != nil {
				continue
			}
			if !yield(info.Key(), rec) {
				return
			}
		}
	}
}

func (d *Driver) Count(_ context.Context) (int, error) { return d.c.Len(), nil }

func (d *Driver) Clear(_ context.Context) error {
	return driver.Fault("clear", "", d.c.Reset())
}

func (d *Driver) Close() error { return d.c.Close() }

func toEntry(key string, rec wire.Entry, withValue bool) driver.Entry {
	e := driver.Entry{
		Key:        key,
		CreatedAt:  driver.FromMillis(rec.CreatedAt),
		ExpiresAt:  driver.FromMillis(rec.ExpiresAt),
		AccessedAt: driver.FromMillis(rec.AccessedAt),
	}
	if withValue {
		e.Value = append([]byte(nil), rec.Payload...)
	}
	return e
}
