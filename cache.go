package litecache

import (
	"bytes"
	"context"
	"sync"
	"time"

	c "github.com/unkn0wn-root/litecache/codec"
	"github.com/unkn0wn-root/litecache/driver"
	"github.com/unkn0wn-root/litecache/driver/fallback"
	"github.com/unkn0wn-root/litecache/driver/native"
	"github.com/unkn0wn-root/litecache/eviction"
	"github.com/unkn0wn-root/litecache/hot"
	"github.com/unkn0wn-root/litecache/internal/wire"
	"github.com/unkn0wn-root/litecache/selector"
)

type cache[V any] struct {
	codec c.Codec[V]
	log   Logger
	hooks Hooks
	clock func() time.Time

	max           int
	ttl           time.Duration
	sweepInterval time.Duration

	// mu guards everything below and is held across every driver call,
	// including inline eviction, so concurrent inserts cannot both see room.
	mu     sync.Mutex
	drv    driver.Driver
	hot    hot.Tier
	index  map[string]eviction.Entry
	seq    uint64 // generation; bumped on every put
	closed bool

	// background sweep
	stopCh    chan struct{}
	closeWg   sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

func newCache[V any](opts Options[V]) (*cache[V], error) {
	cfg := opts.Config.withDefaults()
	if err := cfg.validate(opts.Driver == nil); err != nil {
		return nil, err
	}
	if opts.Codec == nil {
		return nil, &ConfigurationError{Field: "codec", Reason: "required"}
	}

	log := opts.Logger
	if log == nil && cfg.Log.Enabled {
		zl, err := newZapLogger(cfg.Log)
		if err != nil {
			return nil, &ConfigurationError{Field: "log", Reason: "cannot build logger", Err: err}
		}
		log = zl
	}

	cc := &cache[V]{
		codec:         opts.Codec,
		log:           coalesce[Logger](log, NopLogger{}),
		hooks:         coalesce[Hooks](opts.Hooks, NopHooks{}),
		clock:         opts.Now,
		max:           cfg.Max,
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		hot:           opts.Hot,
		index:         make(map[string]eviction.Entry),
	}
	if cc.clock == nil {
		cc.clock = time.Now
	}

	cc.log.Info("cache configured", Fields{
		"path":           cfg.Path,
		"max":            cfg.Max,
		"ttl":            cfg.TTL.String(),
		"sweep_interval": cfg.SweepInterval.String(),
	})

	drv := opts.Driver
	if drv == nil {
		caps := selector.Probe()
		if opts.Capabilities != nil {
			caps = *opts.Capabilities
		}
		dec, err := selector.Select(cfg.Driver, caps)
		if err != nil {
			cc.log.Error("driver selection failed", Fields{"driver": cfg.Driver, "err": err})
			if !selector.Known(cfg.Driver) {
				return nil, &ConfigurationError{Field: "driver", Reason: "unknown driver", Err: err}
			}
			return nil, err
		}
		cc.log.Info("driver selected", Fields{"driver": dec.Kind.String(), "reason": dec.Reason, "explicit": dec.Explicit})
		cc.hooks.DriverSelected(dec.Kind.String(), dec.Reason)

		drv, err = openDriver(dec.Kind, cfg.Path)
		if err != nil {
			cc.log.Error("storage open failed", Fields{"driver": dec.Kind.String(), "path": cfg.Path, "err": err})
			return nil, err
		}
	} else {
		cc.log.Info("driver provided", Fields{"driver": drv.Kind().String()})
		cc.hooks.DriverSelected(drv.Kind().String(), "provided by caller")
	}
	cc.drv = drv

	if err := cc.loadIndex(context.Background()); err != nil {
		_ = drv.Close()
		return nil, err
	}

	if cc.sweepInterval > 0 {
		cc.stopCh = make(chan struct{})
		cc.closeWg.Add(1)
		go cc.sweepLoop()
	}
	return cc, nil
}

func openDriver(kind driver.Kind, path string) (driver.Driver, error) {
	switch kind {
	case driver.KindNative:
		d, err := native.Open(path)
		if err != nil {
			return nil, err
		}
		return d, nil
	default:
		d, err := fallback.Open(path)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
}

// loadIndex rebuilds entry metadata from rows left by a previous process.
func (cc *cache[V]) loadIndex(ctx context.Context) error {
	for e, err := range cc.drv.Scan(ctx) {
		if err != nil {
			return err
		}
		cc.seq++
		cc.index[e.Key] = metaOf(e, cc.seq)
	}
	if n := len(cc.index); n > 0 {
		cc.log.Info("loaded existing entries", Fields{"count": n})
	}
	return nil
}

func metaOf(e driver.Entry, seq uint64) eviction.Entry {
	return eviction.Entry{
		Key:        e.Key,
		CreatedAt:  e.CreatedAt,
		ExpiresAt:  e.ExpiresAt,
		AccessedAt: e.AccessedAt,
		Seq:        seq,
	}
}

// now is the clock truncated to storage precision.
func (cc *cache[V]) now() time.Time {
	return time.UnixMilli(cc.clock().UnixMilli())
}

func (cc *cache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var zero V
	raw, gen, ok, err := cc.lookup(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := cc.codec.Decode(raw)
	if err != nil {
		cc.selfHeal(ctx, key, gen, "value_decode", err)
		return zero, false, nil
	}
	return v, true, nil
}

// Has decodes the value too, so an entry Get would self-heal is reported
// absent here as well.
func (cc *cache[V]) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := cc.Get(ctx, key)
	return ok, err
}

// lookup returns the stored bytes for key and the generation they belong to.
// Expired rows are deleted and reported as a miss.
func (cc *cache[V]) lookup(ctx context.Context, key string) ([]byte, uint64, bool, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return nil, 0, false, ErrClosed
	}
	now := cc.now()

	meta, indexed := cc.index[key]
	if cc.hot != nil && indexed && !eviction.Expired(meta, now) {
		if b, ok := cc.hot.Get(key); ok {
			gen, payload, err := wire.DecodeHot(b)
			if err == nil && gen == meta.Seq {
				if err := cc.touchLocked(ctx, meta, now); err != nil {
					return nil, 0, false, err
				}
				return bytes.Clone(payload), meta.Seq, true, nil
			}
			cc.hot.Del(key)
		}
	}

	e, found, err := cc.drv.Get(ctx, key)
	if err != nil {
		cc.storageError("get", key, err)
		return nil, 0, false, err
	}
	if !found {
		if indexed {
			cc.forgetLocked(key)
		}
		return nil, 0, false, nil
	}

	if !e.ExpiresAt.After(now) {
		if err := cc.drv.Delete(ctx, key); err != nil {
			cc.storageError("delete", key, err)
			return nil, 0, false, err
		}
		cc.forgetLocked(key)
		cc.log.Debug("expired on read", Fields{"key": key})
		cc.hooks.ExpiredOnRead(key)
		return nil, 0, false, nil
	}

	seq := meta.Seq
	if !indexed {
		// row we have no metadata for (written by another handle); adopt it
		cc.seq++
		seq = cc.seq
	}
	meta = metaOf(e, seq)
	if err := cc.touchLocked(ctx, meta, now); err != nil {
		return nil, 0, false, err
	}
	cc.seedHotLocked(key, seq, e.Value, e.ExpiresAt, now)
	return e.Value, seq, true, nil
}

// touchLocked persists the access time, then records meta in the index.
func (cc *cache[V]) touchLocked(ctx context.Context, meta eviction.Entry, now time.Time) error {
	if err := cc.drv.Touch(ctx, meta.Key, now); err != nil {
		cc.storageError("touch", meta.Key, err)
		return err
	}
	meta.AccessedAt = now
	cc.index[meta.Key] = meta
	return nil
}

func (cc *cache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if ttl < 0 {
		return &ConfigurationError{Field: "ttl", Reason: "must not be negative"}
	}
	if ttl == 0 {
		ttl = cc.ttl
	}
	payload, err := cc.codec.Encode(value)
	if err != nil {
		return err
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return ErrClosed
	}
	now := cc.now()

	var victims []eviction.Victim
	if _, exists := cc.index[key]; !exists && eviction.ShouldEvictOnInsert(len(cc.index), cc.max) {
		victims = cc.victimsLocked(now)
	}

	expiresAt := time.UnixMilli(now.Add(ttl).UnixMilli())
	if !expiresAt.After(now) {
		expiresAt = now.Add(time.Millisecond)
	}
	e := driver.Entry{Key: key, Value: payload, CreatedAt: now, ExpiresAt: expiresAt, AccessedAt: now}
	// put before evicting: a failed put must not cost the victims
	if err := cc.drv.Put(ctx, e); err != nil {
		cc.storageError("put", key, err)
		return err
	}
	cc.seq++
	meta := metaOf(e, cc.seq)

	if err := cc.evictLocked(ctx, victims); err != nil {
		// victims was only non-empty for a new key, so undoing is a delete
		if derr := cc.drv.Delete(ctx, key); derr != nil {
			cc.storageError("delete", key, derr)
			cc.index[key] = meta // still stored; keep the index honest
		}
		return err
	}
	cc.index[key] = meta
	cc.seedHotLocked(key, cc.seq, payload, expiresAt, now)
	return nil
}

// victimsLocked picks the entries to remove so one more fits.
func (cc *cache[V]) victimsLocked(now time.Time) []eviction.Victim {
	entries := make([]eviction.Entry, 0, len(cc.index))
	for _, e := range cc.index {
		entries = append(entries, e)
	}
	return eviction.PickVictims(entries, cc.max-1, now)
}

func (cc *cache[V]) evictLocked(ctx context.Context, victims []eviction.Victim) error {
	var expired, capacity int
	for _, v := range victims {
		if err := cc.drv.Delete(ctx, v.Key); err != nil {
			cc.storageError("delete", v.Key, err)
			return err
		}
		cc.forgetLocked(v.Key)
		cc.hooks.Evicted(v.Key, string(v.Reason))
		if v.Reason == eviction.ReasonExpired {
			expired++
		} else {
			capacity++
		}
	}
	if len(victims) > 0 {
		cc.log.Info("evicted entries", Fields{"expired": expired, "capacity": capacity})
	}
	return nil
}

func (cc *cache[V]) Delete(ctx context.Context, key string) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return ErrClosed
	}
	if err := cc.drv.Delete(ctx, key); err != nil {
		cc.storageError("delete", key, err)
		return err
	}
	cc.forgetLocked(key)
	return nil
}

func (cc *cache[V]) Clear(ctx context.Context) error {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return ErrClosed
	}
	if err := cc.drv.Clear(ctx); err != nil {
		cc.storageError("clear", "", err)
		return err
	}
	n := len(cc.index)
	cc.index = make(map[string]eviction.Entry)
	if cc.hot != nil {
		cc.hot.Clear()
	}
	cc.log.Info("cache cleared", Fields{"removed": n})
	return nil
}

func (cc *cache[V]) Stats(ctx context.Context) (Stats, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return Stats{}, ErrClosed
	}
	stored, err := cc.drv.Count(ctx)
	if err != nil {
		cc.storageError("count", "", err)
		return Stats{}, err
	}
	now := cc.now()
	live := 0
	for _, e := range cc.index {
		if !eviction.Expired(e, now) {
			live++
		}
	}
	return Stats{Count: live, Stored: stored, Max: cc.max, TTL: cc.ttl, Driver: cc.drv.Kind()}, nil
}

func (cc *cache[V]) SweepExpired(ctx context.Context) (int, error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return 0, ErrClosed
	}
	now := cc.now()

	// drain first: SQL drivers hold their only connection while iterating
	var keys []string
	for key, err := range cc.drv.ListExpired(ctx, now) {
		if err != nil {
			cc.storageError("list_expired", "", err)
			return 0, err
		}
		keys = append(keys, key)
	}

	removed := 0
	for _, key := range keys {
		if err := cc.drv.Delete(ctx, key); err != nil {
			cc.storageError("delete", key, err)
			return removed, err
		}
		cc.forgetLocked(key)
		removed++
	}
	if removed > 0 {
		cc.log.Info("swept expired entries", Fields{"removed": removed})
	}
	cc.hooks.SweepCompleted(removed)
	return removed, nil
}

func (cc *cache[V]) Close(_ context.Context) error {
	cc.closeOnce.Do(func() {
		if cc.stopCh != nil {
			close(cc.stopCh)
			cc.closeWg.Wait()
		}

		cc.mu.Lock()
		defer cc.mu.Unlock()
		cc.closed = true
		if cc.hot != nil {
			cc.hot.Close()
		}
		cc.closeErr = cc.drv.Close()
		cc.log.Info("cache closed", Fields{"entries": len(cc.index)})
		if s, ok := cc.log.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	})
	return cc.closeErr
}

func (cc *cache[V]) sweepLoop() {
	defer cc.closeWg.Done()
	ticker := time.NewTicker(cc.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := cc.SweepExpired(context.Background()); err != nil {
				cc.log.Warn("background sweep failed", Fields{"err": err})
			}
		case <-cc.stopCh:
			return
		}
	}
}

// selfHeal deletes an entry whose payload the codec rejected, unless it was
// rewritten since it was read.
func (cc *cache[V]) selfHeal(ctx context.Context, key string, gen uint64, reason string, cause error) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if cc.closed {
		return
	}
	if meta, ok := cc.index[key]; !ok || meta.Seq != gen {
		return
	}
	if err := cc.drv.Delete(ctx, key); err != nil {
		cc.storageError("delete", key, err)
		return
	}
	cc.forgetLocked(key)
	cc.log.Warn("deleted unreadable entry", Fields{"key": key, "reason": reason, "err": cause})
	cc.hooks.SelfHeal(key, reason)
}

func (cc *cache[V]) forgetLocked(key string) {
	delete(cc.index, key)
	if cc.hot != nil {
		cc.hot.Del(key)
	}
}

func (cc *cache[V]) seedHotLocked(key string, gen uint64, payload []byte, expiresAt, now time.Time) {
	if cc.hot == nil {
		return
	}
	cc.hot.Set(key, wire.EncodeHot(gen, payload), expiresAt.Sub(now))
}

func (cc *cache[V]) storageError(op, key string, err error) {
	cc.log.Warn("storage call failed", Fields{"op": op, "key": key, "err": err})
	cc.hooks.StorageError(op, key, err)
}
