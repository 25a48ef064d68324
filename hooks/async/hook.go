// Package asynchook moves litecache hook calls off the cache's critical
// section onto a small worker pool. Events are dropped when the queue is full.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{EvictedEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := litecache.New[User](litecache.Options[User]{
//	    Config: litecache.Config{Path: "./users.db"},
//	    Codec:  codec.JSON[User]{},
//	    Hooks:  hooks,
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/litecache"
)

type Hooks struct {
	inner   litecache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards q against send-after-close
	closed  bool
	dropped atomic.Uint64
}

var _ litecache.Hooks = (*Hooks)(nil)

func New(inner litecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full
// or the hooks were closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) DriverSelected(d, r string) { h.try(func() { h.inner.DriverSelected(d, r) }) }
func (h *Hooks) ExpiredOnRead(k string)     { h.try(func() { h.inner.ExpiredOnRead(k) }) }
func (h *Hooks) Evicted(k, r string)        { h.try(func() { h.inner.Evicted(k, r) }) }
func (h *Hooks) SweepCompleted(n int)       { h.try(func() { h.inner.SweepCompleted(n) }) }
func (h *Hooks) SelfHeal(k, r string)       { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) StorageError(op, k string, err error) {
	h.try(func() { h.inner.StorageError(op, k, err) })
}
