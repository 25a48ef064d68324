// Package sloghooks reports litecache hook events through log/slog, with
// sampling for the high-volume ones and keys redacted by default.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/litecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	EvictedEvery       uint64
	ExpiredOnReadEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	evictedCtr atomic.Uint64
	expiredCtr atomic.Uint64
}

var _ litecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) DriverSelected(driver, reason string) {
	if h.l == nil {
		return
	}
	h.l.Info("litecache.driver_selected",
		"driver", driver,
		"reason", reason)
}

func (h *Hooks) ExpiredOnRead(key string) {
	if h.l == nil || !sample(h.opts.ExpiredOnReadEvery, &h.expiredCtr) {
		return
	}
	h.l.Debug("litecache.expired_on_read",
		"key", h.redact(key))
}

func (h *Hooks) Evicted(key, reason string) {
	if h.l == nil || !sample(h.opts.EvictedEvery, &h.evictedCtr) {
		return
	}
	h.l.Debug("litecache.evicted",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) SweepCompleted(removed int) {
	if h.l == nil || removed == 0 {
		return
	}
	h.l.Info("litecache.sweep_completed",
		"removed", removed)
}

func (h *Hooks) SelfHeal(key, reason string) {
	if h.l == nil {
		return
	}
	h.l.Warn("litecache.self_heal",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) StorageError(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("litecache.storage_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}
