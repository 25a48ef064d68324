package ristretto

import (
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/litecache/hot"
)

type Tier struct {
	c *rc.Cache
}

var _ hot.Tier = (*Tier)(nil)

type Config struct {
	NumCounters int64 // ~10x the expected number of hot keys
	MaxCost     int64 // budget in bytes; cost of an entry is its length
	BufferItems int64 // 64 is the upstream recommendation
	Metrics     bool
}

func New(cfg Config) (*Tier, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Tier{c: c}, nil
}

func (t *Tier) Get(key string) ([]byte, bool) {
	v, ok := t.c.Get(key)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	if b == nil {
		t.c.Del(key)
		return nil, false
	}
	return b, true
}

func (t *Tier) Set(key string, value []byte, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return t.c.SetWithTTL(key, value, int64(len(value)), ttl)
}

func (t *Tier) Del(key string) { t.c.Del(key) }

func (t *Tier) Clear() { t.c.Clear() }

// Wait blocks until buffered writes are applied. Useful in tests.
func (t *Tier) Wait() { t.c.Wait() }

func (t *Tier) Close() {
	t.c.Wait()
	t.c.Close()
}

// Metrics exposes ristretto counters; nil unless Config.Metrics was set.
func (t *Tier) Metrics() *rc.Metrics { return t.c.Metrics }
