package litecache

import (
	"context"
	"testing"
	"time"

	c "github.com/unkn0wn-root/litecache/codec"
	"github.com/unkn0wn-root/litecache/driver/memory"
	hr "github.com/unkn0wn-root/litecache/hot/ristretto"
	"github.com/unkn0wn-root/litecache/internal/wire"
)

func newHotCache(t *testing.T, clk *fakeClock) (Cache[string], *memory.Driver, *hr.Tier) {
	t.Helper()
	d, err := memory.New(memory.Config{})
	if err != nil {
		t.Fatal(err)
	}
	tier, err := hr.New(hr.Config{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	if err != nil {
		t.Fatal(err)
	}
	cc, err := New[string](Options[string]{
		Config: Config{Max: 4, TTL: time.Hour},
		Codec:  c.String{},
		Driver: d,
		Hot:    tier,
		Now:    clk.Now,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cc.Close(context.Background()) })
	return cc, d, tier
}

func TestHotTierServesCurrentGeneration(t *testing.T) {
	clk := newClock()
	cc, _, tier := newHotCache(t, clk)
	ctx := context.Background()

	if err := cc.Set(ctx, "k", "v1", 0); err != nil {
		t.Fatal(err)
	}
	tier.Wait()
	if v, ok, err := cc.Get(ctx, "k"); err != nil || !ok || v != "v1" {
		t.Fatalf("Get = %q %v %v", v, ok, err)
	}

	if err := cc.Set(ctx, "k", "v2", 0); err != nil {
		t.Fatal(err)
	}
	tier.Wait()
	if v, ok, err := cc.Get(ctx, "k"); err != nil || !ok || v != "v2" {
		t.Fatalf("Get after overwrite = %q %v %v", v, ok, err)
	}
}

func TestHotTierRejectsStaleGeneration(t *testing.T) {
	clk := newClock()
	cc, _, tier := newHotCache(t, clk)
	ctx := context.Background()

	if err := cc.Set(ctx, "k", "fresh", 0); err != nil {
		t.Fatal(err)
	}
	// a leftover from an older write must never be served
	tier.Set("k", wire.EncodeHot(0, []byte("stale")), time.Hour)
	tier.Wait()

	if v, ok, err := cc.Get(ctx, "k"); err != nil || !ok || v != "fresh" {
		t.Fatalf("Get = %q %v %v; want fresh", v, ok, err)
	}
}

func TestHotTierDoesNotOutliveDelete(t *testing.T) {
	clk := newClock()
	cc, d, tier := newHotCache(t, clk)
	ctx := context.Background()

	if err := cc.Set(ctx, "k", "v", 0); err != nil {
		t.Fatal(err)
	}
	tier.Wait()
	if err := cc.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cc.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("Get after Delete = %v %v", ok, err)
	}
	if n, _ := d.Count(ctx); n != 0 {
		t.Fatalf("driver still holds %d rows", n)
	}
}

func TestHotTierIgnoresExpiredIndexEntry(t *testing.T) {
	clk := newClock()
	cc, _, tier := newHotCache(t, clk)
	ctx := context.Background()

	if err := cc.Set(ctx, "k", "v", 50*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	tier.Wait()
	clk.At(50) // ristretto's own ttl uses wall time and has not fired
	if _, ok, err := cc.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expired entry served from hot tier: %v %v", ok, err)
	}
}
