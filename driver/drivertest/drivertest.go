// Package drivertest checks that a driver.Driver honors the storage contract
// the cache relies on. Adapters call Run from their own tests.
package drivertest

import (
	"bytes"
	"context"
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/unkn0wn-root/litecache/driver"
)

// Opener returns a fresh, empty driver. It is called once per subtest.
type Opener func(t *testing.T) driver.Driver

var base = time.UnixMilli(1_700_000_000_000)

func entry(key, value string, created time.Time, ttl time.Duration) driver.Entry {
	return driver.Entry{
		Key:        key,
		Value:      []byte(value),
		CreatedAt:  created,
		ExpiresAt:  created.Add(ttl),
		AccessedAt: created,
	}
}

func open(t *testing.T, o Opener) driver.Driver {
	t.Helper()
	d := o(t)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func mustPut(t *testing.T, d driver.Driver, e driver.Entry) {
	t.Helper()
	if err := d.Put(context.Background(), e); err != nil {
		t.Fatalf("Put(%q): %v", e.Key, err)
	}
}

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for v, err := range seq {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		out = append(out, v)
	}
	return out
}

// Run exercises put/get/touch/delete/listExpired/scan/count/clear.
func Run(t *testing.T, o Opener) {
	ctx := context.Background()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		d := open(t, o)
		in := entry("a", "alpha", base, time.Minute)
		mustPut(t, d, in)

		got, ok, err := d.Get(ctx, "a")
		if err != nil || !ok {
			t.Fatalf("Get: ok=%v err=%v", ok, err)
		}
		if !bytes.Equal(got.Value, in.Value) {
			t.Fatalf("value: got %q want %q", got.Value, in.Value)
		}
		if !got.CreatedAt.Equal(in.CreatedAt) || !got.ExpiresAt.Equal(in.ExpiresAt) || !got.AccessedAt.Equal(in.AccessedAt) {
			t.Fatalf("timestamps: got %+v want %+v", got, in)
		}
	})

	t.Run("GetMiss", func(t *testing.T) {
		d := open(t, o)
		if _, ok, err := d.Get(ctx, "nope"); err != nil || ok {
			t.Fatalf("Get miss: ok=%v err=%v", ok, err)
		}
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		d := open(t, o)
		mustPut(t, d, entry("k", "one", base, time.Minute))
		mustPut(t, d, entry("k", "two", base.Add(time.Second), time.Hour))

		got, ok, err := d.Get(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("Get: ok=%v err=%v", ok, err)
		}
		if string(got.Value) != "two" || !got.ExpiresAt.Equal(base.Add(time.Second+time.Hour)) {
			t.Fatalf("overwrite not applied: %+v", got)
		}
		if n, err := d.Count(ctx); err != nil || n != 1 {
			t.Fatalf("Count: n=%d err=%v", n, err)
		}
	})

	t.Run("GetReturnsExpired", func(t *testing.T) {
		d := open(t, o)
		mustPut(t, d, entry("old", "v", base.Add(-time.Hour), time.Millisecond))
		if _, ok, err := d.Get(ctx, "old"); err != nil || !ok {
			t.Fatalf("expired rows must still be returned: ok=%v err=%v", ok, err)
		}
	})

	t.Run("Touch", func(t *testing.T) {
		d := open(t, o)
		mustPut(t, d, entry("k", "v", base, time.Minute))
		at := base.Add(5 * time.Second)
		if err := d.Touch(ctx, "k", at); err != nil {
			t.Fatalf("Touch: %v", err)
		}
		got, _, err := d.Get(ctx, "k")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if !got.AccessedAt.Equal(at) {
			t.Fatalf("AccessedAt: got %v want %v", got.AccessedAt, at)
		}
		if string(got.Value) != "v" {
			t.Fatalf("Touch changed value: %q", got.Value)
		}
		if err := d.Touch(ctx, "missing", at); err != nil {
			t.Fatalf("Touch missing: %v", err)
		}
	})

	t.Run("DeleteIdempotent", func(t *testing.T) {
		d := open(t, o)
		mustPut(t, d, entry("k", "v", base, time.Minute))
		for i := 0; i < 2; i++ {
			if err := d.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete #%d: %v", i+1, err)
			}
		}
		if _, ok, _ := d.Get(ctx, "k"); ok {
			t.Fatalf("key still present after Delete")
		}
	})

	t.Run("ListExpired", func(t *testing.T) {
		d := open(t, o)
		now := base.Add(time.Minute)
		mustPut(t, d, entry("gone", "v", base, time.Second))
		mustPut(t, d, entry("edge", "v", base, time.Minute)) // expiresAt == now
		mustPut(t, d, entry("live", "v", base, time.Hour))

		keys := collect(t, d.ListExpired(ctx, now))
		slices.Sort(keys)
		if !slices.Equal(keys, []string{"edge", "gone"}) {
			t.Fatalf("ListExpired = %v", keys)
		}
	})

	t.Run("ListExpiredStopsEarly", func(t *testing.T) {
		d := open(t, o)
		for _, k := range []string{"a", "b", "c"} {
			mustPut(t, d, entry(k, "v", base, time.Second))
		}
		n := 0
		for _, err := range d.ListExpired(ctx, base.Add(time.Hour)) {
			if err != nil {
				t.Fatalf("ListExpired: %v", err)
			}
			n++
			break
		}
		if n != 1 {
			t.Fatalf("expected to stop after one key, got %d", n)
		}
		// the driver must be usable after an early stop
		if _, err := d.Count(ctx); err != nil {
			t.Fatalf("Count after early stop: %v", err)
		}
	})

	t.Run("ScanMetadata", func(t *testing.T) {
		d := open(t, o)
		mustPut(t, d, entry("x", "1", base, time.Minute))
		mustPut(t, d, entry("y", "2", base.Add(time.Millisecond), time.Minute))

		got := collect(t, d.Scan(ctx))
		if len(got) != 2 {
			t.Fatalf("Scan returned %d entries", len(got))
		}
		keys := []string{got[0].Key, got[1].Key}
		slices.Sort(keys)
		if !slices.Equal(keys, []string{"x", "y"}) {
			t.Fatalf("Scan keys = %v", keys)
		}
		for _, e := range got {
			if e.ExpiresAt.IsZero() || e.CreatedAt.IsZero() {
				t.Fatalf("Scan dropped timestamps: %+v", e)
			}
		}
	})

	t.Run("CountAndClear", func(t *testing.T) {
		d := open(t, o)
		for _, k := range []string{"a", "b", "c"} {
			mustPut(t, d, entry(k, "v", base, time.Minute))
		}
		if n, err := d.Count(ctx); err != nil || n != 3 {
			t.Fatalf("Count: n=%d err=%v", n, err)
		}
		if err := d.Clear(ctx); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if n, err := d.Count(ctx); err != nil || n != 0 {
			t.Fatalf("Count after Clear: n=%d err=%v", n, err)
		}
	})
}
