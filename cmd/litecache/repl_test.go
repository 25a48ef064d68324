package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/litecache"
	c "github.com/unkn0wn-root/litecache/codec"
	"github.com/unkn0wn-root/litecache/driver/memory"
)

// newMemCache returns a cache whose clock advances 1ms per reading.
func newMemCache(t *testing.T, limit int) litecache.Cache[string] {
	t.Helper()
	var tick atomic.Int64
	base := time.UnixMilli(1_700_000_000_000)
	d, err := memory.New(memory.Config{})
	if err != nil {
		t.Fatal(err)
	}
	cc, err := litecache.New[string](litecache.Options[string]{
		Config: litecache.Config{Max: limit},
		Codec:  c.String{},
		Driver: d,
		Now:    func() time.Time { return base.Add(time.Duration(tick.Add(1)) * time.Millisecond) },
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = cc.Close(context.Background()) })
	return cc
}

func TestServe(t *testing.T) {
	cc := newMemCache(t, 2)
	in := strings.NewReader(strings.Join([]string{
		"SET a 1",
		"set b 2 60000",
		"",
		"GET a",
		"SET c 3",
		"GET b",
		"HAS a",
		"DEL a",
		"GET a",
		"SET x",
		"SET x 1 0",
		"BOGUS",
		"SWEEP",
		"CLEAR",
		"HAS c",
		"SET greeting hello there  world",
		"GET greeting",
		"SET note see you at 5 60000",
		"GET note",
		"SET n 42",
		"GET n",
	}, "\n"))
	var out bytes.Buffer
	if err := serve(context.Background(), cc, in, &out); err != nil {
		t.Fatalf("serve: %v", err)
	}

	want := []string{
		"OK: set",
		"OK: set",
		"OK: 1",
		"OK: set",
		"MISS: b", // a was read after b was written
		"OK: true",
		"OK: deleted",
		"MISS: a",
		"ERROR: SET requires key value [ttl_ms]",
		"ERROR: ttl_ms must be a positive integer",
		"ERROR: unknown command: BOGUS",
		"OK: removed 0",
		"OK: cleared",
		"MISS: c",
		"OK: set",
		"OK: hello there  world",
		"OK: set",
		"OK: see you at 5",
		"OK: set",
		"OK: 42",
	}
	got := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), out.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q want %q", i+1, got[i], want[i])
		}
	}
}

func TestRootCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")

	run := func(stdin string, args ...string) string {
		t.Helper()
		cmd := newRootCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetIn(strings.NewReader(stdin))
		cmd.SetArgs(args)
		if err := cmd.ExecuteContext(context.Background()); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		return out.String()
	}

	run("SET k v\n", "repl", "--path", path, "--driver", "fallback")
	if got := run("GET k\n", "repl", "--path", path, "--driver", "fallback"); got != "OK: v\n" {
		t.Fatalf("value did not persist: %q", got)
	}
	if got := run("", "stats", "--path", path, "--driver", "fallback", "--max", "5"); !strings.Contains(got, "count=1") || !strings.Contains(got, "max=5") {
		t.Fatalf("stats: %q", got)
	}
	if got := run("", "sweep", "--path", path, "--driver", "fallback"); got != "removed 0 expired entries\n" {
		t.Fatalf("sweep: %q", got)
	}
	if got := run("", "version"); !strings.HasPrefix(got, "litecache ") {
		t.Fatalf("version: %q", got)
	}
}

func TestUnsupportedDriverFlag(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"stats", "--path", filepath.Join(t.TempDir(), "x.db"), "--driver", "bogus"})
	err := cmd.ExecuteContext(context.Background())
	var ue *litecache.UnsupportedDriverError
	if !errors.As(err, &ue) || ue.Driver != "bogus" {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}
