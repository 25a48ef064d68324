package sloghooks

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func newHooks(opts Options) (*Hooks, *bytes.Buffer) {
	var buf bytes.Buffer
	h := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return New(slog.New(h), opts), &buf
}

func TestRedactsKeysByDefault(t *testing.T) {
	h, buf := newHooks(Options{})
	h.StorageError("put", "user:secret", errors.New("disk I/O error"))
	out := buf.String()
	if strings.Contains(out, "user:secret") {
		t.Fatalf("key leaked: %s", out)
	}
	if !strings.Contains(out, "litecache.storage_error") || !strings.Contains(out, "op=put") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestCustomRedactor(t *testing.T) {
	h, buf := newHooks(Options{Redact: func(k string) string { return "<" + k + ">" }})
	h.SelfHeal("k1", "value_decode")
	if !strings.Contains(buf.String(), "key=<k1>") {
		t.Fatalf("redactor not used: %s", buf.String())
	}
}

func TestSampling(t *testing.T) {
	h, buf := newHooks(Options{EvictedEvery: 3})
	for i := 0; i < 9; i++ {
		h.Evicted("k", "capacity")
	}
	if n := strings.Count(buf.String(), "litecache.evicted"); n != 3 {
		t.Fatalf("logged %d of 9 evictions, want 3", n)
	}
}

func TestEmptySweepIsQuiet(t *testing.T) {
	h, buf := newHooks(Options{})
	h.SweepCompleted(0)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %s", buf.String())
	}
	h.SweepCompleted(2)
	if !strings.Contains(buf.String(), "removed=2") {
		t.Fatalf("missing sweep line: %s", buf.String())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	h := New(nil, Options{})
	h.DriverSelected("fallback", "test")
	h.Evicted("k", "expired")
	h.StorageError("get", "k", errors.New("x"))
}
