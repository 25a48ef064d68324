// Package eviction decides which cache entries must go. It performs no I/O.
//
// Victims are chosen in two phases: every expired entry first, then, only if
// the live entries still exceed the limit, the least recently accessed ones.
package eviction

import (
	"cmp"
	"slices"
	"time"
)

// Reason tells why an entry was picked.
type Reason string

const (
	ReasonExpired  Reason = "expired"
	ReasonCapacity Reason = "capacity"
)

// Entry is the metadata the policy looks at.
type Entry struct {
	Key        string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	AccessedAt time.Time
	Seq        uint64 // insertion order; higher is newer
}

type Victim struct {
	Key    string
	Reason Reason
}

// Expired reports whether e is logically absent at now.
func Expired(e Entry, now time.Time) bool {
	return !e.ExpiresAt.After(now)
}

// ShouldEvictOnInsert reports whether a new entry needs room made for it.
func ShouldEvictOnInsert(currentCount, max int) bool {
	return currentCount >= max
}

// PickVictims returns the entries to remove so that at most max live entries
// remain. Expired entries are always included. The result is deterministic:
// expired victims sorted by key, then capacity victims in eviction order.
func PickVictims(entries []Entry, max int, now time.Time) []Victim {
	if max < 0 {
		max = 0
	}

	var victims []Victim
	live := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if Expired(e, now) {
			victims = append(victims, Victim{Key: e.Key, Reason: ReasonExpired})
			continue
		}
		live = append(live, e)
	}
	slices.SortFunc(victims, func(a, b Victim) int { return cmp.Compare(a.Key, b.Key) })

	excess := len(live) - max
	if excess <= 0 {
		return victims
	}

	slices.SortFunc(live, byRecency)
	for _, e := range live[:excess] {
		victims = append(victims, Victim{Key: e.Key, Reason: ReasonCapacity})
	}
	return victims
}

// byRecency orders least recently accessed first; ties go to the older insert.
func byRecency(a, b Entry) int {
	if c := a.AccessedAt.Compare(b.AccessedAt); c != 0 {
		return c
	}
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
		return c
	}
	return cmp.Compare(a.Key, b.Key)
}
