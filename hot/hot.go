// Package hot defines the optional in-process read tier that sits in front
// of a disk driver.
//
// A tier may drop or delay anything; the cache validates every hit against
// its own entry index, so a tier only ever saves a storage read and can never
// resurrect a deleted or expired value.
package hot

import "time"

// Tier is a lossy byte cache with TTLs. Must be safe for concurrent use.
type Tier interface {
	Get(key string) ([]byte, bool)
	// Set returns false when the tier declined the write.
	Set(key string, value []byte, ttl time.Duration) bool
	Del(key string)
	Clear()
	Close()
}
