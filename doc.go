// Package litecache implements an embedded, disk-backed key/value cache with a
// bounded number of entries and per-entry time-to-live, on top of a pluggable
// storage driver.
//
// Components:
//   - Driver: durable key/value table (driver/native over mattn/go-sqlite3,
//     driver/fallback over modernc.org/sqlite, driver/memory over bigcache).
//   - Selector: picks native or fallback from config and host capabilities.
//   - Eviction: pure policy. Expired entries go first, then the least
//     recently accessed entries until the cache is back under Max.
//   - Codec[V]: (de)serializes V <-> []byte.
//   - Hot tier: optional in-process read cache validated against the index.
//
// Reads expire lazily: a Get that finds an expired row deletes it and reports
// a miss. SweepExpired (or Config.SweepInterval) removes expired rows that are
// never read again.
//
//	c, err := litecache.New[User](litecache.Options[User]{
//	    Config: litecache.Config{Path: "./cache.db", Max: 1000, TTL: time.Minute},
//	    Codec:  codec.JSON[User]{},
//	})
//	_ = c.Set(ctx, "u:1", u, 0) // 0 => Config.TTL
//	u, ok, err := c.Get(ctx, "u:1")
package litecache
