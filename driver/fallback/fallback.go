// Package fallback provides the SQLite driver backed by modernc.org/sqlite,
// a pure-Go translation of SQLite. It works in any build, cgo or not.
package fallback

import (
	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/litecache/driver"
	"github.com/unkn0wn-root/litecache/internal/sqlstore"
)

// SQLDriverName is the database/sql name registered by modernc.org/sqlite.
const SQLDriverName = "sqlite"

// Driver is a pure-Go SQLite store.
type Driver struct {
	*sqlstore.Store
}

var _ driver.Driver = (*Driver)(nil)

// Open opens or creates the database file at path.
func Open(path string) (*Driver, error) {
	s, err := sqlstore.Open(driver.KindFallback, SQLDriverName, path)
	if err != nil {
		return nil, err
	}
	return &Driver{Store: s}, nil
}
