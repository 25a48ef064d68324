// Package native provides the SQLite driver backed by the cgo binding
// github.com/mattn/go-sqlite3. Binaries built with CGO_ENABLED=0 still link,
// but Open fails; use selector.Probe to check before choosing it.
package native

import (
	_ "github.com/mattn/go-sqlite3"

	"github.com/unkn0wn-root/litecache/driver"
	"github.com/unkn0wn-root/litecache/internal/sqlstore"
)

// SQLDriverName is the database/sql name registered by mattn/go-sqlite3.
const SQLDriverName = "sqlite3"

// Driver is a native SQLite store.
type Driver struct {
	*sqlstore.Store
}

var _ driver.Driver = (*Driver)(nil)

// Open opens or creates the database file at path.
func Open(path string) (*Driver, error) {
	s, err := sqlstore.Open(driver.KindNative, SQLDriverName, path)
	if err != nil {
		return nil, err
	}
	return &Driver{Store: s}, nil
}
