package litecache

import (
	"errors"
	"fmt"

	"github.com/unkn0wn-root/litecache/driver"
	"github.com/unkn0wn-root/litecache/selector"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("litecache: cache is closed")

// ConfigurationError reports invalid construction input. It is fatal: New
// returns no cache alongside it.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("litecache: invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("litecache: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

type (
	// UnsupportedDriverError names a driver the host cannot run, or an unknown
	// driver name (then wrapped in a *ConfigurationError).
	UnsupportedDriverError = selector.UnsupportedError
	// StorageOpenError reports that storage could not be opened at construction.
	StorageOpenError = driver.OpenError
	// StorageIOError reports a failed storage call. The cache does not retry;
	// its state is what it was before the call.
	StorageIOError = driver.IOError
)
