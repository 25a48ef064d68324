package driver

import "fmt"

// OpenError reports that storage could not be opened or initialized.
type OpenError struct {
	Driver Kind
	Path   string
	Err    error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("litecache: open %s storage at %q: %v", e.Driver, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// IOError reports a failed storage call. Key is empty for whole-table operations.
type IOError struct {
	Op  string
	Key string
	Err error
}

func (e *IOError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("litecache: storage %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("litecache: storage %s %q failed: %v", e.Op, e.Key, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Fault wraps err as an *IOError, passing nil through.
func Fault(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Key: key, Err: err}
}
