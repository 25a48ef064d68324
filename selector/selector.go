// Package selector decides which storage driver a cache opens.
//
// Select is a pure function of the requested driver name and the host
// capabilities; Probe is the only place that inspects the build.
package selector

import (
	"fmt"
	"strings"

	"github.com/unkn0wn-root/litecache/driver"
)

// RequiresCGO is the capability the native driver needs.
const RequiresCGO = "cgo-enabled build (CGO_ENABLED=1)"

// Capabilities describes what the host can run.
type Capabilities struct {
	CGO bool
}

// Probe reports the capabilities of the running binary.
func Probe() Capabilities {
	return Capabilities{CGO: cgoEnabled}
}

// Decision is the outcome of Select.
type Decision struct {
	Kind     driver.Kind
	Reason   string
	Explicit bool
}

// UnsupportedError reports a driver the host cannot satisfy, or a name that
// is not a driver at all.
type UnsupportedError struct {
	Driver   string
	Requires string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("litecache: unsupported driver %q: requires %s", e.Driver, e.Requires)
}

// Known reports whether name is a selectable driver name.
func Known(name string) bool {
	switch driver.Kind(name) {
	case driver.KindNative, driver.KindFallback:
		return true
	}
	return false
}

// Select picks a driver. An explicit request is used verbatim or rejected;
// an empty request prefers native when the host supports it.
func Select(requested string, caps Capabilities) (Decision, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		if caps.CGO {
			return Decision{Kind: driver.KindNative, Reason: "no driver configured; cgo available, using native"}, nil
		}
		return Decision{Kind: driver.KindFallback, Reason: "no driver configured; cgo unavailable, using fallback"}, nil
	}

	switch driver.Kind(requested) {
	case driver.KindNative:
		if !caps.CGO {
			return Decision{}, &UnsupportedError{Driver: requested, Requires: RequiresCGO}
		}
		return Decision{Kind: driver.KindNative, Reason: "configured explicitly", Explicit: true}, nil
	case driver.KindFallback:
		return Decision{Kind: driver.KindFallback, Reason: "configured explicitly", Explicit: true}, nil
	default:
		return Decision{}, &UnsupportedError{
			Driver:   requested,
			Requires: fmt.Sprintf("one of %s, %s", driver.KindNative, driver.KindFallback),
		}
	}
}
