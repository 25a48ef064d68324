package litecache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking: the cache calls them while
// holding its storage lock.
type Hooks interface {
	// A driver was chosen at construction. reason is human readable.
	DriverSelected(driver, reason string)

	// Get or Has found an expired entry and deleted it.
	ExpiredOnRead(key string)

	// An entry was removed to make room for an insert.
	// reason ∈ {"expired", "capacity"}
	Evicted(key, reason string)

	// SweepExpired finished; removed may be 0.
	SweepCompleted(removed int)

	// An unreadable entry was deleted on read.
	// reason ∈ {"value_decode"}
	SelfHeal(key, reason string)

	// A storage call failed and the error was returned to the caller.
	StorageError(op, key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) DriverSelected(string, string)      {}
func (NopHooks) ExpiredOnRead(string)               {}
func (NopHooks) Evicted(string, string)             {}
func (NopHooks) SweepCompleted(int)                 {}
func (NopHooks) SelfHeal(string, string)            {}
func (NopHooks) StorageError(string, string, error) {}
