package store

// Store defines the key/value contract the callback registry runs on:
// plain get/set/unset plus key enumeration for the idle sweep. Expiry is
// the registry's business, not the store's.
// Implementations must be safe for concurrent use: the GC sweeper
// interleaves with in-flight request dispatches.
type Store[V any] interface {
	// Exists reports whether a key is present.
	Exists(key string) bool

	// Get returns the value and whether the key was present.
	Get(key string) (V, bool)

	// Set stores the value, replacing any previous one.
	Set(key string, value V)

	// Unset removes a key if present.
	Unset(key string)

	// Keys returns a snapshot of all stored keys, in no particular order.
	Keys() []string

	// Len returns the number of stored entries.
	Len() int

	// Clear removes all entries.
	Clear()
}
