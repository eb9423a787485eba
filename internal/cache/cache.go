package cache

// Cache is the keyed store the caching proxies read through.
type Cache[K comparable, V any] interface {
	// Get retrieves a value from the cache
	Get(key K) (V, bool)

	// Set stores a value, replacing any previous value for key
	Set(key K, value V)

	// Delete removes a key from the cache
	Delete(key K)

	// Has reports whether key is cached
	Has(key K) bool

	// Size returns the current number of items in the cache
	Size() int

	// Values returns a snapshot of all cached values
	Values() []V
}
