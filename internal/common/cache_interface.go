package common

import "time"

// CacheInterface defines the contract for response cache implementations.
// Values are stored JSON-encoded so both backends hand back independent copies.
type CacheInterface interface {
	// Set stores a value in cache with the given key and duration
	Set(key string, value interface{}, duration time.Duration)

	// Get decodes the cached value for key into dest.
	// Returns false on a miss or when the stored value cannot be decoded.
	Get(key string, dest interface{}) bool

	// Delete removes a value from cache by key
	Delete(key string)

	// Len reports the number of live entries
	Len() int

	// Close closes any underlying connections (for Redis, etc.)
	Close() error
}
