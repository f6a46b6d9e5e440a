package common

import (
	"encoding/json"
	"sync"
	"time"

	"travelbook/airports/internal/logging"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-memory cache. When maxEntries is reached the entry
// closest to expiry is evicted before a new key is stored.
type CacheService struct {
	mu         sync.Mutex
	cache      *cache.Cache
	maxEntries int
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration time.Duration, maxEntries int) *CacheService {
	cleanUpInterval := defaultExpiration / 2
	if cleanUpInterval < time.Minute {
		cleanUpInterval = time.Minute
	}
	return &CacheService{
		cache:      cache.New(defaultExpiration, cleanUpInterval),
		maxEntries: maxEntries,
	}
}

func (cs *CacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("[CacheService] Failed to marshal value", "key", key, "error", err.Error())
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.maxEntries > 0 {
		if _, exists := cs.cache.Get(key); !exists {
			// ItemCount includes expired items the janitor has not swept yet
			cs.cache.DeleteExpired()
			for cs.cache.ItemCount() >= cs.maxEntries {
				if !cs.evictOldest() {
					break
				}
			}
		}
	}
	cs.cache.Set(key, data, duration)
}

func (cs *CacheService) Get(key string, dest interface{}) bool {
	val, found := cs.cache.Get(key)
	if !found {
		return false
	}
	data, ok := val.([]byte)
	if !ok {
		return false
	}
	return json.Unmarshal(data, dest) == nil
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

func (cs *CacheService) Len() int {
	return cs.cache.ItemCount()
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}

// evictOldest drops the item with the earliest expiration. Callers hold cs.mu.
func (cs *CacheService) evictOldest() bool {
	var (
		oldestKey string
		oldestExp int64
	)
	for k, item := range cs.cache.Items() {
		if oldestKey == "" || item.Expiration < oldestExp {
			oldestKey, oldestExp = k, item.Expiration
		}
	}
	if oldestKey == "" {
		return false
	}
	cs.cache.Delete(oldestKey)
	return true
}
