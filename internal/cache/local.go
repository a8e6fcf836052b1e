package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type localItem[T any] struct {
	value     T
	expiredAt time.Time
}

// LocalCache is an in-process, size-bounded LRU with a per-entry TTL.
// Used for small, rarely mutated reference data such as the genre list.
type LocalCache[T any] struct {
	storage *lru.Cache[string, localItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewLocalCache creates a cache holding at most size entries for ttl each.
func NewLocalCache[T any](size int, ttl time.Duration) *LocalCache[T] {
	if size <= 0 {
		size = 128
	}
	// lru.New only fails for a non-positive size
	c, _ := lru.New[string, localItem[T]](size)
	return &LocalCache[T]{storage: c, ttl: ttl, now: time.Now}
}

func (c *LocalCache[T]) Set(key string, value T) {
	c.storage.Add(key, localItem[T]{value: value, expiredAt: c.now().Add(c.ttl)})
}

// Get returns the value if present and not expired.
func (c *LocalCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(item.expiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.value, true
}

func (c *LocalCache[T]) Delete(key string) {
	c.storage.Remove(key)
}

func (c *LocalCache[T]) Len() int {
	return c.storage.Len()
}
