package runner

import (
	"container/list"
	"sync"

	"github.com/lingaserve/lingaserve/internal/langpair"
)

// resultCache is a bounded LRU mapping [langpair.Fingerprint] to a translated
// string. It is owned by exactly one [Runner]; there is no cross-runner
// sharing.
type resultCache struct {
	mu       sync.Mutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

type cacheEntry struct {
	key   string
	value string
}

func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		capacity = 1
	}
	return &resultCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *resultCache) get(fp langpair.Fingerprint) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := fp.Key()
	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

func (c *resultCache) put(fp langpair.Fingerprint, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := fp.Key()
	if el, ok := c.items[key]; ok {
		el.Value.(*cacheEntry).value = value
		c.ll.MoveToFront(el)
		return
	}

	el := c.ll.PushFront(&cacheEntry{key: key, value: value})
	c.items[key] = el

	for c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		if tail == nil {
			break
		}
		c.ll.Remove(tail)
		delete(c.items, tail.Value.(*cacheEntry).key)
	}
}
