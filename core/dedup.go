package core

import (
	"github.com/encodeous/loom/state"
)

// DedupCache remembers recently processed request and advertisement ids so
// a flooded message is handled once, breaking multicast loops. It holds at
// most capacity ids; overflow behavior is the configured policy.
type DedupCache struct {
	capacity int
	policy   state.DedupPolicy
	ids      map[uint64]struct{}
	order    []uint64
}

func NewDedupCache(capacity int, policy state.DedupPolicy) *DedupCache {
	return &DedupCache{
		capacity: capacity,
		policy:   policy,
		ids:      make(map[uint64]struct{}, capacity),
		order:    make([]uint64, 0, capacity),
	}
}

func (c *DedupCache) Seen(id uint64) bool {
	_, ok := c.ids[id]
	return ok
}

// Remember records an id. At capacity it either drops the new id silently
// (DedupDropNew) or evicts the oldest remembered one (DedupEvictOldest).
func (c *DedupCache) Remember(id uint64) {
	if _, ok := c.ids[id]; ok {
		return
	}
	if len(c.ids) >= c.capacity {
		if c.policy != state.DedupEvictOldest {
			return
		}
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.ids, oldest)
	}
	c.ids[id] = struct{}{}
	c.order = append(c.order, id)
}

func (c *DedupCache) Len() int {
	return len(c.ids)
}
