package core

import (
	"slices"
	"time"

	"github.com/encodeous/loom/state"
	"github.com/jellydator/ttlcache/v3"
)

// Topology is the link-state database: every known router's latest
// advertised link set, including the local router's. An LSA is the
// authoritative full link set of its origin, so entries are replaced
// wholesale, never merged.
type Topology struct {
	capacity int
	pinned   state.RouterId
	entries  *ttlcache.Cache[state.RouterId, state.TopologyEntry]
}

// NewTopology creates a database bounded to capacity routers. A holdTime of
// 0 keeps entries forever; otherwise entries not refreshed within holdTime
// become eligible for DeleteExpired.
func NewTopology(capacity int, holdTime time.Duration) *Topology {
	ttl := holdTime
	if ttl == 0 {
		ttl = ttlcache.NoTTL
	}
	return &Topology{
		capacity: capacity,
		entries: ttlcache.New[state.RouterId, state.TopologyEntry](
			ttlcache.WithTTL[state.RouterId, state.TopologyEntry](ttl),
			ttlcache.WithDisableTouchOnHit[state.RouterId, state.TopologyEntry](),
		),
	}
}

// Pin exempts router's entry from hold-time expiry. The local router's
// own entry is pinned: it is authoritative and must never age out.
func (t *Topology) Pin(router state.RouterId) {
	t.pinned = router
}

// ApplyLSA replaces the entry for router with links. changed reports
// whether the stored entry differs afterward; stored is false when a new
// router was dropped because the database is full. Re-applying an identical
// link set refreshes the hold time but reports no change.
func (t *Topology) ApplyLSA(router state.RouterId, links []state.NeighborLink) (changed, stored bool) {
	ttl := ttlcache.DefaultTTL
	if router == t.pinned {
		ttl = ttlcache.NoTTL
	}
	normalized := normalizeLinks(links)
	old := t.entries.Get(router)
	if old == nil && t.entries.Len() >= t.capacity {
		return false, false
	}
	if old != nil && slices.Equal(old.Value().Links, normalized) {
		t.entries.Set(router, old.Value(), ttl)
		return false, true
	}
	t.entries.Set(router, state.TopologyEntry{Router: router, Links: normalized}, ttl)
	return true, true
}

// normalizeLinks keeps one link per distinct neighbor, the last occurrence
// winning in place.
func normalizeLinks(links []state.NeighborLink) []state.NeighborLink {
	out := make([]state.NeighborLink, 0, len(links))
	pos := make(map[state.RouterId]int, len(links))
	for _, l := range links {
		if i, ok := pos[l.Neighbor]; ok {
			out[i] = l
			continue
		}
		pos[l.Neighbor] = len(out)
		out = append(out, l)
	}
	return out
}

// Get returns the entry for router. Absence means "unknown router", not
// "zero links".
func (t *Topology) Get(router state.RouterId) (state.TopologyEntry, bool) {
	item := t.entries.Get(router)
	if item == nil {
		return state.TopologyEntry{}, false
	}
	return item.Value(), true
}

// RouterIds returns the known routers in sorted order; this is the vertex
// set for route computation.
func (t *Topology) RouterIds() []state.RouterId {
	ids := t.entries.Keys()
	slices.Sort(ids)
	return ids
}

func (t *Topology) Len() int {
	return t.entries.Len()
}

// DeleteExpired drops entries past their hold time, reporting whether any
// were removed. A no-op when the hold time is 0.
func (t *Topology) DeleteExpired() bool {
	before := t.entries.Len()
	t.entries.DeleteExpired()
	return t.entries.Len() != before
}
