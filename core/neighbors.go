package core

import (
	"net/netip"
	"time"

	"github.com/encodeous/loom/state"
)

// NeighborTable holds the local router's directly observed adjacencies,
// keyed by peer transport address. Insertion order defines iteration order;
// nothing survives a restart.
type NeighborTable struct {
	capacity int
	index    map[netip.AddrPort]*state.NeighborRecord
	order    []netip.AddrPort
}

func NewNeighborTable(capacity int) *NeighborTable {
	return &NeighborTable{
		capacity: capacity,
		index:    make(map[netip.AddrPort]*state.NeighborRecord, capacity),
	}
}

// Upsert records a hello from addr. A known peer is updated in place,
// last write wins. A new peer is dropped when the table is full (ok=false).
// changed reports whether the link attributes differ from what was stored.
func (t *NeighborTable) Upsert(addr netip.AddrPort, router state.RouterId, capacity int, up bool, now time.Time) (rec state.NeighborRecord, isNew, changed, ok bool) {
	if r, exists := t.index[addr]; exists {
		changed = r.Router != router || r.Capacity != capacity || r.Up != up
		if router != "" {
			r.Router = router
		}
		r.Capacity = capacity
		r.Up = up
		r.LastSeen = now
		return *r, false, changed, true
	}
	if len(t.order) >= t.capacity {
		return state.NeighborRecord{}, false, false, false
	}
	r := &state.NeighborRecord{
		Addr:     addr,
		Router:   router,
		Up:       up,
		Capacity: capacity,
		LastSeen: now,
	}
	t.index[addr] = r
	t.order = append(t.order, addr)
	return *r, true, true, true
}

// Snapshot copies the records in insertion order, for reporting and LSA
// construction.
func (t *NeighborTable) Snapshot() []state.NeighborRecord {
	out := make([]state.NeighborRecord, 0, len(t.order))
	for _, addr := range t.order {
		out = append(out, *t.index[addr])
	}
	return out
}

func (t *NeighborTable) Len() int {
	return len(t.order)
}

// Expire marks neighbors not heard from within holdTime as down, reporting
// whether anything changed. Records are kept so a returning neighbor
// resumes under the same address.
func (t *NeighborTable) Expire(now time.Time, holdTime time.Duration) bool {
	changed := false
	for _, addr := range t.order {
		r := t.index[addr]
		if r.Up && now.Sub(r.LastSeen) > holdTime {
			r.Up = false
			changed = true
		}
	}
	return changed
}
