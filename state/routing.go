package state

import (
	"net/netip"
	"time"
)

// RouterId is the stable network-wide identifier of a routing participant.
// The canonical scheme is the configured node id, defaulting to the local
// hostname; the same scheme is used everywhere, never mixed with addresses.
type RouterId string

// NeighborLink is one directed connectivity observation advertised by a
// router: "I can reach Neighbor over a link of this capacity".
type NeighborLink struct {
	Neighbor RouterId
	Up       bool
	Capacity int // Mbps
}

// TopologyEntry is a router's full advertised link set. An entry holds at
// most one link per distinct neighbor id.
type TopologyEntry struct {
	Router RouterId
	Links  []NeighborLink
}

// NeighborRecord is a directly observed adjacency of the local router,
// keyed by peer transport address since a hello may arrive before the peer's
// RouterId is confirmed.
type NeighborRecord struct {
	Addr     netip.AddrPort
	Router   RouterId
	Up       bool
	Capacity int // Mbps, as advertised by the peer
	LastSeen time.Time
}

// RouteTableEntry is one row of a computed route table. Route computation
// produces a fresh, disposable slice of these per run.
type RouteTableEntry struct {
	Destination RouterId
	NextHop     RouterId
	Cost        uint32
}
