package core

import (
	"slices"

	"github.com/encodeous/loom/state"
)

// ComputeRoutes runs a single-source shortest-path pass over the topology
// database and returns one entry per reachable router other than source.
// Unreachable routers are excluded from the result.
//
// Edges prefer bandwidth: weight = WeightConstant / capacity, truncated, at
// least 1, so higher capacity is cheaper. Links that are down or have zero
// capacity do not exist. Ties between equal-cost unvisited vertices resolve
// to the lowest router id; on equal-cost paths the first one found wins.
// O(V²) selection, fine at the tens-of-routers scale this targets.
func ComputeRoutes(topo *Topology, source state.RouterId) []state.RouteTableEntry {
	ids := topo.RouterIds()
	if !slices.Contains(ids, source) {
		ids = append(ids, source)
		slices.Sort(ids)
	}

	cost := make(map[state.RouterId]uint32, len(ids))
	prev := make(map[state.RouterId]state.RouterId, len(ids))
	visited := make(map[state.RouterId]bool, len(ids))
	for _, id := range ids {
		cost[id] = state.INF
	}
	cost[source] = 0

	for {
		var cur state.RouterId
		found := false
		best := state.INF
		for _, id := range ids {
			if !visited[id] && cost[id] < best {
				best = cost[id]
				cur = id
				found = true
			}
		}
		if !found {
			break // the rest is disconnected
		}
		visited[cur] = true

		entry, ok := topo.Get(cur)
		if !ok {
			continue
		}
		for _, link := range entry.Links {
			if !link.Up || link.Capacity <= 0 {
				continue
			}
			if _, known := cost[link.Neighbor]; !known {
				continue // link to a router nobody has advertised
			}
			if alt := best + LinkWeight(link.Capacity); alt < cost[link.Neighbor] {
				cost[link.Neighbor] = alt
				prev[link.Neighbor] = cur
			}
		}
	}

	routes := make([]state.RouteTableEntry, 0, len(ids))
	for _, id := range ids {
		if id == source || cost[id] == state.INF {
			continue
		}
		routes = append(routes, state.RouteTableEntry{
			Destination: id,
			NextHop:     nextHop(prev, source, id),
			Cost:        cost[id],
		})
	}
	return routes
}

// LinkWeight maps a positive capacity in Mbps to an edge weight.
func LinkWeight(capacity int) uint32 {
	w := state.WeightConstant / capacity
	if w < 1 {
		w = 1
	}
	return uint32(w)
}

func nextHop(prev map[state.RouterId]state.RouterId, source, dest state.RouterId) state.RouterId {
	hop := dest
	for prev[hop] != source {
		hop = prev[hop]
	}
	return hop
}
