package core

import (
	"net/netip"
	"time"

	"github.com/encodeous/loom/protocol"
	"github.com/encodeous/loom/state"
	"github.com/encodeous/loom/transport"
)

// Router is the link-state control plane: it exchanges hellos with direct
// neighbors, originates and floods LSAs, maintains the topology database
// and recomputes the route table whenever the topology changes. It owns the
// neighbor table, topology database and dedup cache exclusively; all its
// methods run on the main loop goroutine.
type Router struct {
	tr        transport.Transport
	neighbors *NeighborTable
	topology  *Topology
	dedup     *DedupCache
	lastSeq   map[state.RouterId]uint64
	seq       uint64
	routes    []state.RouteTableEntry
}

func NewRouter(tr transport.Transport) *Router {
	return &Router{tr: tr}
}

func (r *Router) Init(s *state.State) error {
	r.neighbors = NewNeighborTable(s.MaxNeighbors)
	r.topology = NewTopology(s.MaxRouters, s.TopologyHoldTime)
	r.dedup = NewDedupCache(s.DedupCapacity, s.DedupPolicy)
	r.lastSeq = make(map[state.RouterId]uint64)

	// seed our own entry so the local router is always a known vertex
	r.topology.Pin(s.Id)
	r.topology.ApplyLSA(s.Id, nil)

	if s.Mode == state.ModeActive {
		s.Log.Debug("scheduling hello timer", "interval", s.HelloInterval)
		s.RepeatTask(r.sendHello, s.HelloInterval)
	}
	s.RepeatTask(r.runGC, state.GcDelay)
	return nil
}

func (r *Router) Cleanup(s *state.State) error {
	r.neighbors = nil
	r.topology = nil
	r.dedup = nil
	r.lastSeq = nil
	return nil
}

// Routes returns the last computed route table.
func (r *Router) Routes() []state.RouteTableEntry {
	return r.routes
}

func (r *Router) sendHello(s *state.State) error {
	payload, err := protocol.Marshal(&protocol.Hello{
		Router:   string(s.Id),
		Capacity: s.Capacity,
		Status:   1,
	})
	if err != nil {
		return err
	}
	if err := r.tr.Broadcast(payload); err != nil {
		// not fatal, the next hello interval is the retry
		s.Log.Warn("hello send failed", "err", err)
		return nil
	}
	s.Log.Debug("sent hello", "router", s.Id)
	return nil
}

func (r *Router) handleHello(s *state.State, m *protocol.Hello, from netip.AddrPort) {
	if state.RouterId(m.Router) == s.Id {
		return // our own announcement echoed back
	}
	rec, isNew, _, ok := r.neighbors.Upsert(from, state.RouterId(m.Router), m.Capacity, m.Status != 0, time.Now())
	if !ok {
		s.Log.Warn("neighbor table full, dropping hello", "from", from, "router", m.Router)
		return
	}
	if isNew {
		s.Log.Info("neighbor up", "router", rec.Router, "addr", from, "capacity", rec.Capacity)
		s.PublishNeighbor(rec)
	}
	if r.refreshLocalEntry(s) {
		r.floodLocalLSA(s)
		r.recompute(s)
	}
	// answer directly so a newcomer learns our links without waiting for
	// the next topology change
	r.sendLSA(s, from)
}

func (r *Router) handleLSA(s *state.State, m *protocol.LSA, from netip.AddrPort) {
	origin := state.RouterId(m.Router)
	if origin == s.Id {
		return // our own flood coming back around
	}
	id := adKey(m.Router, m.Seq)
	if r.dedup.Seen(id) {
		s.Log.Debug("duplicate lsa", "origin", m.Router, "seq", m.Seq)
		return
	}
	// a delayed older advertisement must not clobber newer state
	if last, known := r.lastSeq[origin]; known && m.Seq <= last {
		r.dedup.Remember(id)
		s.Log.Debug("stale lsa", "origin", m.Router, "seq", m.Seq, "have", last)
		return
	}

	links := make([]state.NeighborLink, 0, len(m.Links))
	for _, l := range m.Links {
		links = append(links, state.NeighborLink{
			Neighbor: state.RouterId(l.Neighbor),
			Up:       l.Up,
			Capacity: l.Capacity,
		})
	}
	changed, stored := r.topology.ApplyLSA(origin, links)
	if !stored {
		// leave the id unremembered so a retransmission can apply once
		// capacity frees up
		s.Log.Warn("topology database full, dropping lsa", "origin", m.Router)
		return
	}
	r.dedup.Remember(id)
	r.lastSeq[origin] = m.Seq
	s.Log.Debug("lsa applied", "origin", m.Router, "seq", m.Seq, "links", len(links), "changed", changed)
	if changed {
		r.recompute(s)
	}

	// forward the flood; the dedup cache keeps it from looping back
	payload, err := protocol.Marshal(m)
	if err == nil {
		if err := r.tr.Broadcast(payload); err != nil {
			s.Log.Warn("lsa forward failed", "origin", m.Router, "err", err)
		}
	}
}

// refreshLocalEntry rebuilds the local router's advertised link set from
// the neighbor table and applies it to the topology database, reporting
// whether it changed.
func (r *Router) refreshLocalEntry(s *state.State) bool {
	links := make([]state.NeighborLink, 0, r.neighbors.Len())
	for _, rec := range r.neighbors.Snapshot() {
		if rec.Router == "" {
			continue // address seen, identity not yet confirmed
		}
		links = append(links, state.NeighborLink{
			Neighbor: rec.Router,
			Up:       rec.Up,
			Capacity: rec.Capacity,
		})
	}
	changed, _ := r.topology.ApplyLSA(s.Id, links)
	return changed
}

// floodLocalLSA originates a new advertisement for the local link set and
// multicasts it to the routing group.
func (r *Router) floodLocalLSA(s *state.State) {
	r.seq++
	payload, err := protocol.Marshal(r.localLSA(s))
	if err != nil {
		s.Log.Error("lsa encode failed", "err", err)
		return
	}
	if err := r.tr.Broadcast(payload); err != nil {
		s.Log.Warn("lsa flood failed", "err", err)
		return
	}
	s.Log.Debug("flooded lsa", "seq", r.seq)
}

// sendLSA unicasts the current local advertisement, without bumping the
// sequence number, to one peer.
func (r *Router) sendLSA(s *state.State, dst netip.AddrPort) {
	payload, err := protocol.Marshal(r.localLSA(s))
	if err != nil {
		s.Log.Error("lsa encode failed", "err", err)
		return
	}
	if err := r.tr.Send(dst, payload); err != nil {
		s.Log.Warn("lsa send failed", "to", dst, "err", err)
	}
}

func (r *Router) localLSA(s *state.State) *protocol.LSA {
	entry, _ := r.topology.Get(s.Id)
	links := make([]protocol.Link, 0, len(entry.Links))
	for _, l := range entry.Links {
		links = append(links, protocol.Link{
			Neighbor: string(l.Neighbor),
			Up:       l.Up,
			Capacity: l.Capacity,
		})
	}
	return &protocol.LSA{
		Router: string(s.Id),
		Seq:    r.seq,
		Links:  links,
	}
}

func (r *Router) recompute(s *state.State) {
	r.routes = ComputeRoutes(r.topology, s.Id)
	s.PublishRoutes(r.routes)
}

// runGC ages out silent neighbors and expired topology entries, per the
// configured hold times.
func (r *Router) runGC(s *state.State) error {
	if s.HoldTime > 0 && r.neighbors.Expire(time.Now(), s.HoldTime) {
		s.Log.Info("neighbor hold time expired, withdrawing links")
		if r.refreshLocalEntry(s) {
			r.floodLocalLSA(s)
			r.recompute(s)
		}
	}
	if r.topology.DeleteExpired() {
		s.Log.Info("expired topology entries dropped")
		for origin := range r.lastSeq {
			if _, ok := r.topology.Get(origin); !ok {
				delete(r.lastSeq, origin)
			}
		}
		r.recompute(s)
	}
	return nil
}
