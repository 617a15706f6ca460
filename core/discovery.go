package core

import (
	"math/rand/v2"
	"net/netip"
	"time"

	"github.com/encodeous/loom/protocol"
	"github.com/encodeous/loom/state"
	"github.com/encodeous/loom/transport"
)

// Discovery implements the request/response side of neighbor discovery.
// In passive mode the node answers each distinct request id exactly once
// and never probes. In active mode it broadcasts a probe, collects
// responses for the configured window, then reports whatever arrived;
// the window is a hard deadline, not a quiescence wait.
type Discovery struct {
	tr    transport.Transport
	seen  *DedupCache
	probe *probeCycle
}

type probeCycle struct {
	id    uint64
	found map[netip.AddrPort]state.NeighborRecord
}

func NewDiscovery(tr transport.Transport) *Discovery {
	return &Discovery{tr: tr}
}

func (d *Discovery) Init(s *state.State) error {
	d.seen = NewDedupCache(s.DedupCapacity, s.DedupPolicy)
	if s.Mode == state.ModeActive {
		s.RepeatTask(d.startProbe, state.ProbeInterval)
	}
	return nil
}

func (d *Discovery) Cleanup(s *state.State) error {
	d.seen = nil
	d.probe = nil
	return nil
}

func (d *Discovery) startProbe(s *state.State) error {
	if d.probe != nil {
		return nil // previous window still open
	}
	d.probe = &probeCycle{
		id:    rand.Uint64(),
		found: make(map[netip.AddrPort]state.NeighborRecord),
	}
	payload, err := protocol.Marshal(&protocol.NeighborRequest{RequestId: d.probe.id})
	if err != nil {
		return err
	}
	if err := d.tr.Broadcast(payload); err != nil {
		s.Log.Warn("probe send failed", "err", err)
		d.probe = nil
		return nil
	}
	s.Log.Debug("probe sent", "request_id", d.probe.id, "window", s.ResponseWindow)
	s.ScheduleTask(d.finishProbe, s.ResponseWindow)
	return nil
}

func (d *Discovery) finishProbe(s *state.State) error {
	if d.probe == nil {
		return nil
	}
	found := d.probe.found
	d.probe = nil
	s.Log.Info("discovery cycle complete", "neighbors", len(found))
	for _, rec := range found {
		s.PublishNeighbor(rec)
	}
	return nil
}

func (d *Discovery) handleRequest(s *state.State, m *protocol.NeighborRequest, from netip.AddrPort) {
	if s.Mode != state.ModePassive {
		return
	}
	if d.seen.Seen(m.RequestId) {
		s.Log.Debug("duplicate neighbor request", "request_id", m.RequestId, "from", from)
		return
	}
	d.seen.Remember(m.RequestId)
	payload, err := protocol.Marshal(&protocol.NeighborResponse{
		RequestId: m.RequestId,
		Hostname:  string(s.Id),
	})
	if err != nil {
		s.Log.Error("response encode failed", "err", err)
		return
	}
	if err := d.tr.Send(from, payload); err != nil {
		s.Log.Warn("response send failed", "to", from, "err", err)
	}
}

func (d *Discovery) handleResponse(s *state.State, m *protocol.NeighborResponse, from netip.AddrPort) {
	if d.probe == nil || m.RequestId != d.probe.id {
		s.Log.Debug("stray neighbor response", "request_id", m.RequestId, "from", from)
		return
	}
	d.probe.found[from] = state.NeighborRecord{
		Addr:     from,
		Router:   state.RouterId(m.Hostname),
		Up:       true,
		LastSeen: time.Now(),
	}
}
