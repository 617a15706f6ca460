package core

import (
	"net/netip"

	"github.com/encodeous/loom/protocol"
	"github.com/encodeous/loom/state"
	"github.com/encodeous/loom/transport"
)

// receiveLoop pulls datagrams off the transport and dispatches decoded
// messages onto the main loop. Receives are bounded so the loop keeps
// observing context cancellation; malformed payloads are dropped here.
func receiveLoop(e *state.Env, tr transport.Transport) {
	for e.Context.Err() == nil {
		d, err := tr.Receive(state.ReceiveTimeout)
		if err != nil {
			if e.Context.Err() != nil {
				return
			}
			e.Log.Warn("transport receive failed", "err", err)
			continue
		}
		if d == nil {
			continue // timeout, go observe the context
		}
		msg, err := protocol.Unmarshal(d.Payload)
		if err != nil {
			e.Log.Debug("dropping malformed datagram", "from", d.From, "err", err)
			continue
		}
		from := d.From
		e.Dispatch(func(s *state.State) error {
			dispatchMessage(s, msg, from)
			return nil
		})
	}
}

func dispatchMessage(s *state.State, msg protocol.Message, from netip.AddrPort) {
	switch m := msg.(type) {
	case *protocol.Hello:
		Get[*Router](s).handleHello(s, m, from)
	case *protocol.LSA:
		Get[*Router](s).handleLSA(s, m, from)
	case *protocol.NeighborRequest:
		Get[*Discovery](s).handleRequest(s, m, from)
	case *protocol.NeighborResponse:
		Get[*Discovery](s).handleResponse(s, m, from)
	}
}
