package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/encodeous/loom/protocol"
	"github.com/encodeous/loom/state"
	"github.com/encodeous/loom/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addDiscovery(t *testing.T, s *state.State, tr transport.Transport) *Discovery {
	t.Helper()
	d := NewDiscovery(tr)
	s.Modules[reflect.TypeOf(d).String()] = d
	require.NoError(t, d.Init(s))
	return d
}

func TestPassiveAnswersEachRequestOnce(t *testing.T) {
	hub := transport.NewHub()
	s := newTestState(t, state.Config{Id: "printer-4", Mode: state.ModePassive}, state.Hooks{})
	d := addDiscovery(t, s, hub.Attach())
	prober := hub.Attach()

	d.handleRequest(s, &protocol.NeighborRequest{RequestId: 42}, prober.LocalAddr())

	msg := recvMessage(t, prober)
	resp, ok := msg.(*protocol.NeighborResponse)
	require.True(t, ok)
	assert.Equal(t, uint64(42), resp.RequestId)
	assert.Equal(t, "printer-4", resp.Hostname)

	// a rebroadcast of the same request id is ignored
	d.handleRequest(s, &protocol.NeighborRequest{RequestId: 42}, prober.LocalAddr())
	assertSilent(t, prober)

	// a fresh request id is a new cycle
	d.handleRequest(s, &protocol.NeighborRequest{RequestId: 43}, prober.LocalAddr())
	msg = recvMessage(t, prober)
	resp, ok = msg.(*protocol.NeighborResponse)
	require.True(t, ok)
	assert.Equal(t, uint64(43), resp.RequestId)
}

func TestActiveNodeDoesNotAnswerRequests(t *testing.T) {
	hub := transport.NewHub()
	s := newTestState(t, state.Config{Id: "a", Mode: state.ModeActive}, state.Hooks{})
	d := addDiscovery(t, s, hub.Attach())
	prober := hub.Attach()

	d.handleRequest(s, &protocol.NeighborRequest{RequestId: 42}, prober.LocalAddr())
	assertSilent(t, prober)
}

func TestProbeCycleCollectsResponses(t *testing.T) {
	hub := transport.NewHub()
	var found []state.NeighborRecord
	hooks := state.Hooks{OnNeighborDiscovered: func(rec state.NeighborRecord) {
		found = append(found, rec)
	}}
	// a long response window so the cycle only ends when the test says so
	s := newTestState(t, state.Config{Id: "a", Mode: state.ModeActive, ResponseWindow: time.Minute}, hooks)
	d := addDiscovery(t, s, hub.Attach())
	peer := hub.Attach()

	require.NoError(t, d.startProbe(s))
	require.NotNil(t, d.probe)

	msg := recvMessage(t, peer)
	req, ok := msg.(*protocol.NeighborRequest)
	require.True(t, ok)
	assert.Equal(t, d.probe.id, req.RequestId)

	// only responses carrying the current request id count
	d.handleResponse(s, &protocol.NeighborResponse{RequestId: req.RequestId ^ 1, Hostname: "stray"}, peer.LocalAddr())
	d.handleResponse(s, &protocol.NeighborResponse{RequestId: req.RequestId, Hostname: "printer-4"}, peer.LocalAddr())
	// duplicates from the same address collapse
	d.handleResponse(s, &protocol.NeighborResponse{RequestId: req.RequestId, Hostname: "printer-4"}, peer.LocalAddr())

	require.NoError(t, d.finishProbe(s))
	require.Len(t, found, 1)
	assert.Equal(t, state.RouterId("printer-4"), found[0].Router)
	assert.Equal(t, peer.LocalAddr(), found[0].Addr)
	assert.Nil(t, d.probe, "the cycle is closed after the window")
}

func TestProbeNotRestartedWhileWindowOpen(t *testing.T) {
	hub := transport.NewHub()
	s := newTestState(t, state.Config{Id: "a", Mode: state.ModeActive, ResponseWindow: time.Minute}, state.Hooks{})
	d := addDiscovery(t, s, hub.Attach())
	peer := hub.Attach()

	require.NoError(t, d.startProbe(s))
	first := d.probe.id
	recvMessage(t, peer)

	require.NoError(t, d.startProbe(s))
	assert.Equal(t, first, d.probe.id)
	assertSilent(t, peer)
}
