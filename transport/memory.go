package transport

import (
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"
)

// Hub is an in-memory datagram network, used to run several router
// instances inside one process for tests. Delivery is best-effort like
// UDP: a node whose queue is full loses the datagram.
type Hub struct {
	mu       sync.Mutex
	nodes    map[netip.AddrPort]*Mem
	nextPort uint16
}

func NewHub() *Hub {
	return &Hub{
		nodes:    make(map[netip.AddrPort]*Mem),
		nextPort: 40000,
	}
}

// Attach creates a new endpoint on the hub with a synthetic loopback
// address.
func (h *Hub) Attach() *Mem {
	h.mu.Lock()
	defer h.mu.Unlock()
	addr := netip.AddrPortFrom(netip.MustParseAddr("127.0.0.1"), h.nextPort)
	h.nextPort++
	m := &Mem{
		hub:    h,
		local:  addr,
		queue:  make(chan Datagram, 256),
		closed: make(chan struct{}),
	}
	h.nodes[addr] = m
	return m
}

func (h *Hub) deliver(dst netip.AddrPort, d Datagram) error {
	h.mu.Lock()
	node, ok := h.nodes[dst]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("no node at %s", dst)
	}
	select {
	case node.queue <- d:
	default:
		// queue full, datagram lost
	}
	return nil
}

func (h *Hub) broadcast(from netip.AddrPort, d Datagram) {
	h.mu.Lock()
	targets := make([]*Mem, 0, len(h.nodes))
	for addr, node := range h.nodes {
		if addr != from {
			targets = append(targets, node)
		}
	}
	h.mu.Unlock()
	for _, node := range targets {
		select {
		case node.queue <- d:
		default:
		}
	}
}

func (h *Hub) detach(addr netip.AddrPort) {
	h.mu.Lock()
	delete(h.nodes, addr)
	h.mu.Unlock()
}

// Mem is one endpoint of a Hub.
type Mem struct {
	hub    *Hub
	local  netip.AddrPort
	queue  chan Datagram
	closed chan struct{}
	once   sync.Once
}

func (m *Mem) Send(dst netip.AddrPort, payload []byte) error {
	select {
	case <-m.closed:
		return net.ErrClosed
	default:
	}
	d := Datagram{Payload: append([]byte(nil), payload...), From: m.local}
	return m.hub.deliver(dst, d)
}

func (m *Mem) Broadcast(payload []byte) error {
	select {
	case <-m.closed:
		return net.ErrClosed
	default:
	}
	d := Datagram{Payload: append([]byte(nil), payload...), From: m.local}
	m.hub.broadcast(m.local, d)
	return nil
}

func (m *Mem) Receive(timeout time.Duration) (*Datagram, error) {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case d := <-m.queue:
		return &d, nil
	case <-t.C:
		return nil, nil
	case <-m.closed:
		return nil, net.ErrClosed
	}
}

func (m *Mem) LocalAddr() netip.AddrPort {
	return m.local
}

func (m *Mem) Close() error {
	m.once.Do(func() {
		m.hub.detach(m.local)
		close(m.closed)
	})
	return nil
}
