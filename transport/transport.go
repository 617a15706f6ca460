// Package transport moves raw datagrams for the control plane. It carries
// no protocol knowledge; codecs and handlers live above it.
package transport

import (
	"net/netip"
	"time"
)

// Datagram is one received payload with its source address.
type Datagram struct {
	Payload []byte
	From    netip.AddrPort
}

// Transport sends and receives datagrams. Datagrams may be lost, duplicated
// or reordered; callers must tolerate all three.
type Transport interface {
	// Send delivers one datagram to dst.
	Send(dst netip.AddrPort, payload []byte) error
	// Broadcast delivers one datagram to the discovery group.
	Broadcast(payload []byte) error
	// Receive waits up to timeout for a datagram. A timeout returns
	// (nil, nil) so callers can keep their timers serviced.
	Receive(timeout time.Duration) (*Datagram, error)
	// LocalAddr is the address peers see this node under.
	LocalAddr() netip.AddrPort
	Close() error
}
