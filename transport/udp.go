package transport

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/encodeous/loom/state"
	"golang.org/x/net/ipv4"
)

// UDP is the production transport: one IPv4 UDP socket bound to the
// discovery port and joined to the routing multicast group.
type UDP struct {
	conn  *net.UDPConn
	group netip.AddrPort
	local netip.AddrPort
}

// NewUDP binds the discovery port and joins the multicast group. Any
// failure here is fatal to startup; the caller must not continue with a
// partially initialized transport.
func NewUDP(port uint16, group netip.AddrPort) (*UDP, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: int(port)})
	if err != nil {
		return nil, fmt.Errorf("bind discovery port %d: %w", port, err)
	}
	p := ipv4.NewPacketConn(conn)
	if err := p.JoinGroup(nil, &net.UDPAddr{IP: group.Addr().AsSlice()}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("join multicast group %s: %w", group.Addr(), err)
	}
	// our own multicast sends come back through the loop-suppression path,
	// not through the kernel
	_ = p.SetMulticastLoopback(false)
	return &UDP{
		conn:  conn,
		group: group,
		local: netip.AddrPortFrom(outboundAddr(group), port),
	}, nil
}

// outboundAddr resolves the source address the kernel picks toward the
// routing group, so LocalAddr reports what peers actually see rather than
// the wildcard bind address. Falls back to unspecified when no route
// exists.
func outboundAddr(group netip.AddrPort) netip.Addr {
	c, err := net.DialUDP("udp4", nil, net.UDPAddrFromAddrPort(group))
	if err != nil {
		return netip.IPv4Unspecified()
	}
	defer c.Close()
	if addr, ok := netip.AddrFromSlice(c.LocalAddr().(*net.UDPAddr).IP); ok {
		return addr.Unmap()
	}
	return netip.IPv4Unspecified()
}

func (u *UDP) Send(dst netip.AddrPort, payload []byte) error {
	_, err := u.conn.WriteToUDPAddrPort(payload, dst)
	return err
}

func (u *UDP) Broadcast(payload []byte) error {
	return u.Send(u.group, payload)
}

func (u *UDP) Receive(timeout time.Duration) (*Datagram, error) {
	if err := u.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, state.MaxDatagramSize)
	n, from, err := u.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, nil
		}
		return nil, err
	}
	return &Datagram{Payload: buf[:n], From: from}, nil
}

func (u *UDP) LocalAddr() netip.AddrPort {
	return u.local
}

func (u *UDP) Close() error {
	return u.conn.Close()
}
