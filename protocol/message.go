// Package protocol defines the wire messages of the routing control plane.
// The wire format is one JSON object per datagram, tagged by message_type.
package protocol

import (
	"encoding/json"
	"fmt"
)

const (
	TypeHello            = uint8(1)
	TypeLSA              = uint8(2)
	TypeNeighborRequest  = uint8(3)
	TypeNeighborResponse = uint8(4)
)

// Message is any decoded control-plane datagram.
type Message interface {
	messageType() uint8
}

// Hello is the periodic neighbor discovery and liveness announcement.
type Hello struct {
	MessageType uint8  `json:"message_type"`
	Router      string `json:"router_id"`
	Capacity    int    `json:"capacity"` // Mbps
	Status      int    `json:"status"`   // non-zero means the link is up
}

// Link is one advertised neighbor link inside an LSA.
type Link struct {
	Neighbor string `json:"neighbor_id"`
	Up       bool   `json:"link_up"`
	Capacity int    `json:"capacity"`
}

// LSA is a router's full, self-describing link set. Seq increases with each
// origination and, together with the origin id, dedups the flood.
type LSA struct {
	MessageType uint8  `json:"message_type"`
	Router      string `json:"router_id"`
	Seq         uint64 `json:"seq"`
	Links       []Link `json:"links"`
}

// NeighborRequest is the unicast/broadcast discovery probe.
type NeighborRequest struct {
	MessageType uint8  `json:"message_type"`
	RequestId   uint64 `json:"request_id"`
}

// NeighborResponse answers a NeighborRequest, once per distinct request id.
type NeighborResponse struct {
	MessageType uint8  `json:"message_type"`
	RequestId   uint64 `json:"request_id"`
	Hostname    string `json:"hostname"`
}

func (*Hello) messageType() uint8            { return TypeHello }
func (*LSA) messageType() uint8              { return TypeLSA }
func (*NeighborRequest) messageType() uint8  { return TypeNeighborRequest }
func (*NeighborResponse) messageType() uint8 { return TypeNeighborResponse }

// Marshal encodes a message, stamping its type tag.
func Marshal(m Message) ([]byte, error) {
	switch v := m.(type) {
	case *Hello:
		w := *v
		w.MessageType = TypeHello
		return json.Marshal(w)
	case *LSA:
		w := *v
		w.MessageType = TypeLSA
		return json.Marshal(w)
	case *NeighborRequest:
		w := *v
		w.MessageType = TypeNeighborRequest
		return json.Marshal(w)
	case *NeighborResponse:
		w := *v
		w.MessageType = TypeNeighborResponse
		return json.Marshal(w)
	default:
		return nil, fmt.Errorf("unknown message type %T", m)
	}
}

// Unmarshal decodes and validates one datagram. Anything that fails to
// parse or validate is reported as an error; the caller drops it.
func Unmarshal(payload []byte) (Message, error) {
	var head struct {
		MessageType uint8 `json:"message_type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, fmt.Errorf("not a control message: %w", err)
	}
	switch head.MessageType {
	case TypeHello:
		var m Hello
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("bad hello: %w", err)
		}
		if m.Router == "" {
			return nil, fmt.Errorf("hello is missing router_id")
		}
		if m.Capacity <= 0 {
			return nil, fmt.Errorf("hello capacity must be positive, got %d", m.Capacity)
		}
		return &m, nil
	case TypeLSA:
		var m LSA
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("bad lsa: %w", err)
		}
		if m.Router == "" {
			return nil, fmt.Errorf("lsa is missing router_id")
		}
		for _, l := range m.Links {
			if l.Neighbor == "" {
				return nil, fmt.Errorf("lsa from %s has a link with no neighbor_id", m.Router)
			}
			if l.Capacity < 0 {
				return nil, fmt.Errorf("lsa from %s has a link with negative capacity", m.Router)
			}
		}
		return &m, nil
	case TypeNeighborRequest:
		var m NeighborRequest
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("bad neighbor request: %w", err)
		}
		return &m, nil
	case TypeNeighborResponse:
		var m NeighborResponse
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("bad neighbor response: %w", err)
		}
		if m.Hostname == "" {
			return nil, fmt.Errorf("neighbor response is missing hostname")
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unknown message type %d", head.MessageType)
	}
}
