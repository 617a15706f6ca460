package state

import (
	"fmt"
	"net/netip"
	"os"
	"time"
)

// DiscoveryMode selects how a node participates in neighbor discovery.
type DiscoveryMode string

const (
	// ModeActive broadcasts periodic hellos and runs probe cycles.
	ModeActive DiscoveryMode = "active"
	// ModePassive never initiates discovery; the node only answers
	// unicast neighbor requests it is addressed to.
	ModePassive DiscoveryMode = "passive"
)

// DedupPolicy is the overflow behavior of a full dedup cache.
type DedupPolicy string

const (
	// DedupDropNew silently ignores new ids once the cache is full.
	DedupDropNew DedupPolicy = "drop"
	// DedupEvictOldest evicts the oldest remembered id to make room.
	DedupEvictOldest DedupPolicy = "evict"
)

// Config is the local router configuration.
type Config struct {
	Id   RouterId      `yaml:"id,omitempty"`   // defaults to the local hostname
	Mode DiscoveryMode `yaml:"mode,omitempty"` // active (default) or passive

	Port     uint16 `yaml:"port,omitempty"`     // discovery port
	Group    string `yaml:"group,omitempty"`    // multicast group for hellos and LSAs
	Capacity int    `yaml:"capacity,omitempty"` // advertised local link capacity, Mbps

	HelloInterval  time.Duration `yaml:"hello_interval,omitempty"`
	ResponseWindow time.Duration `yaml:"response_window,omitempty"` // active-probe collection window

	// HoldTime marks neighbors not heard from within it as down;
	// 0 (the default) keeps neighbors forever.
	HoldTime time.Duration `yaml:"hold_time,omitempty"`
	// TopologyHoldTime expires topology entries not refreshed within it;
	// 0 (the default) keeps entries forever.
	TopologyHoldTime time.Duration `yaml:"topology_hold_time,omitempty"`

	DedupCapacity int         `yaml:"dedup_capacity,omitempty"`
	DedupPolicy   DedupPolicy `yaml:"dedup_policy,omitempty"`
	MaxNeighbors  int         `yaml:"max_neighbors,omitempty"`
	MaxRouters    int         `yaml:"max_routers,omitempty"`

	LogPath string `yaml:"log_path,omitempty"` // if not empty, also log to this file
}

// ApplyDefaults fills unset fields. The local hostname is the fallback
// router id.
func (c *Config) ApplyDefaults() error {
	if c.Id == "" {
		host, err := os.Hostname()
		if err != nil {
			return fmt.Errorf("no id configured and hostname lookup failed: %w", err)
		}
		c.Id = RouterId(host)
	}
	if c.Mode == "" {
		c.Mode = ModeActive
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Group == "" {
		c.Group = DefaultGroup
	}
	if c.Capacity == 0 {
		c.Capacity = DefaultCapacity
	}
	if c.HelloInterval == 0 {
		c.HelloInterval = HelloInterval
	}
	if c.ResponseWindow == 0 {
		c.ResponseWindow = ResponseWindow
	}
	if c.DedupCapacity == 0 {
		c.DedupCapacity = DedupCapacity
	}
	if c.DedupPolicy == "" {
		c.DedupPolicy = DedupDropNew
	}
	if c.MaxNeighbors == 0 {
		c.MaxNeighbors = MaxNeighbors
	}
	if c.MaxRouters == 0 {
		c.MaxRouters = MaxRouters
	}
	return nil
}

// GroupAddr returns the multicast group as an address/port pair on the
// discovery port.
func (c *Config) GroupAddr() (netip.AddrPort, error) {
	addr, err := netip.ParseAddr(c.Group)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("invalid group address %q: %w", c.Group, err)
	}
	return netip.AddrPortFrom(addr, c.Port), nil
}
