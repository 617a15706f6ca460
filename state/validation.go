package state

import (
	"fmt"
	"net/netip"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9a-zA-Z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func ConfigValidator(cfg *Config) error {
	if err := NameValidator(string(cfg.Id)); err != nil {
		return err
	}
	if cfg.Mode != ModeActive && cfg.Mode != ModePassive {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeActive, ModePassive, cfg.Mode)
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port must not be zero")
	}
	addr, err := netip.ParseAddr(cfg.Group)
	if err != nil {
		return fmt.Errorf("invalid group address %q: %w", cfg.Group, err)
	}
	if !addr.IsMulticast() {
		return fmt.Errorf("group %q is not a multicast address", cfg.Group)
	}
	if cfg.Capacity <= 0 {
		return fmt.Errorf("capacity must be positive, got %d", cfg.Capacity)
	}
	if cfg.HelloInterval <= 0 {
		return fmt.Errorf("hello_interval must be positive, got %s", cfg.HelloInterval)
	}
	if cfg.ResponseWindow <= 0 {
		return fmt.Errorf("response_window must be positive, got %s", cfg.ResponseWindow)
	}
	if cfg.HoldTime < 0 {
		return fmt.Errorf("hold_time must not be negative, got %s", cfg.HoldTime)
	}
	if cfg.TopologyHoldTime < 0 {
		return fmt.Errorf("topology_hold_time must not be negative, got %s", cfg.TopologyHoldTime)
	}
	if cfg.DedupPolicy != DedupDropNew && cfg.DedupPolicy != DedupEvictOldest {
		return fmt.Errorf("dedup_policy must be %q or %q, got %q", DedupDropNew, DedupEvictOldest, cfg.DedupPolicy)
	}
	if cfg.DedupCapacity <= 0 || cfg.MaxNeighbors <= 0 || cfg.MaxRouters <= 0 {
		return fmt.Errorf("dedup_capacity, max_neighbors and max_routers must be positive")
	}
	return nil
}
