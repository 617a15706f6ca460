package state

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Module is a unit of the control plane with a managed lifecycle.
type Module interface {
	Init(s *State) error
	Cleanup(s *State) error
}

// State access must be done only on the main loop goroutine.
type State struct {
	*Env
	Modules map[string]Module

	Started  atomic.Bool
	Stopping atomic.Bool
}

// Hooks are the presentation-layer callbacks. Nil hooks fall back to
// logging through the node's logger.
type Hooks struct {
	OnRouteTableUpdated  func(routes []RouteTableEntry)
	OnNeighborDiscovered func(rec NeighborRecord)
}

// Env can be read from any goroutine.
type Env struct {
	Config
	Hooks
	DispatchChannel chan<- func(s *State) error
	Context         context.Context
	Cancel          context.CancelCauseFunc
	Log             *slog.Logger
}

// PublishRoutes hands a freshly computed route table outward.
func (e *Env) PublishRoutes(routes []RouteTableEntry) {
	if e.OnRouteTableUpdated != nil {
		e.OnRouteTableUpdated(routes)
		return
	}
	e.Log.Info("route table updated", "routes", len(routes))
	for _, rt := range routes {
		e.Log.Info("route", "to", rt.Destination, "via", rt.NextHop, "cost", rt.Cost)
	}
}

// PublishNeighbor reports a newly discovered neighbor outward.
func (e *Env) PublishNeighbor(rec NeighborRecord) {
	if e.OnNeighborDiscovered != nil {
		e.OnNeighborDiscovered(rec)
		return
	}
	e.Log.Info("neighbor discovered", "router", rec.Router, "addr", rec.Addr, "capacity", rec.Capacity, "up", rec.Up)
}
