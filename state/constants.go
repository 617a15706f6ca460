package state

import "time"

const INF = ^(uint32)(0)

var (
	DefaultPort  = uint16(5000)
	DefaultGroup = "224.0.0.5"

	HelloInterval  = time.Second * 5
	ResponseWindow = time.Second * 3
	ProbeInterval  = time.Second * 30
	GcDelay        = time.Second * 1
	ReceiveTimeout = time.Second * 1

	// WeightConstant scales capacity into an edge weight:
	// weight = WeightConstant / capacity, truncated, at least 1.
	WeightConstant = 1000

	DefaultCapacity      = 1000 // Mbps advertised in hellos
	DedupCapacity        = 100
	MaxNeighbors         = 100
	MaxRouters           = 32
	MaxDatagramSize      = 2048
	DispatchQueueSize    = 128
	SlowDispatchWarnTime = time.Millisecond * 50
)
