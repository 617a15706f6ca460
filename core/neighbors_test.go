package core

import (
	"net/netip"
	"testing"
	"time"

	"github.com/encodeous/loom/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addrOf(s string) netip.AddrPort {
	return netip.MustParseAddrPort(s)
}

func TestNeighborUpsert(t *testing.T) {
	nt := NewNeighborTable(4)
	now := time.Now()

	rec, isNew, changed, ok := nt.Upsert(addrOf("10.0.0.2:5000"), "b", 100, true, now)
	require.True(t, ok)
	assert.True(t, isNew)
	assert.True(t, changed)
	assert.Equal(t, state.RouterId("b"), rec.Router)
	assert.Equal(t, 1, nt.Len())

	// same attributes, refreshed timestamp
	later := now.Add(time.Second)
	rec, isNew, changed, ok = nt.Upsert(addrOf("10.0.0.2:5000"), "b", 100, true, later)
	require.True(t, ok)
	assert.False(t, isNew)
	assert.False(t, changed)
	assert.Equal(t, later, rec.LastSeen)
	assert.Equal(t, 1, nt.Len())
}

func TestNeighborUpsertLastWriteWins(t *testing.T) {
	nt := NewNeighborTable(4)
	now := time.Now()
	nt.Upsert(addrOf("10.0.0.2:5000"), "b", 100, true, now)

	rec, isNew, changed, ok := nt.Upsert(addrOf("10.0.0.2:5000"), "b", 500, true, now)
	require.True(t, ok)
	assert.False(t, isNew)
	assert.True(t, changed)
	assert.Equal(t, 500, rec.Capacity)
	assert.Equal(t, 1, nt.Len())
}

func TestNeighborTableFullDropsNewPeer(t *testing.T) {
	nt := NewNeighborTable(1)
	now := time.Now()
	_, _, _, ok := nt.Upsert(addrOf("10.0.0.2:5000"), "b", 100, true, now)
	require.True(t, ok)

	_, _, _, ok = nt.Upsert(addrOf("10.0.0.3:5000"), "c", 100, true, now)
	assert.False(t, ok)
	assert.Equal(t, 1, nt.Len())

	// the existing peer still updates in place
	_, _, _, ok = nt.Upsert(addrOf("10.0.0.2:5000"), "b", 200, true, now)
	assert.True(t, ok)
}

func TestNeighborSnapshotOrder(t *testing.T) {
	nt := NewNeighborTable(4)
	now := time.Now()
	nt.Upsert(addrOf("10.0.0.3:5000"), "c", 100, true, now)
	nt.Upsert(addrOf("10.0.0.2:5000"), "b", 100, true, now)

	snap := nt.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, state.RouterId("c"), snap[0].Router)
	assert.Equal(t, state.RouterId("b"), snap[1].Router)
}

func TestNeighborExpire(t *testing.T) {
	nt := NewNeighborTable(4)
	now := time.Now()
	nt.Upsert(addrOf("10.0.0.2:5000"), "b", 100, true, now.Add(-time.Minute))
	nt.Upsert(addrOf("10.0.0.3:5000"), "c", 100, true, now)

	changed := nt.Expire(now, 10*time.Second)
	assert.True(t, changed)

	snap := nt.Snapshot()
	require.Len(t, snap, 2)
	assert.False(t, snap[0].Up, "silent neighbor must be marked down")
	assert.True(t, snap[1].Up)

	// a second pass finds nothing new
	assert.False(t, nt.Expire(now, 10*time.Second))
}
