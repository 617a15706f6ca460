package transport

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutboundAddr(t *testing.T) {
	addr := outboundAddr(netip.MustParseAddrPort("224.0.0.5:5000"))
	assert.True(t, addr.Is4())
	if !addr.IsUnspecified() {
		assert.False(t, addr.IsMulticast())
	}
}
