package core

import (
	"encoding/binary"
	"hash/fnv"
	"reflect"

	"github.com/encodeous/loom/state"
)

func Get[T state.Module](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}

// adKey derives the dedup id of an advertisement from its origin and
// sequence number.
func adKey(router string, seq uint64) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(router))
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	_, _ = h.Write(b[:])
	return h.Sum64()
}
