// Package padding implements the trailing zero-padding applied to each
// TWAMP-Light test packet, either a fixed size or an IMIX-like mix of
// packet sizes approximating realistic link load.
package padding

import "math/rand"

// Policy chooses a padding length, in bytes, for the next test packet.
type Policy interface {
	Next() int
}

// Fixed always returns the same padding length.
type Fixed int

// Next returns the fixed length.
func (f Fixed) Next() int { return int(f) }

// imixV4 and imixV6 are the default IMIX mixes from the original
// implementation: roughly 7 small, 4 medium, 1 large packet in twelve.
var (
	imixV4 = []int{8, 8, 8, 8, 8, 8, 8, 534, 534, 534, 534, 1458}
	imixV6 = []int{0, 0, 0, 0, 0, 0, 0, 514, 514, 514, 514, 1438}
)

// IMIX selects uniformly at random among the fixed mix for the given
// address family on every call.
type IMIX struct {
	v6   bool
	rand *rand.Rand
}

// NewIMIX builds an IMIX policy for the given address family. src may
// be nil to use the package-level default source.
func NewIMIX(v6 bool, src *rand.Rand) IMIX {
	return IMIX{v6: v6, rand: src}
}

// Next returns a uniformly-chosen length from the mix.
func (m IMIX) Next() int {
	mix := imixV4
	if m.v6 {
		mix = imixV6
	}
	if m.rand != nil {
		return mix[m.rand.Intn(len(mix))]
	}
	return mix[rand.Intn(len(mix))]
}
