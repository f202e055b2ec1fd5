package sampling

import "math/bits"

// latticeGenerator is the odd multiplier of the Korobov-type generating vector
// z = (1, g, g^2, ...) mod 2^64.
const latticeGenerator = 0x9e3779b97f4a7c15

// latticeSequence is an extensible rank-1 lattice in base 2 with a random
// Cranley-Patterson shift. Point n is frac(phi_2(n)*z + shift), evaluated in
// 64-bit fixed point where the mod-1 reduction is plain integer wraparound.
type latticeSequence struct {
	z     []uint64
	shift []uint64
	index uint64
}

func newLatticeSequence(dim int, seed int64) *latticeSequence {
	r := scrambleRand(seed, 0x6c617474696365)
	l := &latticeSequence{
		z:     make([]uint64, dim),
		shift: make([]uint64, dim),
	}
	z := uint64(1)
	for d := 0; d < dim; d++ {
		l.z[d] = z
		l.shift[d] = r.Uint64()
		z *= latticeGenerator
	}
	return l
}

func (l *latticeSequence) next(dst []float64) {
	phi := bits.Reverse64(l.index)
	for d := range dst {
		v := phi*l.z[d] + l.shift[d]
		dst[d] = float64(v>>11) / (1 << 53)
	}
	l.index++
}
