package sampling

import (
	"math/bits"
	"math/rand/v2"
)

const sobolBits = 32

// joeKuo holds the initial direction numbers m_1..m_s for dimensions 2..21 of
// the Joe-Kuo (2008) set. Dimension 1 uses m_k = 1 for every k.
var joeKuo = [][]uint32{
	{1},
	{1, 3},
	{1, 3, 1},
	{1, 1, 1},
	{1, 1, 3, 3},
	{1, 3, 5, 13},
	{1, 1, 5, 5, 17},
	{1, 1, 5, 5, 5},
	{1, 1, 7, 11, 19},
	{1, 1, 5, 1, 1},
	{1, 1, 1, 3, 11},
	{1, 3, 5, 5, 31},
	{1, 3, 3, 9, 7, 49},
	{1, 1, 1, 15, 21, 21},
	{1, 3, 1, 13, 27, 49},
	{1, 1, 1, 15, 7, 5},
	{1, 3, 1, 15, 13, 25},
	{1, 1, 5, 5, 19, 61},
	{1, 3, 7, 11, 23, 15, 103},
	{1, 3, 7, 13, 13, 15, 69},
}

// sobolSequence is a scrambled Sobol sequence in Gray-code order. Each
// dimension's direction numbers are scrambled by a random lower-triangular
// binary matrix and every output is XORed with a random digital shift.
type sobolSequence struct {
	v     [][sobolBits]uint32
	x     []uint32
	shift []uint32
	index uint32
}

func newSobolSequence(dim int, seed int64) *sobolSequence {
	polys := primitivePolynomials(dim - 1)
	structural := splitMix64(0x736f626f6c)
	r := scrambleRand(seed, 0x736f626f6c)

	s := &sobolSequence{
		v:     make([][sobolBits]uint32, dim),
		x:     make([]uint32, dim),
		shift: make([]uint32, dim),
	}

	for d := 0; d < dim; d++ {
		var v [sobolBits]uint32
		if d == 0 {
			for j := range v {
				v[j] = 1 << (sobolBits - 1 - j)
			}
		} else {
			p := polys[d-1]
			var m []uint32
			if d-1 < len(joeKuo) {
				m = joeKuo[d-1]
			} else {
				m = sobolInitialNumbers(p.degree, &structural)
			}
			v = sobolDirections(m, p.degree, p.a)
		}

		rows := randomLowerTriangular(r)
		for j := range v {
			v[j] = linearScramble(rows, v[j])
		}
		s.v[d] = v
		s.shift[d] = r.Uint32()
	}

	return s
}

func (s *sobolSequence) next(dst []float64) {
	for d := range dst {
		dst[d] = float64(s.x[d]^s.shift[d]) / (1 << sobolBits)
	}

	// Gray-code update: flip the direction number of the lowest zero bit.
	c := bits.TrailingZeros32(^s.index)
	s.index++
	if c == sobolBits {
		// 2^32 points emitted; start the sequence over.
		clear(s.x)
		return
	}
	for d := range s.x {
		s.x[d] ^= s.v[d][c]
	}
}

func sobolDirections(m []uint32, degree int, a uint64) [sobolBits]uint32 {
	var v [sobolBits]uint32
	for j := 0; j < degree && j < sobolBits; j++ {
		v[j] = m[j] << (sobolBits - 1 - j)
	}
	for j := degree; j < sobolBits; j++ {
		v[j] = v[j-degree] ^ (v[j-degree] >> degree)
		for k := 1; k < degree; k++ {
			if (a>>(degree-1-k))&1 == 1 {
				v[j] ^= v[j-k]
			}
		}
	}
	return v
}

// sobolInitialNumbers picks odd m_k < 2^k for dimensions beyond the table.
func sobolInitialNumbers(degree int, sm *splitMix64) []uint32 {
	m := make([]uint32, degree)
	for k := range m {
		if k >= sobolBits {
			m[k] = 1
			continue
		}
		m[k] = uint32(sm.next()%(uint64(1)<<(k+1))) | 1
	}
	return m
}

func randomLowerTriangular(r *rand.Rand) [sobolBits]uint32 {
	var rows [sobolBits]uint32
	for i := range rows {
		above := ^uint32(0) << (sobolBits - i)
		rows[i] = r.Uint32()&above | 1<<(sobolBits-1-i)
	}
	return rows
}

// linearScramble multiplies the digit vector of v (most significant digit
// first) by the lower-triangular matrix given as rows.
func linearScramble(rows [sobolBits]uint32, v uint32) uint32 {
	var out uint32
	for i, row := range rows {
		if bits.OnesCount32(row&v)&1 == 1 {
			out |= 1 << (sobolBits - 1 - i)
		}
	}
	return out
}

// gf2Poly is x^degree + a_1 x^(degree-1) + ... + a_(degree-1) x + 1 over
// GF(2), with the inner coefficients packed into a (a_1 is the top bit).
type gf2Poly struct {
	degree int
	a      uint64
}

func (p gf2Poly) bits() uint64 {
	return 1<<p.degree | p.a<<1 | 1
}

// primitivePolynomials lists the first count primitive polynomials ordered by
// degree, then by a.
func primitivePolynomials(count int) []gf2Poly {
	polys := make([]gf2Poly, 0, count)
	for degree := 1; len(polys) < count; degree++ {
		for a := uint64(0); a < uint64(1)<<(degree-1) && len(polys) < count; a++ {
			p := gf2Poly{degree: degree, a: a}
			if isPrimitive(p) {
				polys = append(polys, p)
			}
		}
	}
	return polys
}

// isPrimitive reports whether x has multiplicative order 2^degree-1 modulo p.
func isPrimitive(p gf2Poly) bool {
	mod := p.bits()
	order := uint64(1)<<p.degree - 1

	x := uint64(2)
	if x&(1<<p.degree) != 0 {
		x ^= mod
	}

	if gf2PowMod(x, order, mod, p.degree) != 1 {
		return false
	}
	for _, q := range primeFactors(order) {
		if gf2PowMod(x, order/q, mod, p.degree) == 1 {
			return false
		}
	}
	return true
}

func gf2MulMod(a, b, mod uint64, degree int) uint64 {
	var r uint64
	for b != 0 {
		if b&1 == 1 {
			r ^= a
		}
		b >>= 1
		a <<= 1
		if a&(1<<degree) != 0 {
			a ^= mod
		}
	}
	return r
}

func gf2PowMod(x, e, mod uint64, degree int) uint64 {
	result := uint64(1)
	for e > 0 {
		if e&1 == 1 {
			result = gf2MulMod(result, x, mod, degree)
		}
		x = gf2MulMod(x, x, mod, degree)
		e >>= 1
	}
	return result
}

func primeFactors(n uint64) []uint64 {
	var factors []uint64
	for q := uint64(2); q*q <= n; q++ {
		if n%q == 0 {
			factors = append(factors, q)
			for n%q == 0 {
				n /= q
			}
		}
	}
	if n > 1 {
		factors = append(factors, n)
	}
	return factors
}
