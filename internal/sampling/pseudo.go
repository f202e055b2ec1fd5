package sampling

import (
	"encoding/binary"
	"math/bits"
	mrand "math/rand"
	"math/rand/v2"

	"github.com/seehuhn/mt19937"
)

// pseudoSampler adapts a stateful generator that emits one float at a time.
type pseudoSampler struct {
	base
	float func() float64
}

func (p *pseudoSampler) DrawScalar() float64 {
	return p.float()
}

func (p *pseudoSampler) DrawVector(low, high float64) ([]float64, error) {
	if err := p.checkDim(); err != nil {
		return nil, err
	}
	out := make([]float64, p.dim)
	for i := range out {
		out[i] = scaleInto(p.float(), low, high)
	}
	return out, nil
}

func (p *pseudoSampler) DrawInt(start, stop int) (int, error) {
	return drawInt(p.float, start, stop)
}

func (p *pseudoSampler) Index(n int) (int, error) {
	return index(p.float, n)
}

func newMT19937(dim int, seed int64) *pseudoSampler {
	mt := mt19937.New()
	mt.Seed(seed)
	r := mrand.New(mt)
	return &pseudoSampler{base: base{MT19937, dim, seed}, float: r.Float64}
}

func newPCG(dim int, seed int64) *pseudoSampler {
	sm := splitMix64(seed)
	r := rand.New(rand.NewPCG(uint64(seed), sm.next()))
	return &pseudoSampler{base: base{PCG, dim, seed}, float: r.Float64}
}

func newXoshiro(dim int, seed int64) *pseudoSampler {
	r := rand.New(newXoshiro256(seed))
	return &pseudoSampler{base: base{Xoshiro, dim, seed}, float: r.Float64}
}

func newChaCha8(dim int, seed int64) *pseudoSampler {
	sm := splitMix64(seed)
	var key [32]byte
	for i := 0; i < len(key); i += 8 {
		binary.LittleEndian.PutUint64(key[i:], sm.next())
	}
	r := rand.New(rand.NewChaCha8(key))
	return &pseudoSampler{base: base{ChaCha8, dim, seed}, float: r.Float64}
}

// splitMix64 expands a 64-bit seed into a stream of well-mixed words. It is
// only used to derive generator state, never to produce draws.
type splitMix64 uint64

func (s *splitMix64) next() uint64 {
	*s += 0x9e3779b97f4a7c15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// xoshiro256 is xoshiro256** as a math/rand/v2 Source.
type xoshiro256 struct {
	s [4]uint64
}

func newXoshiro256(seed int64) *xoshiro256 {
	sm := splitMix64(seed)
	x := &xoshiro256{}
	for i := range x.s {
		x.s[i] = sm.next()
	}
	return x
}

func (x *xoshiro256) Uint64() uint64 {
	result := bits.RotateLeft64(x.s[1]*5, 7) * 9
	t := x.s[1] << 17

	x.s[2] ^= x.s[0]
	x.s[3] ^= x.s[1]
	x.s[1] ^= x.s[2]
	x.s[0] ^= x.s[3]
	x.s[2] ^= t
	x.s[3] = bits.RotateLeft64(x.s[3], 45)

	return result
}
