package sampling

import "math/rand"

// source exposes a Sampler as a math/rand Source64, so libraries that take a
// *rand.Rand draw from the same backend as the rest of a run.
type source struct {
	s Sampler
}

// NewSource wraps s. Every Int63 or Uint64 call consumes exactly one
// DrawScalar. Seed is a no-op: the sampler's seed is fixed at construction.
func NewSource(s Sampler) rand.Source64 {
	return &source{s: s}
}

func (src *source) Int63() int64 {
	return int64(src.s.DrawScalar() * (1 << 63))
}

func (src *source) Uint64() uint64 {
	return uint64(src.s.DrawScalar() * (1 << 64))
}

func (src *source) Seed(int64) {}
