package sampling

import "math/rand/v2"

// pointSequence is a low-discrepancy generator that emits whole D-dimensional
// points in [0,1)^D.
type pointSequence interface {
	next(dst []float64)
}

// quasiSampler re-buffers a point sequence into a scalar stream. DrawScalar
// consumes one component of the buffered point at a time and draws a fresh
// point once the buffer is exhausted. DrawVector takes its own fresh point and
// leaves the buffer alone.
type quasiSampler struct {
	base
	seq    pointSequence
	buf    []float64
	cursor int
}

func newQuasi(strategy Strategy, dim int, seed int64, seq pointSequence) *quasiSampler {
	return &quasiSampler{
		base:   base{strategy, dim, seed},
		seq:    seq,
		buf:    make([]float64, dim),
		cursor: dim,
	}
}

func (q *quasiSampler) DrawScalar() float64 {
	if q.cursor >= len(q.buf) {
		q.seq.next(q.buf)
		q.cursor = 0
	}
	u := q.buf[q.cursor]
	q.cursor++
	return u
}

func (q *quasiSampler) DrawVector(low, high float64) ([]float64, error) {
	if err := q.checkDim(); err != nil {
		return nil, err
	}
	out := make([]float64, q.dim)
	q.seq.next(out)
	for i, u := range out {
		out[i] = scaleInto(u, low, high)
	}
	return out, nil
}

func (q *quasiSampler) DrawInt(start, stop int) (int, error) {
	return drawInt(q.DrawScalar, start, stop)
}

func (q *quasiSampler) Index(n int) (int, error) {
	return index(q.DrawScalar, n)
}

// scrambleRand returns the generator used to randomize a sequence. salt keeps
// the streams of different sequence families apart for the same seed.
func scrambleRand(seed int64, salt uint64) *rand.Rand {
	sm := splitMix64(uint64(seed) ^ salt)
	return rand.New(rand.NewPCG(sm.next(), sm.next()))
}
