// Package sampling normalizes pseudorandom and quasi-random generators into one
// small set of primitive draws.
//
// Every Sampler owns its generator state. Two samplers built with the same
// strategy, dimension and seed return bit-identical values for the same call
// sequence. There is no package-level random state.
package sampling

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// Strategy names a sampling backend.
type Strategy string

const (
	MT19937 Strategy = "mt19937"
	PCG     Strategy = "pcg"
	Xoshiro Strategy = "xoshiro"
	ChaCha8 Strategy = "chacha8"
	Sobol   Strategy = "sobol"
	Halton  Strategy = "halton"
	Lattice Strategy = "lattice"
)

var (
	ErrUnknownStrategy  = errors.New("unknown sampling strategy")
	ErrInvalidDimension = errors.New("invalid dimension")
	ErrInvalidRange     = errors.New("invalid range")
	ErrEmptyCollection  = errors.New("empty collection")
)

// Sampler is the capability every backend provides.
type Sampler interface {
	// Strategy reports which backend produced this sampler.
	Strategy() Strategy

	// Dim is the dimensionality D of DrawVector results.
	Dim() int

	// Seed is the seed the sampler was constructed with.
	Seed() int64

	// DrawVector returns D values in [low, high). Pseudorandom backends use D
	// independent draws, quasi-random backends one point of their sequence.
	DrawVector(low, high float64) ([]float64, error)

	// DrawScalar returns one uniform value in [0, 1).
	DrawScalar() float64

	// DrawInt returns an integer in [start, stop) derived from one DrawScalar.
	DrawInt(start, stop int) (int, error)

	// Index returns an integer in [0, n) derived from one DrawScalar.
	Index(n int) (int, error)
}

// New constructs the sampler for strategy with dimensionality dim and seed.
func New(strategy Strategy, dim int, seed int64) (Sampler, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, dim)
	}

	switch strategy {
	case MT19937:
		return newMT19937(dim, seed), nil
	case PCG:
		return newPCG(dim, seed), nil
	case Xoshiro:
		return newXoshiro(dim, seed), nil
	case ChaCha8:
		return newChaCha8(dim, seed), nil
	case Sobol:
		return newQuasi(Sobol, dim, seed, newSobolSequence(dim, seed)), nil
	case Halton:
		return newQuasi(Halton, dim, seed, newHaltonSequence(dim, seed)), nil
	case Lattice:
		return newQuasi(Lattice, dim, seed, newLatticeSequence(dim, seed)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, string(strategy))
	}
}

var allStrategies = []Strategy{MT19937, PCG, Xoshiro, ChaCha8, Sobol, Halton, Lattice}

// Strategies lists every supported strategy in a stable order.
func Strategies() []Strategy {
	out := make([]Strategy, len(allStrategies))
	copy(out, allStrategies)
	return out
}

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range allStrategies {
		if string(s) == name {
			return s, nil
		}
	}
	names := make([]string, len(allStrategies))
	for i, s := range allStrategies {
		names[i] = string(s)
	}
	sort.Strings(names)
	return "", fmt.Errorf("%w: %q (supported: %v)", ErrUnknownStrategy, name, names)
}

// IsQuasiRandom reports whether the strategy is a low-discrepancy sequence.
func (s Strategy) IsQuasiRandom() bool {
	return s == Sobol || s == Halton || s == Lattice
}

// Choose returns one element of items selected with s.Index.
func Choose[T any](s Sampler, items []T) (T, error) {
	var zero T
	if len(items) == 0 {
		return zero, ErrEmptyCollection
	}
	i, err := s.Index(len(items))
	if err != nil {
		return zero, err
	}
	return items[i], nil
}

// indexFrom maps u in [0,1) to [0, n). The clamp keeps a draw that rounds to
// n inside the collection.
func indexFrom(u float64, n int) int {
	i := int(math.Floor(u * float64(n)))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// scaleInto maps u in [0,1) to [low, high), keeping the result below high.
func scaleInto(u, low, high float64) float64 {
	v := low + u*(high-low)
	if v >= high && high > low {
		v = math.Nextafter(high, low)
	}
	return v
}

// base carries the parts every variant shares.
type base struct {
	strategy Strategy
	dim      int
	seed     int64
}

func (b *base) Strategy() Strategy { return b.strategy }
func (b *base) Dim() int           { return b.dim }
func (b *base) Seed() int64        { return b.seed }

func (b *base) checkDim() error {
	if b.dim <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidDimension, b.dim)
	}
	return nil
}

func index(draw func() float64, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: cannot index %d items", ErrEmptyCollection, n)
	}
	return indexFrom(draw(), n), nil
}

func drawInt(draw func() float64, start, stop int) (int, error) {
	if stop <= start {
		return 0, fmt.Errorf("%w: [%d, %d)", ErrInvalidRange, start, stop)
	}
	return start + indexFrom(draw(), stop-start), nil
}
