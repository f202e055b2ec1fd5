package evo

import (
	"fmt"
	"math"

	"github.com/cwbudde/rngevo/internal/sampling"
)

// evaluate scores every candidate with exactly one objective call. Objective
// errors are returned as-is.
func evaluate(objective Objective, pop Population) ([]Scored, error) {
	scored := make([]Scored, len(pop))
	for i, x := range pop {
		score, err := objective(x)
		if err != nil {
			return nil, err
		}
		scored[i] = Scored{Score: score, Candidate: x}
	}
	return scored, nil
}

// bestOf returns the first member with the minimum score.
func bestOf(scored []Scored) Scored {
	best := scored[0]
	for _, s := range scored[1:] {
		if s.Score < best.Score {
			best = s
		}
	}
	return best
}

// tournament runs n binary tournaments with replacement. The strictly better
// contestant wins; on a tie the first drawn wins.
func tournament(s sampling.Sampler, scored []Scored, n int) (Population, error) {
	out := make(Population, n)
	for i := range out {
		first, err := sampling.Choose(s, scored)
		if err != nil {
			return nil, err
		}
		second, err := sampling.Choose(s, scored)
		if err != nil {
			return nil, err
		}

		if second.Score < first.Score {
			out[i] = second.Candidate
		} else {
			out[i] = first.Candidate
		}
	}
	return out, nil
}

// crossover applies conditional one-point crossover. For each individual one
// scalar is drawn; crossover happens when it is <= prob and the candidate has
// more than two components. The partner is drawn among members that are not
// bit-identical to the individual; without one the individual passes through.
func crossover(s sampling.Sampler, pop Population, prob float64) (Population, error) {
	out := make(Population, len(pop))
	partners := make(Population, 0, len(pop))

	for i, x := range pop {
		if s.DrawScalar() > prob || len(x) <= 2 {
			out[i] = x
			continue
		}

		partners = partners[:0]
		for _, y := range pop {
			if !identical(x, y) {
				partners = append(partners, y)
			}
		}
		if len(partners) == 0 {
			out[i] = x
			continue
		}

		partner, err := sampling.Choose(s, partners)
		if err != nil {
			return nil, err
		}
		split, err := s.DrawInt(1, len(x)-1)
		if err != nil {
			return nil, err
		}
		out[i] = onePoint(x, partner, split)
	}
	return out, nil
}

// onePoint returns x[:split] followed by partner[split:].
func onePoint(x, partner Candidate, split int) Candidate {
	child := make(Candidate, len(x))
	copy(child, x[:split])
	copy(child[split:], partner[split:])
	return child
}

func identical(a, b Candidate) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Float64bits(a[i]) != math.Float64bits(b[i]) {
			return false
		}
	}
	return true
}

// Mutation is the bimodal uniform mutation operator. With probability
// BigJumpProb an individual is perturbed within [-BigScale, BigScale],
// otherwise within [-SmallScale, SmallScale]. BigJumpProb = 0 gives the
// classic single-scale operator.
type Mutation struct {
	SmallScale  float64
	BigScale    float64
	BigJumpProb float64
	Limit       float64
}

// NewMutation builds the mutation operator described by cfg.
func NewMutation(cfg Config) Mutation {
	return Mutation{
		SmallScale:  cfg.SmallScale,
		BigScale:    cfg.BigScale,
		BigJumpProb: cfg.BigJumpProb,
		Limit:       cfg.Limit,
	}
}

// Apply returns a perturbed, clamped copy of x.
func (m Mutation) Apply(s sampling.Sampler, x Candidate) (Candidate, error) {
	scale := m.SmallScale
	if s.DrawScalar() < m.BigJumpProb {
		scale = m.BigScale
	}

	delta, err := s.DrawVector(-scale, scale)
	if err != nil {
		return nil, err
	}
	if len(delta) != len(x) {
		return nil, fmt.Errorf("%w: perturbation has %d components, candidate %d", sampling.ErrInvalidDimension, len(delta), len(x))
	}

	out := make(Candidate, len(x))
	for i := range x {
		out[i] = clamp(x[i]+delta[i], -m.Limit, m.Limit)
	}
	return out, nil
}

func (m Mutation) applyAll(s sampling.Sampler, pop Population) (Population, error) {
	out := make(Population, len(pop))
	for i, x := range pop {
		y, err := m.Apply(s, x)
		if err != nil {
			return nil, err
		}
		out[i] = y
	}
	return out, nil
}

func clamp(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
